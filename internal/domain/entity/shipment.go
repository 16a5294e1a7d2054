package entity

import "github.com/shopspring/decimal"

// Shipment es un envío que cubre una o más líneas de una orden. El costo
// del envío es compartido: la parte de cada SKU no se calcula aquí sino en
// el motor de asignación.
type Shipment struct {
	ShipmentID  string
	OrderID     string
	Channel     string // empresa/medio logístico
	Mode        string // air, sea, courier
	WeightKg    decimal.Decimal
	VolumeM3    decimal.Decimal
	Destination string
	Cost        decimal.Decimal // costo total declarado; cero = se tarifa con las tasas
	RatePerItem decimal.Decimal // tarifa por pieza del canal
	RatePerKg   decimal.Decimal // tarifa por kg del canal
	Currency    string
	CoveredSKUs []string // vacío = todas las líneas de la orden
}

// Covers indica si el envío cubre el SKU dado.
func (s Shipment) Covers(sku string) bool {
	if len(s.CoveredSKUs) == 0 {
		return true
	}
	for _, c := range s.CoveredSKUs {
		if c == sku {
			return true
		}
	}
	return false
}
