package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLine es una línea de venta: una orden puede tener varias líneas,
// una por SKU. Es la unidad mínima de atribución de costos e ingresos.
type OrderLine struct {
	OrderID            string
	SKU                string
	Quantity           int64
	UnitPrice          decimal.Decimal
	Currency           string
	Platform           string // canal de venta (amazon, shopee, ...)
	DestinationCountry string // ISO 3166-1 alfa-2
	CustomerID         string
	At                 time.Time // timestamp de la transacción
	BatchRef           string    // lote explícito; vacío = consumo FIFO
}

// UnitID es la clave estable de la línea como unidad de asignación.
// El orden ascendente de estas claves decide a quién va el residuo de
// redondeo en los repartos.
func (l OrderLine) UnitID() string {
	return l.OrderID + "/" + l.SKU
}

// Revenue devuelve el ingreso bruto de la línea en su moneda original.
func (l OrderLine) Revenue() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
}
