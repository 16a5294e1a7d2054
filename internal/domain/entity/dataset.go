package entity

// Dataset es el conjunto de entrada completo de una corrida: catálogo,
// lotes, ventas, envíos, tablas de tarifas, campañas e impuestos. Es
// inmutable durante la corrida; cada etapa del pipeline produce salidas
// nuevas sin tocar el dataset.
type Dataset struct {
	Products  map[string]Product
	Batches   []ProductBatch
	Orders    []OrderLine
	Shipments []Shipment
	Fees      FeeSchedule
	Campaigns []AdCampaign
	Tax       TaxTables
}

// LinesOfOrder devuelve las líneas de la orden dada, en el orden del
// dataset.
func (d *Dataset) LinesOfOrder(orderID string) []OrderLine {
	var lines []OrderLine
	for _, l := range d.Orders {
		if l.OrderID == orderID {
			lines = append(lines, l)
		}
	}
	return lines
}
