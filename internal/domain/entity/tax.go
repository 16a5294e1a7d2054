package entity

import "github.com/shopspring/decimal"

// VATBase es la base de cálculo del IVA según la regla del mercado
// destino. Cada mercado lleva su propia variante etiquetada en vez de
// ramas dispersas en los resolvers.
type VATBase string

const (
	VATBaseProduct          VATBase = "product"           // solo costo de producto
	VATBaseProductLogistics VATBase = "product_logistics" // producto + logística
)

// VATRule es la regla de IVA de un mercado destino.
type VATRule struct {
	Market string // país destino, ISO 3166-1 alfa-2
	Rate   decimal.Decimal
	Base   VATBase
}

// TaxTables agrupa el arancel aduanero por país destino y las reglas de
// IVA por mercado. Una entrada ausente para un destino alcanzado es un
// error de corrida, nunca se trata como tasa cero.
type TaxTables struct {
	Tariffs map[string]decimal.Decimal // país -> tasa de arancel sobre el valor de producto
	VAT     map[string]VATRule         // mercado -> regla de IVA
}
