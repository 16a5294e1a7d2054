// Package dto define las estructuras de salida que consumen los
// renderizadores de reportes (texto, PDF, gráfico).
package dto

import (
	"github.com/shopspring/decimal"

	"github.com/Dysin/cross-border/internal/domain/costing"
	"github.com/Dysin/cross-border/internal/domain/profit"
)

// SummaryRow es una fila del resumen tabular: un valor del scope pedido
// con su ingreso, el desglose de costos por categoría, el neto y el
// margen. Margin nulo se reporta vacío, nunca como 0%.
type SummaryRow struct {
	ScopeID   string
	Revenue   decimal.Decimal
	Costs     map[costing.Category]decimal.Decimal
	NetProfit decimal.Decimal
	Margin    decimal.NullDecimal
}

// SummaryTable es el resumen tabular completo de una corrida. Columns fija
// el orden estable de las categorías en todos los renderizadores.
type SummaryTable struct {
	Scope    profit.Scope
	Currency string
	Columns  []costing.Category
	Rows     []SummaryRow
	Total    SummaryRow
}

// SeriesPoint es un punto de la serie temporal para el consumidor de
// gráficos: una ventana con su utilidad neta y margen. Las ventanas sin
// actividad aparecen con neto cero y margen nulo.
type SeriesPoint struct {
	Window    profit.Window
	NetProfit decimal.Decimal
	Margin    decimal.NullDecimal
}

// CACRow es la métrica informativa de adquisición de clientes por campaña.
type CACRow struct {
	CampaignID string
	Spend      decimal.Decimal
	Customers  int64
	CAC        decimal.NullDecimal
}
