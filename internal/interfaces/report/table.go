// Package report construye las dos interfaces de salida del análisis: el
// resumen tabular por scope y la serie temporal para el sink de gráficos.
package report

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/Dysin/cross-border/internal/application/dto"
	"github.com/Dysin/cross-border/internal/domain/costing"
	"github.com/Dysin/cross-border/internal/domain/money"
	"github.com/Dysin/cross-border/internal/domain/profit"
)

// Builder formatea registros de rentabilidad en las salidas externas.
type Builder struct {
	Currency string
}

// NewBuilder construye el builder para la moneda objetivo de la corrida.
func NewBuilder(currency string) *Builder {
	return &Builder{Currency: currency}
}

// BuildTable arma el resumen tabular: una fila por valor del scope, con
// orden de columnas estable (ingreso, cada categoría de costo, neto,
// margen) y una fila de totales.
func (b *Builder) BuildTable(scope profit.Scope, records []profit.ProfitRecord) dto.SummaryTable {
	table := dto.SummaryTable{
		Scope:    scope,
		Currency: b.Currency,
		Columns:  costing.Categories,
		Rows:     make([]dto.SummaryRow, 0, len(records)),
	}

	totalCosts := make(map[costing.Category]decimal.Decimal, len(costing.Categories))
	var totalRevenue, totalNet decimal.Decimal

	for _, r := range records {
		row := dto.SummaryRow{
			ScopeID:   r.ScopeID,
			Revenue:   r.Revenue.Value,
			Costs:     make(map[costing.Category]decimal.Decimal, len(costing.Categories)),
			NetProfit: r.NetProfit.Value,
			Margin:    r.Margin,
		}
		for _, cat := range costing.Categories {
			v := decimal.Zero
			if c, ok := r.Costs[cat]; ok {
				v = c.Value
			}
			row.Costs[cat] = v
			totalCosts[cat] = totalCosts[cat].Add(v)
		}
		totalRevenue = totalRevenue.Add(row.Revenue)
		totalNet = totalNet.Add(row.NetProfit)
		table.Rows = append(table.Rows, row)
	}

	total := dto.SummaryRow{
		ScopeID:   "TOTAL",
		Revenue:   totalRevenue,
		Costs:     totalCosts,
		NetProfit: totalNet,
	}
	if !totalRevenue.IsZero() {
		total.Margin = decimal.NullDecimal{Decimal: totalNet.DivRound(totalRevenue, 6), Valid: true}
	}
	table.Total = total
	return table
}

// Text renderiza el resumen como tabla de texto alineada para stdout.
func (b *Builder) Text(table dto.SummaryTable) string {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 2, 4, 2, ' ', tabwriter.AlignRight)

	fmt.Fprintf(w, "%s\trevenue\t", table.Scope)
	for _, cat := range table.Columns {
		fmt.Fprintf(w, "%s\t", cat)
	}
	fmt.Fprint(w, "net_profit\tmargin\t\n")

	writeRow := func(row dto.SummaryRow) {
		fmt.Fprintf(w, "%s\t%s\t", row.ScopeID, b.money(row.Revenue))
		for _, cat := range table.Columns {
			fmt.Fprintf(w, "%s\t", b.money(row.Costs[cat]))
		}
		fmt.Fprintf(w, "%s\t%s\t\n", b.money(row.NetProfit), FormatMargin(row.Margin))
	}
	for _, row := range table.Rows {
		writeRow(row)
	}
	writeRow(table.Total)

	w.Flush()
	return sb.String()
}

// money formatea un valor a la precisión de la unidad menor de la moneda
// del reporte.
func (b *Builder) money(v decimal.Decimal) string {
	scale, err := money.MinorUnits(b.Currency)
	if err != nil {
		return v.String()
	}
	return v.StringFixed(int32(scale))
}

// FormatMargin formatea el margen como porcentaje con dos decimales; el
// margen nulo se reporta vacío, nunca como "0.00%".
func FormatMargin(m decimal.NullDecimal) string {
	if !m.Valid {
		return ""
	}
	return m.Decimal.Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
}
