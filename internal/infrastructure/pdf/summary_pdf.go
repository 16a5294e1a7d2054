// Package pdf genera el resumen tabular de rentabilidad en PDF (Maroto v2).
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + moneda  │  Run ID + fecha de corrida       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Scope | Ingreso | Costos por categoría | Neto | Mg   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES                                                     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CAC por campaña (informativo)                               │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/Dysin/cross-border/internal/application/dto"
	"github.com/Dysin/cross-border/internal/domain/money"
	"github.com/Dysin/cross-border/internal/interfaces/report"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// RunMeta identifica la corrida que produjo el resumen.
type RunMeta struct {
	RunID       string
	GeneratedAt time.Time
	Currency    string
}

// ── Generator ─────────────────────────────────────────────────────────────────

// SummaryGenerator genera el PDF del resumen de rentabilidad usando Maroto v2.
type SummaryGenerator struct{}

// NewSummaryGenerator construye el generador.
func NewSummaryGenerator() *SummaryGenerator { return &SummaryGenerator{} }

// Generate arma el PDF y devuelve sus bytes.
func (g *SummaryGenerator) Generate(meta RunMeta, table dto.SummaryTable, cac []dto.CACRow) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Resumen de Rentabilidad", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(meta, table))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow(table))
	for _, r := range tableRows(table) {
		m.AddRows(r)
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalRow(table))

	if len(cac) > 0 {
		m.AddRows(line.NewRow(3))
		m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
		for _, r := range cacRows(cac, table.Currency) {
			m.AddRows(r)
		}
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título + scope (izq) y run id + fecha (der).
func headerRow(meta RunMeta, table dto.SummaryTable) core.Row {
	return row.New(16).Add(
		col.New(7).Add(
			text.New("RESUMEN DE RENTABILIDAD", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Scope: %s   |   Moneda: %s", table.Scope, table.Currency), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("Corrida: "+meta.RunID, props.Text{
				Size: 8, Align: align.Right, Top: 2, Color: colorGray,
			}),
			text.New("Fecha: "+meta.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
		),
	)
}

// anchos de columna (suman 12): scope 2, ingreso 2, cinco costos 1c/u,
// neto 2, margen 1.
func tableHeaderRow(table dto.SummaryTable) core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 7, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	cols := []core.Col{
		h(string(table.Scope), 2, align.Left),
		h("Ingreso", 2, align.Right),
	}
	for _, cat := range table.Columns {
		cols = append(cols, h(string(cat), 1, align.Right))
	}
	cols = append(cols,
		h("Neto", 2, align.Right),
		h("Margen", 1, align.Right),
	)
	return row.New(8).Add(cols...)
}

// tableRows: una fila por valor del scope.
func tableRows(table dto.SummaryTable) []core.Row {
	result := make([]core.Row, 0, len(table.Rows))
	for _, r := range table.Rows {
		result = append(result, summaryRow(r, table, false))
	}
	return result
}

// totalRow: fila de totales resaltada.
func totalRow(table dto.SummaryTable) core.Row {
	return summaryRow(table.Total, table, true)
}

func summaryRow(r dto.SummaryRow, table dto.SummaryTable, bold bool) core.Row {
	style := fontstyle.Normal
	if bold {
		style = fontstyle.Bold
	}
	cell := func(value string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(value, props.Text{
			Size: 7, Style: style, Align: a, Top: 1, Left: 1, Right: 1,
		}))
	}
	cols := []core.Col{
		cell(r.ScopeID, 2, align.Left),
		cell(formatMoney(r.Revenue, table.Currency), 2, align.Right),
	}
	for _, cat := range table.Columns {
		cols = append(cols, cell(formatMoney(r.Costs[cat], table.Currency), 1, align.Right))
	}
	cols = append(cols,
		cell(formatMoney(r.NetProfit, table.Currency), 2, align.Right),
		cell(report.FormatMargin(r.Margin), 1, align.Right),
	)
	return row.New(6).Add(cols...)
}

// cacRows: sección informativa de costo de adquisición de cliente.
func cacRows(cac []dto.CACRow, currency string) []core.Row {
	rows := []core.Row{
		row.New(8).Add(col.New(12).Add(
			text.New("CAC POR CAMPAÑA (informativo, no entra al neto)", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2,
			}),
		)),
	}
	for _, c := range cac {
		cacStr := "—"
		if c.CAC.Valid {
			cacStr = formatMoney(c.CAC.Decimal, currency)
		}
		rows = append(rows, row.New(6).Add(
			col.New(4).Add(text.New(c.CampaignID, props.Text{Size: 7, Top: 1})),
			col.New(3).Add(text.New("Gasto: "+formatMoney(c.Spend, currency), props.Text{Size: 7, Align: align.Right, Top: 1})),
			col.New(2).Add(text.New(fmt.Sprintf("Clientes: %d", c.Customers), props.Text{Size: 7, Align: align.Right, Top: 1})),
			col.New(3).Add(text.New("CAC: "+cacStr, props.Text{Size: 7, Align: align.Right, Top: 1})),
		))
	}
	return rows
}

// formatMoney formatea a la unidad menor de la moneda del reporte.
func formatMoney(v decimal.Decimal, currency string) string {
	scale, err := money.MinorUnits(currency)
	if err != nil {
		return v.String()
	}
	return v.StringFixed(int32(scale))
}
