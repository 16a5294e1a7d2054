package report_test

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dysin/cross-border/internal/application/resolver"
	"github.com/Dysin/cross-border/internal/domain/costing"
	"github.com/Dysin/cross-border/internal/domain/money"
	"github.com/Dysin/cross-border/internal/domain/profit"
	"github.com/Dysin/cross-border/internal/interfaces/report"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	v, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return v
}

func record(t *testing.T, scopeID, revenue, net string, margin string) profit.ProfitRecord {
	t.Helper()
	r := profit.ProfitRecord{
		Scope:     profit.ScopeSKU,
		ScopeID:   scopeID,
		Revenue:   money.New(dec(t, revenue), "USD"),
		Costs:     map[costing.Category]money.Amount{costing.CategoryProduction: money.New(dec(t, "1.00"), "USD")},
		NetProfit: money.New(dec(t, net), "USD"),
	}
	if margin != "" {
		r.Margin = decimal.NullDecimal{Decimal: dec(t, margin), Valid: true}
	}
	return r
}

// TestBuildTable_ColumnasEstables: el orden de las categorías es fijo
// entre corridas y las ausentes salen en cero, nunca se omiten.
func TestBuildTable_ColumnasEstables(t *testing.T) {
	b := report.NewBuilder("USD")
	table := b.BuildTable(profit.ScopeSKU, []profit.ProfitRecord{
		record(t, "A", "10.00", "9.00", "0.9"),
	})

	assert.Equal(t, costing.Categories, table.Columns)
	require.Len(t, table.Rows, 1)
	for _, cat := range costing.Categories {
		_, ok := table.Rows[0].Costs[cat]
		assert.True(t, ok, "la categoría %s debe estar presente aunque sea cero", cat)
	}
	assert.True(t, table.Rows[0].Costs[costing.CategoryAds].IsZero())
}

// TestBuildTable_Totales: la fila TOTAL suma ingresos, costos y neto, y
// recalcula su propio margen.
func TestBuildTable_Totales(t *testing.T) {
	b := report.NewBuilder("USD")
	table := b.BuildTable(profit.ScopeSKU, []profit.ProfitRecord{
		record(t, "A", "10.00", "9.00", "0.9"),
		record(t, "B", "10.00", "3.00", "0.3"),
	})

	total := table.Total
	assert.Equal(t, "TOTAL", total.ScopeID)
	assert.True(t, total.Revenue.Equal(dec(t, "20.00")))
	assert.True(t, total.NetProfit.Equal(dec(t, "12.00")))
	assert.True(t, total.Costs[costing.CategoryProduction].Equal(dec(t, "2.00")))
	require.True(t, total.Margin.Valid)
	assert.True(t, total.Margin.Decimal.Equal(dec(t, "0.6")))
}

func TestBuildTable_SinIngresosTotalSinMargen(t *testing.T) {
	b := report.NewBuilder("USD")
	table := b.BuildTable(profit.ScopeSKU, []profit.ProfitRecord{
		record(t, "A", "0", "-1.00", ""),
	})
	assert.False(t, table.Total.Margin.Valid)
}

// TestText_MargenNuloVacio: en el texto el margen indefinido sale en
// blanco, jamás como "0.00%".
func TestText_MargenNuloVacio(t *testing.T) {
	b := report.NewBuilder("USD")
	table := b.BuildTable(profit.ScopeSKU, []profit.ProfitRecord{
		record(t, "A", "0", "-1.00", ""),
	})

	out := b.Text(table)
	assert.Contains(t, out, "A")
	assert.Contains(t, out, "TOTAL")
	assert.NotContains(t, out, "0.00%", "el margen indefinido no puede leerse como 0%%")
}

func TestFormatMargin(t *testing.T) {
	m := decimal.NullDecimal{Decimal: dec(t, "0.214285"), Valid: true}
	assert.Equal(t, "21.43%", report.FormatMargin(m))
	assert.Equal(t, "", report.FormatMargin(decimal.NullDecimal{}))
	negative := decimal.NullDecimal{Decimal: dec(t, "-0.5"), Valid: true}
	assert.Equal(t, "-50.00%", report.FormatMargin(negative))
}

// TestText_FormateaALaUnidadMenor: los montos salen con los decimales de
// la moneda del reporte.
func TestText_FormateaALaUnidadMenor(t *testing.T) {
	b := report.NewBuilder("JPY")
	table := b.BuildTable(profit.ScopeSKU, []profit.ProfitRecord{{
		Scope:     profit.ScopeSKU,
		ScopeID:   "A",
		Revenue:   money.New(dec(t, "1500"), "JPY"),
		Costs:     map[costing.Category]money.Amount{},
		NetProfit: money.New(dec(t, "1500"), "JPY"),
		Margin:    decimal.NullDecimal{Decimal: dec(t, "1"), Valid: true},
	}})

	out := b.Text(table)
	lines := strings.Split(out, "\n")
	assert.Contains(t, lines[1], "1500", "JPY sin decimales")
	assert.NotContains(t, lines[1], "1500.00")
}

// ── Serie temporal y CAC ──────────────────────────────────────────────────────

func TestBuildSeries_UnPuntoPorVentana(t *testing.T) {
	w1 := profit.Window{Start: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), End: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)}
	w2 := profit.Window{Start: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), End: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)}
	byPeriod := []profit.ProfitRecord{
		{Scope: profit.ScopePeriod, ScopeID: w1.Label(), Window: w1, NetProfit: money.New(dec(t, "5.00"), "USD")},
		{Scope: profit.ScopePeriod, ScopeID: w2.Label(), Window: w2, NetProfit: money.New(dec(t, "0"), "USD")},
	}

	b := report.NewBuilder("USD")
	series := b.BuildSeries(byPeriod)
	require.Len(t, series, 2)
	assert.Equal(t, "2025-01-01", series[0].Window.Label())
	assert.True(t, series[1].NetProfit.IsZero(), "la ventana sin actividad aparece en cero, no falta")
}

func TestBuildCAC(t *testing.T) {
	metrics := []resolver.CACMetric{{
		CampaignID: "C1",
		Spend:      money.New(dec(t, "10.00"), "USD"),
		Customers:  4,
		CAC:        decimal.NullDecimal{Decimal: dec(t, "2.50"), Valid: true},
	}}

	rows := report.NewBuilder("USD").BuildCAC(metrics)
	require.Len(t, rows, 1)
	assert.Equal(t, "C1", rows[0].CampaignID)
	assert.True(t, rows[0].Spend.Equal(dec(t, "10.00")))
	assert.True(t, rows[0].CAC.Decimal.Equal(dec(t, "2.50")))
}
