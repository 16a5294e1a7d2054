package report

import (
	"github.com/Dysin/cross-border/internal/application/dto"
	"github.com/Dysin/cross-border/internal/application/resolver"
	"github.com/Dysin/cross-border/internal/domain/profit"
)

// BuildSeries arma la serie temporal para el sink de gráficos: un punto
// por ventana ordenado por inicio ascendente. El agregador ya emite las
// ventanas sin actividad como registros en cero, así que la serie no tiene
// huecos y el eje del gráfico es continuo.
func (b *Builder) BuildSeries(byPeriod []profit.ProfitRecord) []dto.SeriesPoint {
	points := make([]dto.SeriesPoint, 0, len(byPeriod))
	for _, r := range byPeriod {
		points = append(points, dto.SeriesPoint{
			Window:    r.Window,
			NetProfit: r.NetProfit.Value,
			Margin:    r.Margin,
		})
	}
	return points
}

// BuildCAC arma las filas informativas de costo de adquisición de cliente.
func (b *Builder) BuildCAC(metrics []resolver.CACMetric) []dto.CACRow {
	rows := make([]dto.CACRow, 0, len(metrics))
	for _, m := range metrics {
		rows = append(rows, dto.CACRow{
			CampaignID: m.CampaignID,
			Spend:      m.Spend.Value,
			Customers:  m.Customers,
			CAC:        m.CAC,
		})
	}
	return rows
}
