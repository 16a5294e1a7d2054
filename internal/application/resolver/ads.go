package resolver

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Dysin/cross-border/internal/domain/costing"
	"github.com/Dysin/cross-border/internal/domain/entity"
	"github.com/Dysin/cross-border/internal/domain/money"
)

// Ads atribuye el gasto publicitario: una línea compartida por corrida de
// campaña sobre las líneas de orden de sus SKUs objetivo dentro de la
// ventana, con reparto por participación de ingreso.
//
// Una campaña sin ninguna venta objetivo en su ventana se clasifica como
// no aplicable (queda registrada en la corrida, no genera línea). Además
// calcula el CAC por campaña como métrica informativa separada.
type Ads struct {
	normalizer
}

// NewAds construye el resolver de publicidad.
func NewAds(target string, lookup money.RateLookup) *Ads {
	return &Ads{normalizer{target: target, lookup: lookup}}
}

// Category implementa Resolver.
func (r *Ads) Category() costing.Category { return costing.CategoryAds }

// Resolve produce una línea compartida por campaña aplicable más las
// métricas CAC de todas las campañas.
func (r *Ads) Resolve(_ context.Context, ds *entity.Dataset) (Resolution, error) {
	res := Resolution{
		Groups:   make(costing.Catalog),
		Policies: make(map[string]costing.AllocationPolicy),
	}
	for _, c := range ds.Campaigns {
		spend, err := r.normalize(c.Spend, c.Currency)
		if err != nil {
			return Resolution{}, fmt.Errorf("campaña %s: %w", c.CampaignID, err)
		}

		metric := CACMetric{CampaignID: c.CampaignID, Spend: spend, Customers: c.CustomersAcquired}
		if c.CustomersAcquired > 0 {
			metric.CAC = decimal.NullDecimal{
				Decimal: spend.Value.DivRound(decimal.NewFromInt(c.CustomersAcquired), 2),
				Valid:   true,
			}
		}
		res.Metrics = append(res.Metrics, metric)

		var targeted []entity.OrderLine
		for _, l := range ds.Orders {
			if c.Targets(l.SKU) && c.InWindow(l.At) {
				targeted = append(targeted, l)
			}
		}
		if len(targeted) == 0 {
			// Gasto sin venta atribuible en la ventana: clasificado, no
			// descartado en silencio.
			res.Inapplicable = append(res.Inapplicable, "campaign/"+c.CampaignID)
			continue
		}

		units, err := r.orderUnits(targeted)
		if err != nil {
			return Resolution{}, err
		}
		group := "campaign/" + c.CampaignID
		res.Groups[group] = units
		res.Policies[group] = costing.AllocationPolicy{Method: costing.ByRevenueShare}
		res.Lines = append(res.Lines, costing.CostLine{
			ID:          uuid.NewString(),
			Category:    costing.CategoryAds,
			Amount:      spend,
			Basis:       costing.BasisShared,
			SharedGroup: group,
		})
	}
	return res, nil
}
