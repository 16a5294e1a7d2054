package resolver

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Dysin/cross-border/internal/domain"
	"github.com/Dysin/cross-border/internal/domain/costing"
	"github.com/Dysin/cross-border/internal/domain/entity"
	"github.com/Dysin/cross-border/internal/domain/money"
)

// Logistics resuelve cada envío en UNA línea compartida por envío; la
// parte de cada SKU no se calcula aquí sino en el motor de asignación.
// La política declarada es reparto por peso (cantidad × peso unitario del
// catálogo); si el grupo no tiene pesos positivos se declara reparto
// equitativo.
type Logistics struct {
	normalizer
}

// NewLogistics construye el resolver de logística.
func NewLogistics(target string, lookup money.RateLookup) *Logistics {
	return &Logistics{normalizer{target: target, lookup: lookup}}
}

// Category implementa Resolver.
func (r *Logistics) Category() costing.Category { return costing.CategoryLogistics }

// Resolve produce una línea compartida por envío con su grupo y política.
func (r *Logistics) Resolve(_ context.Context, ds *entity.Dataset) (Resolution, error) {
	res := Resolution{
		Groups:   make(costing.Catalog),
		Policies: make(map[string]costing.AllocationPolicy),
	}
	for _, s := range ds.Shipments {
		lines, err := requireOrder(ds, s.OrderID, "envío "+s.ShipmentID)
		if err != nil {
			return Resolution{}, err
		}
		var covered []entity.OrderLine
		for _, l := range lines {
			if s.Covers(l.SKU) {
				covered = append(covered, l)
			}
		}
		if len(covered) == 0 {
			return Resolution{}, fmt.Errorf("%w: envío %s no cubre ninguna línea de la orden %s",
				domain.ErrUnknownAllocationTarget, s.ShipmentID, s.OrderID)
		}

		units, err := r.orderUnits(covered)
		if err != nil {
			return Resolution{}, err
		}
		cost, err := shipmentCost(s, covered)
		if err != nil {
			return Resolution{}, err
		}
		amount, err := r.normalize(cost, s.Currency)
		if err != nil {
			return Resolution{}, fmt.Errorf("envío %s: %w", s.ShipmentID, err)
		}

		group := "shipment/" + s.ShipmentID
		res.Lines = append(res.Lines, costing.CostLine{
			ID:          uuid.NewString(),
			Category:    costing.CategoryLogistics,
			Amount:      amount,
			Basis:       costing.BasisShared,
			SharedGroup: group,
		})
		res.Groups[group] = units
		res.Policies[group] = r.weightPolicy(ds, covered, units)
	}
	return res, nil
}

// shipmentCost devuelve el costo del envío. Si no viene declarado se
// tarifa con las tasas del canal: el mayor entre tarifa por pieza × piezas
// y tarifa por kg × peso facturable del envío.
func shipmentCost(s entity.Shipment, covered []entity.OrderLine) (decimal.Decimal, error) {
	if s.Cost.IsPositive() {
		return s.Cost, nil
	}
	if !s.RatePerItem.IsPositive() && !s.RatePerKg.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("%w: envío %s sin costo ni tarifas del canal %s",
			domain.ErrMissingRateTable, s.ShipmentID, s.Channel)
	}
	var pieces int64
	for _, l := range covered {
		pieces += l.Quantity
	}
	byPiece := s.RatePerItem.Mul(decimal.NewFromInt(pieces))
	byKg := s.RatePerKg.Mul(s.WeightKg)
	if byPiece.GreaterThan(byKg) {
		return byPiece, nil
	}
	return byKg, nil
}

// weightPolicy declara el reparto por peso físico del grupo. Si el catálogo
// no aporta pesos positivos (productos sin peso declarado) la política
// declarada pasa a reparto equitativo.
func (r *Logistics) weightPolicy(ds *entity.Dataset, lines []entity.OrderLine, units []costing.Unit) costing.AllocationPolicy {
	weights := make(map[string]decimal.Decimal, len(units))
	total := decimal.Zero
	for i, l := range lines {
		w := decimal.Zero
		if p, ok := ds.Products[l.SKU]; ok {
			w = p.UnitWeightKg.Mul(decimal.NewFromInt(l.Quantity))
		}
		weights[units[i].ID] = w
		total = total.Add(w)
	}
	if !total.IsPositive() {
		return costing.AllocationPolicy{Method: costing.ByUnitCount}
	}
	return costing.AllocationPolicy{Method: costing.ByWeight, Weights: weights}
}
