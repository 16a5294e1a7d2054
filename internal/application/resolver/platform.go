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

// PlatformFee resuelve los cargos de la plataforma de venta por orden:
// comisión (tasa × ingreso de la orden) y, si la tabla los tarifa, cargos
// fijos de bodegaje y publicación.
//
// La entrada de comisión es obligatoria para toda plataforma presente en
// las ventas; su ausencia es un error de corrida, nunca comisión cero.
// Los cargos salen compartidos sobre las líneas de la orden con reparto
// por participación de ingreso, para que el desglose por SKU cierre contra
// el total de la orden.
type PlatformFee struct {
	normalizer
}

// NewPlatformFee construye el resolver de cargos de plataforma.
func NewPlatformFee(target string, lookup money.RateLookup) *PlatformFee {
	return &PlatformFee{normalizer{target: target, lookup: lookup}}
}

// Category implementa Resolver.
func (r *PlatformFee) Category() costing.Category { return costing.CategoryPlatformFee }

// Resolve produce las líneas de cargo por orden.
func (r *PlatformFee) Resolve(_ context.Context, ds *entity.Dataset) (Resolution, error) {
	res := Resolution{
		Groups:   make(costing.Catalog),
		Policies: make(map[string]costing.AllocationPolicy),
	}
	for _, orderID := range orderIDs(ds) {
		lines := ds.LinesOfOrder(orderID)
		platform := lines[0].Platform

		units, err := r.orderUnits(lines)
		if err != nil {
			return Resolution{}, err
		}
		group := "order/" + orderID
		res.Groups[group] = units
		res.Policies[group] = costing.AllocationPolicy{Method: costing.ByRevenueShare}

		// Comisión: tasa de la tabla × ingreso normalizado de la orden.
		rule, ok := ds.Fees.Lookup(platform, entity.FeeCommission)
		if !ok {
			return Resolution{}, fmt.Errorf("%w: comisión de la plataforma %q (orden %s)",
				domain.ErrMissingRateTable, platform, orderID)
		}
		revenue := decimal.Zero
		for _, u := range units {
			revenue = revenue.Add(u.Revenue.Value)
		}
		commission, err := money.RoundMinor(revenue.Mul(rule.Rate), r.target)
		if err != nil {
			return Resolution{}, err
		}
		res.Lines = append(res.Lines, costing.CostLine{
			ID:          uuid.NewString(),
			Category:    costing.CategoryPlatformFee,
			Amount:      money.New(commission, r.target),
			Basis:       costing.BasisShared,
			SharedGroup: group,
		})

		// Cargos fijos tarifados para la plataforma (opcionales).
		for _, t := range []entity.FeeType{entity.FeeStorage, entity.FeeListing} {
			flat, ok := ds.Fees.Lookup(platform, t)
			if !ok {
				continue
			}
			amount, err := r.normalize(flat.Flat, flat.Currency)
			if err != nil {
				return Resolution{}, fmt.Errorf("cargo %s de %q: %w", t, platform, err)
			}
			res.Lines = append(res.Lines, costing.CostLine{
				ID:          uuid.NewString(),
				Category:    costing.CategoryPlatformFee,
				Amount:      amount,
				Basis:       costing.BasisShared,
				SharedGroup: group,
			})
		}
	}
	return res, nil
}
