package resolver

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Dysin/cross-border/internal/domain"
	"github.com/Dysin/cross-border/internal/domain/costing"
	"github.com/Dysin/cross-border/internal/domain/entity"
	"github.com/Dysin/cross-border/internal/domain/money"
)

// Production resuelve el costo de producción/compra de cada línea de orden
// consumiendo lotes de compra.
//
// Orden de consumo: FIFO por fecha de compra (desempate por ID de lote).
// Un lote Pinned queda fuera del FIFO y solo se consume cuando la línea lo
// referencia explícitamente con BatchRef. Cuando una línea consume de más
// de un lote se generan líneas proporcionales a las unidades tomadas de
// cada uno.
type Production struct {
	normalizer
}

// NewProduction construye el resolver de costo de producción.
func NewProduction(target string, lookup money.RateLookup) *Production {
	return &Production{normalizer{target: target, lookup: lookup}}
}

// Category implementa Resolver.
func (r *Production) Category() costing.Category { return costing.CategoryProduction }

// batchState es el inventario restante de un lote durante la corrida.
type batchState struct {
	entity.ProductBatch
	remaining int64
}

// Resolve consume lotes en orden cronológico de venta y produce una línea
// per-unit por cada (línea de orden, lote consumido).
func (r *Production) Resolve(_ context.Context, ds *entity.Dataset) (Resolution, error) {
	// Estado FIFO por SKU: lotes ordenados por fecha de compra.
	bySKU := make(map[string][]*batchState)
	byID := make(map[string]*batchState)
	for _, b := range ds.Batches {
		st := &batchState{ProductBatch: b, remaining: b.Quantity}
		bySKU[b.SKU] = append(bySKU[b.SKU], st)
		byID[b.BatchID] = st
	}
	for sku := range bySKU {
		batches := bySKU[sku]
		sort.Slice(batches, func(i, j int) bool {
			if !batches[i].PurchasedAt.Equal(batches[j].PurchasedAt) {
				return batches[i].PurchasedAt.Before(batches[j].PurchasedAt)
			}
			return batches[i].BatchID < batches[j].BatchID
		})
	}

	// Las ventas consumen en orden cronológico; desempate por clave de
	// unidad para que corridas repetidas sean idénticas.
	orders := make([]entity.OrderLine, len(ds.Orders))
	copy(orders, ds.Orders)
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].At.Equal(orders[j].At) {
			return orders[i].At.Before(orders[j].At)
		}
		return orders[i].UnitID() < orders[j].UnitID()
	})

	var res Resolution
	for _, line := range orders {
		draws, err := r.consume(line, bySKU, byID)
		if err != nil {
			return Resolution{}, err
		}
		for _, d := range draws {
			amount, err := r.normalize(d.batch.UnitCost.Mul(decimal.NewFromInt(d.units)), d.batch.Currency)
			if err != nil {
				return Resolution{}, fmt.Errorf("producción %s lote %s: %w", line.UnitID(), d.batch.BatchID, err)
			}
			res.Lines = append(res.Lines, costing.CostLine{
				ID:       uuid.NewString(),
				SKU:      line.SKU,
				OrderID:  line.OrderID,
				Category: costing.CategoryProduction,
				Amount:   amount,
				Basis:    costing.BasisPerUnit,
				At:       line.At,
			})
		}
	}
	return res, nil
}

type draw struct {
	batch *batchState
	units int64
}

// consume toma la cantidad de la línea de los lotes que correspondan y
// devuelve cuántas unidades salieron de cada uno.
func (r *Production) consume(line entity.OrderLine, bySKU map[string][]*batchState, byID map[string]*batchState) ([]draw, error) {
	// Lote explícito: la línea pidió un lote concreto (pinned o no).
	if line.BatchRef != "" {
		st, ok := byID[line.BatchRef]
		if !ok || st.SKU != line.SKU {
			return nil, fmt.Errorf("%w: línea %s referencia lote %s inexistente para el SKU",
				domain.ErrMalformedRecord, line.UnitID(), line.BatchRef)
		}
		if st.remaining < line.Quantity {
			return nil, fmt.Errorf("%w: lote %s sin stock para %s (restan %d, pide %d)",
				domain.ErrMalformedRecord, line.BatchRef, line.UnitID(), st.remaining, line.Quantity)
		}
		st.remaining -= line.Quantity
		return []draw{{batch: st, units: line.Quantity}}, nil
	}

	batches, ok := bySKU[line.SKU]
	if !ok {
		return nil, fmt.Errorf("%w: SKU %s sin lote de compra registrado",
			domain.ErrMissingRateTable, line.SKU)
	}

	var draws []draw
	pending := line.Quantity
	for _, st := range batches {
		if st.Pinned || st.remaining == 0 {
			continue
		}
		take := st.remaining
		if take > pending {
			take = pending
		}
		st.remaining -= take
		pending -= take
		draws = append(draws, draw{batch: st, units: take})
		if pending == 0 {
			break
		}
	}
	if pending > 0 {
		return nil, fmt.Errorf("%w: demanda de %s excede el stock de lotes del SKU %s (faltan %d unidades)",
			domain.ErrMalformedRecord, line.UnitID(), line.SKU, pending)
	}
	return draws, nil
}
