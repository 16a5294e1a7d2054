package profit

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Dysin/cross-border/internal/domain"
	"github.com/Dysin/cross-border/internal/domain/costing"
	"github.com/Dysin/cross-border/internal/domain/money"
)

const marginScale = 6 // decimales del margen (ratio, no porcentaje)

// Scope es la granularidad de agregación solicitada.
type Scope string

const (
	ScopeSKU    Scope = "sku"
	ScopeOrder  Scope = "order"
	ScopePeriod Scope = "period"
)

// RevenueRecord es el ingreso de una línea de orden (orden + SKU), ya
// normalizado a la moneda objetivo.
type RevenueRecord struct {
	OrderID    string
	SKU        string
	CustomerID string
	Amount     money.Amount
	At         time.Time
}

// ProfitRecord es la salida inmutable de una corrida de agregación para un
// valor de scope. Recalcular produce un registro nuevo, nunca se muta.
//
// Margin es nulo (no cero, no error) cuando el ingreso es cero, para
// distinguir "sin margen" de "margen 0%".
type ProfitRecord struct {
	Scope     Scope
	ScopeID   string
	Window    Window // solo scope period
	Revenue   money.Amount
	Costs     map[costing.Category]money.Amount
	NetProfit money.Amount
	Margin    decimal.NullDecimal
}

// Options parametriza una corrida de agregación.
type Options struct {
	Currency    string
	Granularity Granularity    // scope period
	Location    *time.Location // calendario de las ventanas
	From, To    time.Time      // rango a cubrir en scope period; vacío = derivado de los datos
}

// Aggregate agrupa líneas de costo (todas per-unit a esta altura) e
// ingresos por la clave del scope pedido y produce un ProfitRecord por
// grupo: costos sumados por categoría sin mezclarlas, neto = ingreso −
// Σcostos, margen = neto / ingreso.
//
// En scope period las ventanas sin actividad dentro del rango cubierto se
// emiten con valores cero, no se omiten.
func Aggregate(lines []costing.CostLine, revenues []RevenueRecord, scope Scope, opts Options) ([]ProfitRecord, error) {
	if opts.Location == nil {
		opts.Location = time.UTC
	}

	type bucket struct {
		window  Window
		revenue decimal.Decimal
		costs   map[costing.Category]decimal.Decimal
	}
	buckets := make(map[string]*bucket)
	get := func(key string, w Window) *bucket {
		b, ok := buckets[key]
		if !ok {
			b = &bucket{window: w, costs: make(map[costing.Category]decimal.Decimal)}
			buckets[key] = b
		}
		return b
	}

	keyOf := func(orderID, sku string, at time.Time) (string, Window, error) {
		switch scope {
		case ScopeSKU:
			return sku, Window{}, nil
		case ScopeOrder:
			return orderID, Window{}, nil
		case ScopePeriod:
			w, err := WindowOf(at, opts.Granularity, opts.Location)
			if err != nil {
				return "", Window{}, err
			}
			return w.Label(), w, nil
		default:
			return "", Window{}, fmt.Errorf("%w: scope %q desconocido", domain.ErrMalformedRecord, scope)
		}
	}

	for _, l := range lines {
		if l.Basis != costing.BasisPerUnit {
			return nil, fmt.Errorf("%w: línea compartida %s llegó al agregador sin asignar", domain.ErrMalformedRecord, l.ID)
		}
		if l.Amount.Currency != opts.Currency {
			return nil, fmt.Errorf("%w: línea %s en %s, se esperaba %s", domain.ErrCurrencyMismatch, l.ID, l.Amount.Currency, opts.Currency)
		}
		key, w, err := keyOf(l.OrderID, l.SKU, l.At)
		if err != nil {
			return nil, err
		}
		b := get(key, w)
		b.costs[l.Category] = b.costs[l.Category].Add(l.Amount.Value)
	}

	for _, r := range revenues {
		if r.Amount.Currency != opts.Currency {
			return nil, fmt.Errorf("%w: ingreso de %s/%s en %s, se esperaba %s", domain.ErrCurrencyMismatch, r.OrderID, r.SKU, r.Amount.Currency, opts.Currency)
		}
		key, w, err := keyOf(r.OrderID, r.SKU, r.At)
		if err != nil {
			return nil, err
		}
		b := get(key, w)
		b.revenue = b.revenue.Add(r.Amount.Value)
	}

	// Scope period: rellenar las ventanas vacías del rango cubierto.
	if scope == ScopePeriod {
		from, to := opts.From, opts.To
		if from.IsZero() || to.IsZero() {
			from, to = timeBounds(lines, revenues)
		}
		if !from.IsZero() {
			windows, err := WindowsCovering(from, to, opts.Granularity, opts.Location)
			if err != nil {
				return nil, err
			}
			for _, w := range windows {
				get(w.Label(), w)
			}
		}
	}

	records := make([]ProfitRecord, 0, len(buckets))
	for key, b := range buckets {
		costs := make(map[costing.Category]money.Amount, len(b.costs))
		totalCosts := decimal.Zero
		for cat, v := range b.costs {
			costs[cat] = money.New(v, opts.Currency)
			totalCosts = totalCosts.Add(v)
		}
		net := b.revenue.Sub(totalCosts)

		var margin decimal.NullDecimal
		if !b.revenue.IsZero() {
			margin = decimal.NullDecimal{
				Decimal: net.DivRound(b.revenue, marginScale),
				Valid:   true,
			}
		}

		records = append(records, ProfitRecord{
			Scope:     scope,
			ScopeID:   key,
			Window:    b.window,
			Revenue:   money.New(b.revenue, opts.Currency),
			Costs:     costs,
			NetProfit: money.New(net, opts.Currency),
			Margin:    margin,
		})
	}

	sort.Slice(records, func(i, j int) bool {
		if scope == ScopePeriod {
			return records[i].Window.Start.Before(records[j].Window.Start)
		}
		return records[i].ScopeID < records[j].ScopeID
	})
	return records, nil
}

// timeBounds deriva el rango [mín, máx] de timestamps presentes en los
// datos, para cubrir todas las ventanas con actividad.
func timeBounds(lines []costing.CostLine, revenues []RevenueRecord) (time.Time, time.Time) {
	var from, to time.Time
	observe := func(t time.Time) {
		if t.IsZero() {
			return
		}
		if from.IsZero() || t.Before(from) {
			from = t
		}
		if to.IsZero() || t.After(to) {
			to = t
		}
	}
	for _, l := range lines {
		observe(l.At)
	}
	for _, r := range revenues {
		observe(r.At)
	}
	return from, to
}
