// Package pipeline orquesta una corrida completa de análisis: resolución
// de componentes de costo → asignación de compartidos → agregación de
// rentabilidad. Batch síncrono de una sola pasada: la corrida completa
// termina o falla con error reportado; nunca se emiten resultados
// parciales.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Dysin/cross-border/internal/application/resolver"
	"github.com/Dysin/cross-border/internal/domain"
	"github.com/Dysin/cross-border/internal/domain/costing"
	"github.com/Dysin/cross-border/internal/domain/entity"
	"github.com/Dysin/cross-border/internal/domain/money"
	"github.com/Dysin/cross-border/internal/domain/profit"
	"github.com/Dysin/cross-border/pkg/logger"
)

// Options parametriza una corrida.
type Options struct {
	Currency    string             // moneda objetivo de toda la corrida
	Granularity profit.Granularity // tamaño de ventana del scope period
	Location    *time.Location
	From, To    time.Time // rango del scope period; vacío = derivado de los datos
}

// Result es la salida inmutable de una corrida exitosa.
type Result struct {
	RunID        string
	BySKU        []profit.ProfitRecord
	ByOrder      []profit.ProfitRecord
	ByPeriod     []profit.ProfitRecord
	CAC          []resolver.CACMetric
	Inapplicable []string // registros clasificados como no aplicables
	Lines        []costing.CostLine
	Revenues     []profit.RevenueRecord
}

// Pipeline encadena los resolvers, el motor de asignación y el agregador.
type Pipeline struct {
	log    *logger.Logger
	lookup money.RateLookup
}

// New construye el pipeline con el lookup de tasas externo.
func New(log *logger.Logger, lookup money.RateLookup) *Pipeline {
	return &Pipeline{log: log, lookup: lookup}
}

// Run ejecuta la corrida completa sobre el dataset. Cualquier error aborta
// sin producir salida: una cifra de utilidad parcial parecería plausible y
// estaría mal.
func (p *Pipeline) Run(ctx context.Context, ds *entity.Dataset, opts Options) (*Result, error) {
	runID := uuid.NewString()
	started := time.Now()
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	p.log.Info().
		Str("run_id", runID).
		Str("currency", opts.Currency).
		Int("orders", len(ds.Orders)).
		Int("shipments", len(ds.Shipments)).
		Int("campaigns", len(ds.Campaigns)).
		Msg("iniciando corrida de análisis")

	revenues, err := p.buildRevenues(ds, opts.Currency)
	if err != nil {
		return nil, err
	}

	// ── Etapa 1: producción y logística ───────────────────────────────────────
	production := resolver.NewProduction(opts.Currency, p.lookup)
	logistics := resolver.NewLogistics(opts.Currency, p.lookup)

	prodRes, err := production.Resolve(ctx, ds)
	if err != nil {
		return nil, fmt.Errorf("resolver producción: %w", err)
	}
	logRes, err := logistics.Resolve(ctx, ds)
	if err != nil {
		return nil, fmt.Errorf("resolver logística: %w", err)
	}

	// ── Etapa 2: cargos de plataforma, publicidad e impuestos ─────────────────
	// Los impuestos necesitan las bases por orden (producto y logística),
	// derivadas de la etapa 1 antes de asignar.
	platform := resolver.NewPlatformFee(opts.Currency, p.lookup)
	ads := resolver.NewAds(opts.Currency, p.lookup)
	tax := resolver.NewTax(opts.Currency, p.lookup)
	tax.Bases, err = taxBases(prodRes, logRes, opts.Currency)
	if err != nil {
		return nil, err
	}

	platRes, err := platform.Resolve(ctx, ds)
	if err != nil {
		return nil, fmt.Errorf("resolver plataforma: %w", err)
	}
	adsRes, err := ads.Resolve(ctx, ds)
	if err != nil {
		return nil, fmt.Errorf("resolver publicidad: %w", err)
	}
	taxRes, err := tax.Resolve(ctx, ds)
	if err != nil {
		return nil, fmt.Errorf("resolver impuestos: %w", err)
	}

	// ── Asignación de costos compartidos ──────────────────────────────────────
	merged := merge(prodRes, logRes, platRes, adsRes, taxRes)
	allocated, err := costing.Allocate(merged.Lines, merged.Policies, merged.Groups)
	if err != nil {
		return nil, fmt.Errorf("asignar compartidos: %w", err)
	}
	for _, group := range allocated.EqualSplitFallbacks {
		p.log.Warn().
			Str("run_id", runID).
			Str("shared_group", group).
			Msg("ingreso cero en el grupo: reparto por participación cayó a reparto equitativo")
	}

	if err := verifyCoverage(ds, merged, allocated.Lines); err != nil {
		return nil, err
	}

	// ── Agregación en los tres scopes ─────────────────────────────────────────
	aggOpts := profit.Options{
		Currency:    opts.Currency,
		Granularity: opts.Granularity,
		Location:    opts.Location,
		From:        opts.From,
		To:          opts.To,
	}
	bySKU, err := profit.Aggregate(allocated.Lines, revenues, profit.ScopeSKU, aggOpts)
	if err != nil {
		return nil, fmt.Errorf("agregar por SKU: %w", err)
	}
	byOrder, err := profit.Aggregate(allocated.Lines, revenues, profit.ScopeOrder, aggOpts)
	if err != nil {
		return nil, fmt.Errorf("agregar por orden: %w", err)
	}
	byPeriod, err := profit.Aggregate(allocated.Lines, revenues, profit.ScopePeriod, aggOpts)
	if err != nil {
		return nil, fmt.Errorf("agregar por período: %w", err)
	}

	p.log.Info().
		Str("run_id", runID).
		Int("cost_lines", len(allocated.Lines)).
		Int("skus", len(bySKU)).
		Int("orders", len(byOrder)).
		Int("periods", len(byPeriod)).
		Dur("elapsed", time.Since(started)).
		Msg("corrida completada")

	return &Result{
		RunID:        runID,
		BySKU:        bySKU,
		ByOrder:      byOrder,
		ByPeriod:     byPeriod,
		CAC:          merged.Metrics,
		Inapplicable: merged.Inapplicable,
		Lines:        allocated.Lines,
		Revenues:     revenues,
	}, nil
}

// buildRevenues normaliza el ingreso de cada línea de orden a la moneda
// objetivo.
func (p *Pipeline) buildRevenues(ds *entity.Dataset, target string) ([]profit.RevenueRecord, error) {
	revenues := make([]profit.RevenueRecord, 0, len(ds.Orders))
	for _, l := range ds.Orders {
		amount, err := money.Normalize(money.New(l.Revenue(), l.Currency), target, p.lookup)
		if err != nil {
			return nil, fmt.Errorf("ingreso de %s: %w", l.UnitID(), err)
		}
		revenues = append(revenues, profit.RevenueRecord{
			OrderID:    l.OrderID,
			SKU:        l.SKU,
			CustomerID: l.CustomerID,
			Amount:     amount,
			At:         l.At,
		})
	}
	return revenues, nil
}

// taxBases deriva por orden los totales de producto y logística que usan
// las reglas de impuestos. La parte logística de una orden es el total de
// sus envíos; se lee de la línea compartida, cuyo grupo pertenece entero a
// una sola orden.
func taxBases(prodRes, logRes resolver.Resolution, currency string) (map[string]resolver.TaxBase, error) {
	bases := make(map[string]resolver.TaxBase)
	get := func(orderID string) resolver.TaxBase {
		if b, ok := bases[orderID]; ok {
			return b
		}
		return resolver.TaxBase{Product: money.Zero(currency), Logistics: money.Zero(currency)}
	}

	for _, l := range prodRes.Lines {
		b := get(l.OrderID)
		sum, err := b.Product.Add(l.Amount)
		if err != nil {
			return nil, err
		}
		b.Product = sum
		bases[l.OrderID] = b
	}
	for _, l := range logRes.Lines {
		members := logRes.Groups[l.SharedGroup]
		if len(members) == 0 {
			return nil, fmt.Errorf("%w: grupo %s sin miembros", domain.ErrUnknownAllocationTarget, l.SharedGroup)
		}
		orderID := members[0].OrderID
		b := get(orderID)
		sum, err := b.Logistics.Add(l.Amount)
		if err != nil {
			return nil, err
		}
		b.Logistics = sum
		bases[orderID] = b
	}
	return bases, nil
}

// merge combina las resoluciones de los cinco resolvers en un solo
// conjunto de líneas, grupos y políticas para el motor de asignación.
func merge(resolutions ...resolver.Resolution) resolver.Resolution {
	out := resolver.Resolution{
		Groups:   make(costing.Catalog),
		Policies: make(map[string]costing.AllocationPolicy),
	}
	for _, r := range resolutions {
		out.Lines = append(out.Lines, r.Lines...)
		out.Inapplicable = append(out.Inapplicable, r.Inapplicable...)
		out.Metrics = append(out.Metrics, r.Metrics...)
		for g, units := range r.Groups {
			out.Groups[g] = units
		}
		for g, policy := range r.Policies {
			out.Policies[g] = policy
		}
	}
	return out
}

// verifyCoverage comprueba la condición de salida de la corrida: todo
// registro de entrada terminó en al menos una línea de costo o fue
// clasificado como no aplicable. Un registro huérfano es un fallo de
// corrida, no un resultado parcial.
func verifyCoverage(ds *entity.Dataset, merged resolver.Resolution, final []costing.CostLine) error {
	covered := make(map[string]bool)
	for _, l := range final {
		if l.Category == costing.CategoryProduction {
			covered["unit/"+l.OrderID+"/"+l.SKU] = true
		}
	}
	for _, l := range merged.Lines {
		if l.SharedGroup != "" {
			covered[l.SharedGroup] = true
		}
	}
	for _, id := range merged.Inapplicable {
		covered[id] = true
	}

	var orphans []string
	for _, l := range ds.Orders {
		if !covered["unit/"+l.OrderID+"/"+l.SKU] {
			orphans = append(orphans, "order_line "+l.UnitID())
		}
	}
	for _, s := range ds.Shipments {
		if !covered["shipment/"+s.ShipmentID] {
			orphans = append(orphans, "shipment "+s.ShipmentID)
		}
	}
	for _, c := range ds.Campaigns {
		if !covered["campaign/"+c.CampaignID] {
			orphans = append(orphans, "campaign "+c.CampaignID)
		}
	}
	if len(orphans) > 0 {
		return fmt.Errorf("%w: registros sin resolver: %v", domain.ErrMalformedRecord, orphans)
	}
	return nil
}
