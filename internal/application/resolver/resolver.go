// Package resolver contiene los cinco resolvers de componentes de costo:
// producción, logística, comisiones de plataforma, publicidad e impuestos.
//
// Todos comparten el mismo contrato: mapear registros crudos del dataset a
// líneas de costo normalizadas a la moneda objetivo. Los costos que cubren
// varias unidades salen con basis compartido y su reparto se delega al
// motor de asignación; cada resolver declara además la membresía y la
// política de sus grupos compartidos.
package resolver

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Dysin/cross-border/internal/domain"
	"github.com/Dysin/cross-border/internal/domain/costing"
	"github.com/Dysin/cross-border/internal/domain/entity"
	"github.com/Dysin/cross-border/internal/domain/money"
)

// Resolution es la salida de un resolver: líneas de costo, los grupos
// compartidos que emitió (membresía + política) y los registros
// clasificados explícitamente como no aplicables. Metrics lleva métricas
// informativas (hoy solo CAC) que no participan del cálculo de utilidad.
type Resolution struct {
	Lines        []costing.CostLine
	Groups       costing.Catalog
	Policies     map[string]costing.AllocationPolicy
	Inapplicable []string
	Metrics      []CACMetric
}

// Resolver es la capacidad "resolver registros crudos de la categoría X en
// líneas de costo".
type Resolver interface {
	Category() costing.Category
	Resolve(ctx context.Context, ds *entity.Dataset) (Resolution, error)
}

// CACMetric es el costo de adquisición de cliente de una campaña:
// gasto ÷ clientes adquiridos en la ventana. Informativo; nunca entra como
// línea de costo al cálculo de utilidad neta.
type CACMetric struct {
	CampaignID string
	Spend      money.Amount
	Customers  int64
	CAC        decimal.NullDecimal // nulo si no se adquirió ningún cliente
}

// normalizer encapsula la moneda objetivo y el lookup de tasas que todo
// resolver usa para emitir montos ya normalizados.
type normalizer struct {
	target string
	lookup money.RateLookup
}

func (n normalizer) normalize(value decimal.Decimal, currency string) (money.Amount, error) {
	return money.Normalize(money.New(value, currency), n.target, n.lookup)
}

// unitOf construye la unidad de asignación de una línea de orden, con su
// ingreso normalizado a la moneda objetivo.
func (n normalizer) unitOf(l entity.OrderLine) (costing.Unit, error) {
	rev, err := n.normalize(l.Revenue(), l.Currency)
	if err != nil {
		return costing.Unit{}, fmt.Errorf("ingreso de %s: %w", l.UnitID(), err)
	}
	return costing.Unit{
		ID:      l.UnitID(),
		SKU:     l.SKU,
		OrderID: l.OrderID,
		At:      l.At,
		Revenue: rev,
	}, nil
}

// orderUnits construye las unidades de todas las líneas de una orden.
func (n normalizer) orderUnits(lines []entity.OrderLine) ([]costing.Unit, error) {
	units := make([]costing.Unit, 0, len(lines))
	for _, l := range lines {
		u, err := n.unitOf(l)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, nil
}

// orderIDs devuelve los IDs de orden presentes en el dataset, en orden de
// primera aparición (determinista para una misma entrada).
func orderIDs(ds *entity.Dataset) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, l := range ds.Orders {
		if !seen[l.OrderID] {
			seen[l.OrderID] = true
			ids = append(ids, l.OrderID)
		}
	}
	return ids
}

// requireOrder devuelve las líneas de la orden o error si no existe.
func requireOrder(ds *entity.Dataset, orderID, context string) ([]entity.OrderLine, error) {
	lines := ds.LinesOfOrder(orderID)
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: %s referencia la orden %s inexistente",
			domain.ErrUnknownAllocationTarget, context, orderID)
	}
	return lines, nil
}
