package costing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Dysin/cross-border/internal/domain"
)

// PolicyMethod es el método de reparto declarado para un grupo compartido.
type PolicyMethod string

const (
	ByUnitCount    PolicyMethod = "by_unit_count"
	ByWeight       PolicyMethod = "by_weight"
	ByRevenueShare PolicyMethod = "by_revenue_share"
)

// AllocationPolicy declara cómo repartir el monto de un grupo compartido.
// Weights es obligatorio si y solo si Method == ByWeight; los pesos deben
// ser no negativos y sumar más que cero dentro del grupo.
type AllocationPolicy struct {
	Method  PolicyMethod
	Weights map[string]decimal.Decimal
}

// validateFor verifica la política contra los miembros reales del grupo.
func (p AllocationPolicy) validateFor(group string, members []Unit) error {
	switch p.Method {
	case ByUnitCount, ByRevenueShare:
		if len(p.Weights) > 0 {
			return fmt.Errorf("%w: grupo %s: pesos declarados con método %s", domain.ErrInvalidPolicy, group, p.Method)
		}
		return nil
	case ByWeight:
		if len(p.Weights) == 0 {
			return fmt.Errorf("%w: grupo %s: by_weight sin pesos", domain.ErrInvalidPolicy, group)
		}
		memberIDs := make(map[string]bool, len(members))
		for _, u := range members {
			memberIDs[u.ID] = true
		}
		sum := decimal.Zero
		for id, w := range p.Weights {
			if !memberIDs[id] {
				return fmt.Errorf("%w: grupo %s: peso para unidad %s fuera del catálogo", domain.ErrUnknownAllocationTarget, group, id)
			}
			if w.IsNegative() {
				return fmt.Errorf("%w: grupo %s: peso negativo para unidad %s", domain.ErrInvalidPolicy, group, id)
			}
			sum = sum.Add(w)
		}
		for _, u := range members {
			if _, ok := p.Weights[u.ID]; !ok {
				return fmt.Errorf("%w: grupo %s: unidad %s sin peso", domain.ErrInvalidPolicy, group, u.ID)
			}
		}
		if !sum.IsPositive() {
			return fmt.Errorf("%w: grupo %s: suma de pesos no positiva", domain.ErrInvalidPolicy, group)
		}
		return nil
	default:
		return fmt.Errorf("%w: grupo %s: método %q desconocido", domain.ErrInvalidPolicy, group, p.Method)
	}
}
