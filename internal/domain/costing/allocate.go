package costing

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Dysin/cross-border/internal/domain"
	"github.com/Dysin/cross-border/internal/domain/money"
)

// AllocationResult agrupa las líneas per-unit producidas y los grupos de
// by_revenue_share que cayeron al reparto equitativo por ingreso cero.
// El fallback es documentado, no silencioso: el llamador debe registrarlo.
type AllocationResult struct {
	Lines               []CostLine
	EqualSplitFallbacks []string
}

// Allocate reparte cada línea compartida entre las unidades miembro de su
// grupo según la política declarada, y deja pasar las líneas ya per-unit
// sin modificarlas.
//
// Invariante de conservación: la suma de los montos per-unit producidos
// para un grupo es EXACTAMENTE el monto compartido original. Se garantiza
// por construcción con la regla del residuo (cada parte se trunca a la
// unidad menor y el residuo completo va a la primera unidad en orden de ID
// ascendente), no por corrección posterior.
func Allocate(lines []CostLine, policies map[string]AllocationPolicy, catalog Catalog) (AllocationResult, error) {
	var out AllocationResult
	for _, line := range lines {
		if err := line.Validate(); err != nil {
			return AllocationResult{}, err
		}
		if line.Basis == BasisPerUnit {
			out.Lines = append(out.Lines, line)
			continue
		}

		members, ok := catalog[line.SharedGroup]
		if !ok || len(members) == 0 {
			return AllocationResult{}, fmt.Errorf("%w: grupo %s sin unidades en el catálogo",
				domain.ErrUnknownAllocationTarget, line.SharedGroup)
		}
		policy, ok := policies[line.SharedGroup]
		if !ok {
			return AllocationResult{}, fmt.Errorf("%w: grupo %s sin política declarada",
				domain.ErrInvalidPolicy, line.SharedGroup)
		}
		if err := policy.validateFor(line.SharedGroup, members); err != nil {
			return AllocationResult{}, err
		}

		weights, fellBack := resolveWeights(policy, members)
		if fellBack {
			out.EqualSplitFallbacks = append(out.EqualSplitFallbacks, line.SharedGroup)
		}

		split, err := splitExact(line.Amount, members, weights)
		if err != nil {
			return AllocationResult{}, fmt.Errorf("grupo %s: %w", line.SharedGroup, err)
		}
		for i, u := range members {
			out.Lines = append(out.Lines, CostLine{
				ID:       uuid.NewString(),
				SKU:      u.SKU,
				OrderID:  u.OrderID,
				Category: line.Category,
				Amount:   split[i],
				Basis:    BasisPerUnit,
				At:       u.At,
			})
		}
	}
	return out, nil
}

// resolveWeights materializa los pesos efectivos del reparto. Para
// by_revenue_share el peso es el ingreso de la unidad en la ventana; si el
// ingreso total del grupo es cero cae a reparto equitativo (fallback
// documentado).
func resolveWeights(policy AllocationPolicy, members []Unit) (map[string]decimal.Decimal, bool) {
	weights := make(map[string]decimal.Decimal, len(members))
	switch policy.Method {
	case ByWeight:
		return policy.Weights, false
	case ByRevenueShare:
		total := decimal.Zero
		for _, u := range members {
			total = total.Add(u.Revenue.Value)
		}
		if total.IsPositive() {
			for _, u := range members {
				weights[u.ID] = u.Revenue.Value
			}
			return weights, false
		}
		for _, u := range members {
			weights[u.ID] = decimal.New(1, 0)
		}
		return weights, true
	default: // ByUnitCount
		for _, u := range members {
			weights[u.ID] = decimal.New(1, 0)
		}
		return weights, false
	}
}

// splitExact reparte total entre los miembros en proporción a sus pesos.
// Cada parte se trunca a la unidad menor de la moneda; el residuo se asigna
// completo a la primera unidad en orden estable (ID ascendente), de modo
// que la suma de las partes iguala el total sin fuga ni doble conteo.
func splitExact(total money.Amount, members []Unit, weights map[string]decimal.Decimal) ([]money.Amount, error) {
	scale, err := money.MinorUnits(total.Currency)
	if err != nil {
		return nil, err
	}

	ordered := make([]Unit, len(members))
	copy(ordered, members)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	sumWeights := decimal.Zero
	for _, u := range ordered {
		sumWeights = sumWeights.Add(weights[u.ID])
	}

	parts := make(map[string]decimal.Decimal, len(ordered))
	assigned := decimal.Zero
	for _, u := range ordered {
		share := total.Value.Mul(weights[u.ID]).Div(sumWeights).Truncate(int32(scale))
		parts[u.ID] = share
		assigned = assigned.Add(share)
	}
	// Residuo de redondeo a la primera unidad del orden estable.
	parts[ordered[0].ID] = parts[ordered[0].ID].Add(total.Value.Sub(assigned))

	out := make([]money.Amount, len(members))
	for i, u := range members {
		out[i] = money.New(parts[u.ID], total.Currency)
	}
	return out, nil
}
