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

// TaxBase son los totales por orden sobre los que se calculan los
// impuestos, ya normalizados a la moneda objetivo. El pipeline los deriva
// de las líneas de producción y logística resueltas antes de esta etapa.
type TaxBase struct {
	Product   money.Amount
	Logistics money.Amount
}

// Tax resuelve arancel aduanero e IVA por orden.
//
//   - Arancel: tasa del esquema arancelario del país destino × valor de
//     producto de la orden.
//   - IVA: regla etiquetada del mercado destino; cada regla lleva su propia
//     base de cálculo (producto, o producto + logística).
//
// Una entrada ausente (arancel o regla de IVA) para un destino alcanzado
// hace fallar la corrida; jamás se asume tasa cero.
type Tax struct {
	normalizer

	// Bases por orden; las llena el pipeline entre etapas.
	Bases map[string]TaxBase
}

// NewTax construye el resolver de impuestos.
func NewTax(target string, lookup money.RateLookup) *Tax {
	return &Tax{normalizer: normalizer{target: target, lookup: lookup}}
}

// Category implementa Resolver.
func (r *Tax) Category() costing.Category { return costing.CategoryTax }

// Resolve produce las líneas de arancel e IVA por orden, compartidas sobre
// las líneas de la orden con reparto por participación de ingreso.
func (r *Tax) Resolve(_ context.Context, ds *entity.Dataset) (Resolution, error) {
	res := Resolution{
		Groups:   make(costing.Catalog),
		Policies: make(map[string]costing.AllocationPolicy),
	}
	for _, orderID := range orderIDs(ds) {
		lines := ds.LinesOfOrder(orderID)
		dest := lines[0].DestinationCountry

		base, ok := r.Bases[orderID]
		if !ok {
			return Resolution{}, fmt.Errorf("%w: orden %s sin base imponible calculada",
				domain.ErrMalformedRecord, orderID)
		}

		units, err := r.orderUnits(lines)
		if err != nil {
			return Resolution{}, err
		}
		group := "order/" + orderID
		res.Groups[group] = units
		res.Policies[group] = costing.AllocationPolicy{Method: costing.ByRevenueShare}

		duty, err := r.dutyFor(ds, orderID, dest, base)
		if err != nil {
			return Resolution{}, err
		}
		vat, err := r.vatFor(ds, orderID, dest, base)
		if err != nil {
			return Resolution{}, err
		}
		for _, amount := range []money.Amount{duty, vat} {
			res.Lines = append(res.Lines, costing.CostLine{
				ID:          uuid.NewString(),
				Category:    costing.CategoryTax,
				Amount:      amount,
				Basis:       costing.BasisShared,
				SharedGroup: group,
			})
		}
	}
	return res, nil
}

// dutyFor calcula el arancel: tasa del país destino × valor de producto.
func (r *Tax) dutyFor(ds *entity.Dataset, orderID, dest string, base TaxBase) (money.Amount, error) {
	rate, ok := ds.Tax.Tariffs[dest]
	if !ok {
		return money.Amount{}, fmt.Errorf("%w: arancel del destino %q (orden %s)",
			domain.ErrMissingRateTable, dest, orderID)
	}
	v, err := money.RoundMinor(base.Product.Value.Mul(rate), r.target)
	if err != nil {
		return money.Amount{}, err
	}
	return money.New(v, r.target), nil
}

// vatFor calcula el IVA según la variante del mercado destino.
func (r *Tax) vatFor(ds *entity.Dataset, orderID, dest string, base TaxBase) (money.Amount, error) {
	rule, ok := ds.Tax.VAT[dest]
	if !ok {
		return money.Amount{}, fmt.Errorf("%w: regla de IVA del mercado %q (orden %s)",
			domain.ErrMissingRateTable, dest, orderID)
	}
	var taxable decimal.Decimal
	switch rule.Base {
	case entity.VATBaseProduct:
		taxable = base.Product.Value
	case entity.VATBaseProductLogistics:
		taxable = base.Product.Value.Add(base.Logistics.Value)
	default:
		return money.Amount{}, fmt.Errorf("%w: base de IVA %q desconocida (mercado %s)",
			domain.ErrMalformedRecord, rule.Base, dest)
	}
	v, err := money.RoundMinor(taxable.Mul(rule.Rate), r.target)
	if err != nil {
		return money.Amount{}, err
	}
	return money.New(v, r.target), nil
}
