package resolver_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dysin/cross-border/internal/application/resolver"
	"github.com/Dysin/cross-border/internal/domain"
	"github.com/Dysin/cross-border/internal/domain/costing"
	"github.com/Dysin/cross-border/internal/domain/entity"
	"github.com/Dysin/cross-border/internal/domain/money"
)

func taxTables(t *testing.T, tariff, vatRate string, base entity.VATBase) entity.TaxTables {
	t.Helper()
	return entity.TaxTables{
		Tariffs: map[string]decimal.Decimal{"US": dec(t, tariff)},
		VAT: map[string]entity.VATRule{
			"US": {Market: "US", Rate: dec(t, vatRate), Base: base},
		},
	}
}

func taxResolver(t *testing.T, bases map[string]resolver.TaxBase) *resolver.Tax {
	t.Helper()
	r := resolver.NewTax("USD", noLookup(t))
	r.Bases = bases
	return r
}

func baseUSD(t *testing.T, product, logistics string) resolver.TaxBase {
	t.Helper()
	return resolver.TaxBase{
		Product:   money.New(dec(t, product), "USD"),
		Logistics: money.New(dec(t, logistics), "USD"),
	}
}

// TestTax_ArancelEIVASobreProducto: arancel = tasa × valor de producto;
// IVA con base product ignora la logística.
func TestTax_ArancelEIVASobreProducto(t *testing.T) {
	ds := &entity.Dataset{
		Orders: []entity.OrderLine{orderLine(t, "O1", "A", 1, "10.00")},
		Tax:    taxTables(t, "0.10", "0.20", entity.VATBaseProduct),
	}
	r := taxResolver(t, map[string]resolver.TaxBase{"O1": baseUSD(t, "2.50", "1.20")})

	res, err := r.Resolve(context.Background(), ds)
	require.NoError(t, err)
	require.Len(t, res.Lines, 2, "una línea de arancel y una de IVA")

	total := res.Lines[0].Amount.Value.Add(res.Lines[1].Amount.Value)
	// Arancel 0.25 + IVA 0.50.
	assert.True(t, res.Lines[0].Amount.Value.Equal(dec(t, "0.25")))
	assert.True(t, res.Lines[1].Amount.Value.Equal(dec(t, "0.50")))
	assert.True(t, total.Equal(dec(t, "0.75")))

	for _, l := range res.Lines {
		assert.Equal(t, costing.CategoryTax, l.Category)
		assert.Equal(t, "order/O1", l.SharedGroup)
	}
	assert.Equal(t, costing.ByRevenueShare, res.Policies["order/O1"].Method)
}

// TestTax_IVAConBaseProductoMasLogistica: la regla del mercado decide su
// propia base de cálculo.
func TestTax_IVAConBaseProductoMasLogistica(t *testing.T) {
	ds := &entity.Dataset{
		Orders: []entity.OrderLine{orderLine(t, "O1", "A", 1, "10.00")},
		Tax:    taxTables(t, "0.10", "0.20", entity.VATBaseProductLogistics),
	}
	r := taxResolver(t, map[string]resolver.TaxBase{"O1": baseUSD(t, "2.50", "1.20")})

	res, err := r.Resolve(context.Background(), ds)
	require.NoError(t, err)
	require.Len(t, res.Lines, 2)
	// IVA = (2.50 + 1.20) × 0.20 = 0.74.
	assert.True(t, res.Lines[1].Amount.Value.Equal(dec(t, "0.74")), "se obtuvo %s", res.Lines[1].Amount.Value)
}

// TestTax_ArancelAusenteEsError: un destino alcanzado sin entrada
// arancelaria aborta la corrida, jamás se asume tasa cero.
func TestTax_ArancelAusenteEsError(t *testing.T) {
	de := orderLine(t, "O1", "A", 1, "10.00")
	de.DestinationCountry = "DE"
	ds := &entity.Dataset{
		Orders: []entity.OrderLine{de},
		Tax:    taxTables(t, "0.10", "0.20", entity.VATBaseProduct), // solo US
	}
	r := taxResolver(t, map[string]resolver.TaxBase{"O1": baseUSD(t, "2.50", "0")})

	_, err := r.Resolve(context.Background(), ds)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMissingRateTable))
}

func TestTax_ReglaDeIVAAusenteEsError(t *testing.T) {
	ds := &entity.Dataset{
		Orders: []entity.OrderLine{orderLine(t, "O1", "A", 1, "10.00")},
		Tax: entity.TaxTables{
			Tariffs: map[string]decimal.Decimal{"US": dec(t, "0.10")},
			VAT:     map[string]entity.VATRule{},
		},
	}
	r := taxResolver(t, map[string]resolver.TaxBase{"O1": baseUSD(t, "2.50", "0")})

	_, err := r.Resolve(context.Background(), ds)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMissingRateTable))
}

func TestTax_BaseImponibleAusenteEsError(t *testing.T) {
	ds := &entity.Dataset{
		Orders: []entity.OrderLine{orderLine(t, "O1", "A", 1, "10.00")},
		Tax:    taxTables(t, "0.10", "0.20", entity.VATBaseProduct),
	}
	r := taxResolver(t, map[string]resolver.TaxBase{}) // sin bases

	_, err := r.Resolve(context.Background(), ds)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMalformedRecord))
}
