package resolver_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Dysin/cross-border/internal/domain/costing"
	"github.com/Dysin/cross-border/internal/domain/entity"
	"github.com/Dysin/cross-border/internal/domain/money"
)

// Fecha de venta por defecto de los tests.
var saleAt = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	v, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return v
}

// noLookup falla el test si un resolver consulta tasas cuando todo está
// en la moneda objetivo.
func noLookup(t *testing.T) money.RateLookup {
	return func(from, to string) (decimal.Decimal, error) {
		t.Fatalf("lookup inesperado %s->%s", from, to)
		return decimal.Decimal{}, nil
	}
}

// fixedLookup devuelve siempre la misma tasa.
func fixedLookup(t *testing.T, rate string) money.RateLookup {
	r := dec(t, rate)
	return func(from, to string) (decimal.Decimal, error) {
		return r, nil
	}
}

func orderLine(t *testing.T, orderID, sku string, qty int64, unitPrice string) entity.OrderLine {
	t.Helper()
	return entity.OrderLine{
		OrderID:            orderID,
		SKU:                sku,
		Quantity:           qty,
		UnitPrice:          dec(t, unitPrice),
		Currency:           "USD",
		Platform:           "amazon",
		DestinationCountry: "US",
		CustomerID:         "CUST-1",
		At:                 saleAt,
	}
}

func batch(t *testing.T, sku, batchID string, qty int64, unitCost string, purchased time.Time) entity.ProductBatch {
	t.Helper()
	return entity.ProductBatch{
		SKU:         sku,
		BatchID:     batchID,
		Quantity:    qty,
		UnitCost:    dec(t, unitCost),
		Currency:    "USD",
		PurchasedAt: purchased,
	}
}

// amountsOf indexa los montos de las líneas por grupo compartido (o por
// unidad si son per-unit).
func amountsOf(lines []costing.CostLine) map[string][]decimal.Decimal {
	out := make(map[string][]decimal.Decimal)
	for _, l := range lines {
		key := l.SharedGroup
		if l.Basis == costing.BasisPerUnit {
			key = l.OrderID + "/" + l.SKU
		}
		out[key] = append(out[key], l.Amount.Value)
	}
	return out
}
