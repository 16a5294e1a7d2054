package money

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Dysin/cross-border/internal/domain"
)

// RateLookup consulta la tasa de cambio de una moneda a otra. La obtención
// (API externa, caché CSV) pertenece al colaborador que implementa la
// función; el dominio solo exige que una tasa ausente retorne error, nunca
// cero.
type RateLookup func(from, to string) (decimal.Decimal, error)

// Normalize convierte un monto a la moneda objetivo.
//
//   - Misma moneda: retorna el monto sin tocar (sin pérdida de precisión).
//   - Moneda distinta: multiplica por la tasa consultada y redondea a la
//     unidad menor del destino con round-half-to-even.
//
// Función pura sobre sus entradas más la tasa suministrada; no tiene efectos
// secundarios ni reintentos (eso pertenece al colaborador de tasas).
func Normalize(a Amount, target string, lookup RateLookup) (Amount, error) {
	if a.Currency == target {
		return a, nil
	}
	if lookup == nil {
		return Amount{}, fmt.Errorf("%w: %s->%s sin lookup", domain.ErrRateUnavailable, a.Currency, target)
	}
	rate, err := lookup(a.Currency, target)
	if err != nil {
		return Amount{}, fmt.Errorf("%w: %s->%s: %v", domain.ErrRateUnavailable, a.Currency, target, err)
	}
	rounded, err := RoundMinor(a.Value.Mul(rate), target)
	if err != nil {
		return Amount{}, err
	}
	return Amount{Value: rounded, Currency: target}, nil
}
