// Package money define el objeto de valor monetario y la normalización de
// monedas del pipeline de costos.
//
// Regla central: toda aritmética entre dos montos exige la misma moneda; una
// operación entre monedas distintas debe pasar antes por Normalize. Los
// montos son inmutables: cada operación devuelve un monto nuevo.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"

	"github.com/Dysin/cross-border/internal/domain"
)

// Amount es un monto monetario: valor decimal + código ISO 4217.
// Nunca usamos float64 en rutas monetarias; decimal garantiza totales
// reproducibles entre corridas.
type Amount struct {
	Value    decimal.Decimal
	Currency string
}

// New construye un monto. El código de moneda se guarda tal cual; la
// validación ISO ocurre al consultar MinorUnits o al normalizar.
func New(value decimal.Decimal, code string) Amount {
	return Amount{Value: value, Currency: code}
}

// Zero devuelve el monto cero en la moneda indicada.
func Zero(code string) Amount {
	return Amount{Value: decimal.Zero, Currency: code}
}

// Add suma dos montos de la misma moneda.
func (a Amount) Add(b Amount) (Amount, error) {
	if a.Currency != b.Currency {
		return Amount{}, fmt.Errorf("%w: %s + %s", domain.ErrCurrencyMismatch, a.Currency, b.Currency)
	}
	return Amount{Value: a.Value.Add(b.Value), Currency: a.Currency}, nil
}

// Sub resta dos montos de la misma moneda.
func (a Amount) Sub(b Amount) (Amount, error) {
	if a.Currency != b.Currency {
		return Amount{}, fmt.Errorf("%w: %s - %s", domain.ErrCurrencyMismatch, a.Currency, b.Currency)
	}
	return Amount{Value: a.Value.Sub(b.Value), Currency: a.Currency}, nil
}

// Mul multiplica el monto por un factor adimensional (cantidades, tasas).
func (a Amount) Mul(factor decimal.Decimal) Amount {
	return Amount{Value: a.Value.Mul(factor), Currency: a.Currency}
}

// IsZero indica si el valor es exactamente cero.
func (a Amount) IsZero() bool { return a.Value.IsZero() }

// String formatea el monto a la precisión de la unidad menor, ej. "7.00 USD".
func (a Amount) String() string {
	scale, err := MinorUnits(a.Currency)
	if err != nil {
		return a.Value.String() + " " + a.Currency
	}
	return a.Value.StringFixed(int32(scale)) + " " + a.Currency
}

// MinorUnits devuelve los dígitos de la unidad menor de la moneda (2 para
// USD, 0 para JPY, 3 para KWD). Tabla dirigida por golang.org/x/text, no
// codificada a dos decimales.
func MinorUnits(code string) (int, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return 0, fmt.Errorf("%w: moneda %q", domain.ErrMalformedRecord, code)
	}
	scale, _ := currency.Standard.Rounding(unit)
	return scale, nil
}

// RoundMinor redondea un valor a la unidad menor de la moneda usando
// round-half-to-even (bancario), para que corridas repetidas produzcan
// totales idénticos.
func RoundMinor(value decimal.Decimal, code string) (decimal.Decimal, error) {
	scale, err := MinorUnits(code)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return value.RoundBank(int32(scale)), nil
}
