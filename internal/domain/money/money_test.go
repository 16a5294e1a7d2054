package money_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dysin/cross-border/internal/domain"
	"github.com/Dysin/cross-border/internal/domain/money"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	v, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return v
}

// ── Aritmética básica ─────────────────────────────────────────────────────────

func TestAdd_MismaMoneda(t *testing.T) {
	a := money.New(dec(t, "10.50"), "USD")
	b := money.New(dec(t, "2.25"), "USD")

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.True(t, sum.Value.Equal(dec(t, "12.75")))
	assert.Equal(t, "USD", sum.Currency)
}

func TestAdd_MonedaDistintaEsError(t *testing.T) {
	a := money.New(dec(t, "10"), "USD")
	b := money.New(dec(t, "10"), "EUR")

	_, err := a.Add(b)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCurrencyMismatch),
		"sumar monedas distintas debe ser ErrCurrencyMismatch, no conversión implícita")
}

func TestSub_MonedaDistintaEsError(t *testing.T) {
	a := money.New(dec(t, "10"), "USD")
	b := money.New(dec(t, "1"), "CNY")

	_, err := a.Sub(b)
	assert.True(t, errors.Is(err, domain.ErrCurrencyMismatch))
}

// ── Unidad menor por moneda ───────────────────────────────────────────────────

func TestMinorUnits_PorMoneda(t *testing.T) {
	cases := []struct {
		code  string
		scale int
	}{
		{"USD", 2},
		{"EUR", 2},
		{"JPY", 0},
		{"KWD", 3},
	}
	for _, c := range cases {
		scale, err := money.MinorUnits(c.code)
		require.NoError(t, err, c.code)
		assert.Equal(t, c.scale, scale, "unidad menor de %s", c.code)
	}
}

func TestMinorUnits_MonedaInvalida(t *testing.T) {
	_, err := money.MinorUnits("XXXX")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMalformedRecord))
}

// TestRoundMinor_Bancario verifica el redondeo half-to-even: el medio sube
// o baja hacia el dígito par, para que los totales no se sesguen hacia
// arriba en corridas con muchos medios.
func TestRoundMinor_Bancario(t *testing.T) {
	cases := []struct{ in, want string }{
		{"2.345", "2.34"},
		{"2.355", "2.36"},
		{"2.365", "2.36"},
		{"-2.345", "-2.34"},
	}
	for _, c := range cases {
		got, err := money.RoundMinor(dec(t, c.in), "USD")
		require.NoError(t, err)
		assert.True(t, got.Equal(dec(t, c.want)), "RoundMinor(%s) = %s, se esperaba %s", c.in, got, c.want)
	}
}

func TestRoundMinor_JPYSinDecimales(t *testing.T) {
	got, err := money.RoundMinor(dec(t, "1234.56"), "JPY")
	require.NoError(t, err)
	assert.True(t, got.Equal(dec(t, "1235")))
}

// ── Normalización ─────────────────────────────────────────────────────────────

// TestNormalize_MismaMonedaNoTocaElValor: la identidad no consulta tasas
// ni redondea, para no perder precisión en valores intermedios.
func TestNormalize_MismaMonedaNoTocaElValor(t *testing.T) {
	in := money.New(dec(t, "10.123456"), "USD")
	panicLookup := func(from, to string) (decimal.Decimal, error) {
		t.Fatal("la identidad no debe consultar el lookup")
		return decimal.Decimal{}, nil
	}

	out, err := money.Normalize(in, "USD", panicLookup)
	require.NoError(t, err)
	assert.True(t, out.Value.Equal(in.Value))
}

func TestNormalize_ConvierteYRedondea(t *testing.T) {
	in := money.New(dec(t, "100"), "CNY")
	lookup := func(from, to string) (decimal.Decimal, error) {
		require.Equal(t, "CNY", from)
		require.Equal(t, "USD", to)
		return dec(t, "0.142857142857"), nil
	}

	out, err := money.Normalize(in, "USD", lookup)
	require.NoError(t, err)
	// 100 × 0.142857142857 = 14.2857142857 → 14.29
	assert.True(t, out.Value.Equal(dec(t, "14.29")), "se obtuvo %s", out.Value)
	assert.Equal(t, "USD", out.Currency)
}

func TestNormalize_SinLookupEsError(t *testing.T) {
	_, err := money.Normalize(money.New(dec(t, "5"), "EUR"), "USD", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrRateUnavailable))
}

// TestNormalize_IdaYVuelta: convertir y deshacer con la tasa inversa
// recupera el valor original dentro de una unidad menor de redondeo.
func TestNormalize_IdaYVuelta(t *testing.T) {
	rates := map[string]decimal.Decimal{
		"USD->CNY": dec(t, "7"),
		"CNY->USD": dec(t, "0.142857142857"),
	}
	lookup := func(from, to string) (decimal.Decimal, error) {
		return rates[from+"->"+to], nil
	}

	original := money.New(dec(t, "7.00"), "USD")
	cny, err := money.Normalize(original, "CNY", lookup)
	require.NoError(t, err)
	back, err := money.Normalize(cny, "USD", lookup)
	require.NoError(t, err)

	diff := back.Value.Sub(original.Value).Abs()
	assert.True(t, diff.LessThanOrEqual(dec(t, "0.01")),
		"ida y vuelta debe recuperar el valor dentro de una unidad menor: %s", back.Value)
}

// TestNormalize_TasaAusenteEsError: una tasa que falta aborta, jamás se
// asume tasa cero o uno.
func TestNormalize_TasaAusenteEsError(t *testing.T) {
	lookup := func(from, to string) (decimal.Decimal, error) {
		return decimal.Decimal{}, errors.New("no cotiza")
	}
	_, err := money.Normalize(money.New(dec(t, "5"), "EUR"), "USD", lookup)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrRateUnavailable))
}
