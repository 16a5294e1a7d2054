// Package rates implementa el colaborador externo de tasas de cambio: un
// cliente del servicio ExchangeRate-API y una tabla local con caché CSV.
// El núcleo solo ve la función de lookup; reintentos y refresco viven
// aquí, nunca dentro del pipeline.
package rates

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Dysin/cross-border/internal/domain"
)

const crossRateScale = 12 // decimales de la tasa cruzada derivada

// Table es una tabla de tasas contra una moneda base: base -> X. La tasa
// entre dos monedas cualesquiera se deriva cruzando por la base.
type Table struct {
	base  string
	rates map[string]decimal.Decimal
}

// NewTable construye la tabla; la base siempre cotiza 1 contra sí misma.
func NewTable(base string, quotes map[string]decimal.Decimal) *Table {
	rates := make(map[string]decimal.Decimal, len(quotes)+1)
	for code, r := range quotes {
		rates[strings.ToUpper(code)] = r
	}
	rates[strings.ToUpper(base)] = decimal.New(1, 0)
	return &Table{base: strings.ToUpper(base), rates: rates}
}

// Base devuelve la moneda base de la tabla.
func (t *Table) Base() string { return t.base }

// Len devuelve cuántas monedas cotizan en la tabla (incluida la base).
func (t *Table) Len() int { return len(t.rates) }

// Lookup devuelve la tasa from -> to cruzando por la base:
// monto_to = monto_from × rates[to] / rates[from]. Una moneda ausente es
// ErrRateUnavailable, nunca tasa cero.
func (t *Table) Lookup(from, to string) (decimal.Decimal, error) {
	rFrom, ok := t.rates[strings.ToUpper(from)]
	if !ok || !rFrom.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("%w: %s no cotiza contra %s", domain.ErrRateUnavailable, from, t.base)
	}
	rTo, ok := t.rates[strings.ToUpper(to)]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("%w: %s no cotiza contra %s", domain.ErrRateUnavailable, to, t.base)
	}
	return rTo.DivRound(rFrom, crossRateScale), nil
}

// SaveCSV persiste la tabla (columnas currency, rate) para corridas sin
// red, en orden estable.
func (t *Table) SaveCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("guardar tasas: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"currency", "rate"}); err != nil {
		return err
	}
	codes := make([]string, 0, len(t.rates))
	for code := range t.rates {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		if err := w.Write([]string{code, t.rates[code].String()}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// LoadCSV lee una tabla persistida con SaveCSV.
func LoadCSV(path, base string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("leer tasas: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: tasas en %s: %v", domain.ErrMalformedRecord, path, err)
	}
	if len(rows) == 0 || len(rows[0]) < 2 || rows[0][0] != "currency" || rows[0][1] != "rate" {
		return nil, fmt.Errorf("%w: %s sin encabezado currency,rate", domain.ErrMalformedRecord, path)
	}

	quotes := make(map[string]decimal.Decimal, len(rows)-1)
	for i, row := range rows[1:] {
		rate, err := decimal.NewFromString(row[1])
		if err != nil {
			return nil, fmt.Errorf("%w: tasa %q en %s línea %d", domain.ErrMalformedRecord, row[1], path, i+2)
		}
		quotes[row[0]] = rate
	}
	return NewTable(base, quotes), nil
}
