package entity

import "github.com/shopspring/decimal"

// FeeType clasifica los cargos de plataforma.
type FeeType string

const (
	FeeCommission FeeType = "commission"
	FeeStorage    FeeType = "storage"
	FeeListing    FeeType = "listing"
)

// FeeRule es una entrada de la tabla de tarifas de una plataforma.
// Commission usa Rate (fracción del ingreso de la orden); storage y
// listing usan Flat (monto fijo por orden).
type FeeRule struct {
	Platform string
	Type     FeeType
	Rate     decimal.Decimal
	Flat     decimal.Decimal
	Currency string
}

// FeeSchedule indexa las reglas por (plataforma, tipo de cargo).
type FeeSchedule map[string]map[FeeType]FeeRule

// Lookup busca la regla para la plataforma y tipo dados.
func (s FeeSchedule) Lookup(platform string, t FeeType) (FeeRule, bool) {
	rules, ok := s[platform]
	if !ok {
		return FeeRule{}, false
	}
	r, ok := rules[t]
	return r, ok
}

// Add inserta una regla en la tabla.
func (s FeeSchedule) Add(r FeeRule) {
	if s[r.Platform] == nil {
		s[r.Platform] = make(map[FeeType]FeeRule)
	}
	s[r.Platform][r.Type] = r
}
