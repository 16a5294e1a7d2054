// Package costing define las líneas de costo normalizadas y el motor de
// asignación de costos compartidos (un envío que cubre varios SKUs, una
// campaña publicitaria que cubre varias órdenes).
package costing

import (
	"fmt"
	"time"

	"github.com/Dysin/cross-border/internal/domain"
	"github.com/Dysin/cross-border/internal/domain/money"
)

// Category clasifica la línea de costo. El agregador nunca mezcla
// categorías: un auditor debe poder ver el desglose completo.
type Category string

const (
	CategoryProduction  Category = "production"
	CategoryLogistics   Category = "logistics"
	CategoryPlatformFee Category = "platform_fee"
	CategoryAds         Category = "ads"
	CategoryTax         Category = "tax"
)

// Categories lista las categorías en el orden estable de los reportes.
var Categories = []Category{
	CategoryProduction,
	CategoryLogistics,
	CategoryPlatformFee,
	CategoryAds,
	CategoryTax,
}

// Basis indica si la línea ya es atribuible a una unidad o cubre un grupo
// compartido pendiente de asignación.
type Basis string

const (
	BasisPerUnit Basis = "per_unit"
	BasisShared  Basis = "shared"
)

// CostLine es una línea de costo normalizada a la moneda objetivo.
//
// Una línea compartida DEBE llevar SharedGroup (el conjunto de unidades
// sobre el que se asignará). Una línea per-unit lleva el SKU y/o la orden
// de la unidad a la que pertenece, más el timestamp de la transacción para
// la agregación por período.
type CostLine struct {
	ID          string
	SKU         string
	OrderID     string
	Category    Category
	Amount      money.Amount
	Basis       Basis
	SharedGroup string
	At          time.Time
}

// Validate verifica las invariantes estructurales de la línea.
func (l CostLine) Validate() error {
	switch l.Basis {
	case BasisShared:
		if l.SharedGroup == "" {
			return fmt.Errorf("%w: línea compartida %s sin shared_group", domain.ErrMalformedRecord, l.ID)
		}
	case BasisPerUnit:
		if l.SKU == "" && l.OrderID == "" {
			return fmt.Errorf("%w: línea per-unit %s sin SKU ni orden", domain.ErrMalformedRecord, l.ID)
		}
	default:
		return fmt.Errorf("%w: basis %q desconocido en línea %s", domain.ErrMalformedRecord, l.Basis, l.ID)
	}
	if l.Amount.Currency == "" {
		return fmt.Errorf("%w: línea %s sin moneda", domain.ErrMalformedRecord, l.ID)
	}
	return nil
}

// Unit es un miembro de un grupo compartido: una línea de orden (orden +
// SKU) con su ingreso ya normalizado, usado por by_revenue_share.
type Unit struct {
	ID      string
	SKU     string
	OrderID string
	At      time.Time
	Revenue money.Amount
}

// Catalog asocia cada shared_group con sus unidades miembro en orden
// estable (ID ascendente). El orden determina a quién va el residuo de
// redondeo.
type Catalog map[string][]Unit
