// Package entity define los registros de entrada tipados del análisis.
// La ingesta (CSV u otra fuente) vive en infrastructure; aquí solo el
// modelo que consumen los resolvers.
package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product es el catálogo base de un SKU.
type Product struct {
	SKU          string
	Name         string
	Supplier     string
	UnitWeightKg decimal.Decimal
}

// ProductBatch es un lote de compra de un SKU. Un mismo SKU puede tener
// varios lotes con costos unitarios distintos; el orden de consumo es FIFO
// por fecha de compra salvo que el lote esté marcado Pinned, en cuyo caso
// solo se consume cuando una orden lo referencia explícitamente.
type ProductBatch struct {
	SKU         string
	BatchID     string
	Quantity    int64
	UnitCost    decimal.Decimal
	Currency    string
	PurchasedAt time.Time
	Pinned      bool
}
