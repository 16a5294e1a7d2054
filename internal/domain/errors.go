package domain

import "errors"

// Errores de dominio (sin dependencias externas).
//
// Todo error se detecta y reporta en la frontera que lo observa (resolver,
// motor de asignación, agregador). Nunca se sustituye por cero ni se omite
// el registro: las cifras de rentabilidad son financieras y deben ser
// auditables.
var (
	ErrRateUnavailable         = errors.New("tasa de cambio no disponible")
	ErrMissingRateTable        = errors.New("entrada de tabla de tarifas ausente")
	ErrUnknownAllocationTarget = errors.New("destino de asignación desconocido")
	ErrInvalidPolicy           = errors.New("política de asignación inválida")
	ErrMalformedRecord         = errors.New("registro de entrada malformado")
	ErrCurrencyMismatch        = errors.New("operación entre monedas distintas")
)
