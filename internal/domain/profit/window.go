// Package profit agrega líneas de costo per-unit más ingresos en registros
// de rentabilidad por SKU, por orden y por ventana de tiempo.
package profit

import (
	"fmt"
	"time"

	"github.com/Dysin/cross-border/internal/domain"
)

// Granularity define el tamaño de las ventanas del scope period.
type Granularity string

const (
	Daily   Granularity = "day"
	Weekly  Granularity = "week"
	Monthly Granularity = "month"
)

// Window es un intervalo semiabierto [Start, End). Cada evento pertenece a
// exactamente una ventana según su timestamp de transacción.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains indica si t cae dentro de la ventana.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Label devuelve la etiqueta estable de la ventana para reportes,
// ej. "2025-09-01".
func (w Window) Label() string {
	return w.Start.Format("2006-01-02")
}

// WindowOf devuelve la ventana de la granularidad dada que contiene t.
// Las semanas empiezan el lunes; los meses el día 1.
func WindowOf(t time.Time, g Granularity, loc *time.Location) (Window, error) {
	t = t.In(loc)
	switch g {
	case Daily:
		start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		return Window{Start: start, End: start.AddDate(0, 0, 1)}, nil
	case Weekly:
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		offset := (int(day.Weekday()) + 6) % 7 // lunes = 0
		start := day.AddDate(0, 0, -offset)
		return Window{Start: start, End: start.AddDate(0, 0, 7)}, nil
	case Monthly:
		start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
		return Window{Start: start, End: start.AddDate(0, 1, 0)}, nil
	default:
		return Window{}, fmt.Errorf("%w: granularidad %q desconocida", domain.ErrMalformedRecord, g)
	}
}

// WindowsCovering devuelve las ventanas contiguas que cubren [from, to],
// sin huecos: las ventanas sin actividad también se emiten, para que el
// consumidor de gráficos dibuje un eje continuo.
func WindowsCovering(from, to time.Time, g Granularity, loc *time.Location) ([]Window, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: rango invertido %s > %s", domain.ErrMalformedRecord, from, to)
	}
	first, err := WindowOf(from, g, loc)
	if err != nil {
		return nil, err
	}
	var windows []Window
	w := first
	for !w.Start.After(to) {
		windows = append(windows, w)
		if !w.Contains(to) {
			next, err := WindowOf(w.End, g, loc)
			if err != nil {
				return nil, err
			}
			w = next
			continue
		}
		break
	}
	return windows, nil
}
