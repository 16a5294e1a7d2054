// Package chart es el sink de gráficos: consume la serie temporal de
// utilidad neta y produce un PNG con eje continuo (las ventanas sin
// actividad llegan como puntos en cero, no como huecos).
package chart

import (
	"bytes"
	"fmt"

	"github.com/fogleman/gg"
	"github.com/shopspring/decimal"
	"golang.org/x/image/font/basicfont"

	"github.com/Dysin/cross-border/internal/application/dto"
)

const (
	defaultWidth  = 960
	defaultHeight = 420
	marginLeft    = 70.0
	marginRight   = 20.0
	marginTop     = 30.0
	marginBottom  = 50.0
)

// Renderer dibuja la serie de utilidad neta por ventana.
type Renderer struct {
	Width  int
	Height int
}

// NewRenderer construye el renderizador con el tamaño por defecto.
func NewRenderer() *Renderer {
	return &Renderer{Width: defaultWidth, Height: defaultHeight}
}

// RenderNetProfit dibuja la serie y devuelve el PNG.
func (r *Renderer) RenderNetProfit(series []dto.SeriesPoint, currency string) ([]byte, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("chart: serie vacía")
	}

	// Rango vertical: siempre incluye el cero para que la línea de
	// pérdida/ganancia sea visible.
	minV, maxV := 0.0, 0.0
	values := make([]float64, len(series))
	for i, p := range series {
		v, _ := p.NetProfit.Float64()
		values[i] = v
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	if minV == maxV {
		maxV = minV + 1
	}
	pad := (maxV - minV) * 0.08
	minV -= pad
	maxV += pad

	dc := gg.NewContext(r.Width, r.Height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	plotW := float64(r.Width) - marginLeft - marginRight
	plotH := float64(r.Height) - marginTop - marginBottom

	xAt := func(i int) float64 {
		if len(series) == 1 {
			return marginLeft + plotW/2
		}
		return marginLeft + plotW*float64(i)/float64(len(series)-1)
	}
	yAt := func(v float64) float64 {
		return marginTop + plotH*(maxV-v)/(maxV-minV)
	}

	// Ejes.
	dc.SetRGB(0.2, 0.2, 0.2)
	dc.SetLineWidth(1)
	dc.DrawLine(marginLeft, marginTop, marginLeft, marginTop+plotH)
	dc.DrawLine(marginLeft, marginTop+plotH, marginLeft+plotW, marginTop+plotH)
	dc.Stroke()

	// Línea de cero.
	if minV < 0 && maxV > 0 {
		dc.SetRGB(0.6, 0.6, 0.6)
		dc.SetLineWidth(0.5)
		dc.DrawLine(marginLeft, yAt(0), marginLeft+plotW, yAt(0))
		dc.Stroke()
		dc.DrawStringAnchored("0", marginLeft-6, yAt(0), 1, 0.4)
	}

	// Etiquetas del eje Y: mínimo y máximo.
	dc.SetRGB(0.2, 0.2, 0.2)
	dc.DrawStringAnchored(formatAxis(maxV), marginLeft-6, marginTop, 1, 0.4)
	dc.DrawStringAnchored(formatAxis(minV), marginLeft-6, marginTop+plotH, 1, 0.4)
	dc.DrawStringAnchored("net profit ("+currency+")", marginLeft, marginTop-12, 0, 0.5)

	// Etiquetas del eje X: a lo sumo ocho, repartidas.
	step := 1
	if len(series) > 8 {
		step = (len(series) + 7) / 8
	}
	for i := 0; i < len(series); i += step {
		dc.DrawStringAnchored(series[i].Window.Label(), xAt(i), marginTop+plotH+16, 0.5, 0.5)
	}

	// Serie: polilínea + puntos.
	dc.SetRGB(0, 0.27, 0.5)
	dc.SetLineWidth(2)
	for i := 1; i < len(values); i++ {
		dc.DrawLine(xAt(i-1), yAt(values[i-1]), xAt(i), yAt(values[i]))
	}
	dc.Stroke()
	for i, v := range values {
		dc.DrawCircle(xAt(i), yAt(v), 3)
		dc.Fill()
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("chart: codificar PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// formatAxis compacta el valor para la etiqueta del eje.
func formatAxis(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
