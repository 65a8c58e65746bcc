package chart

import (
	"fmt"
	"html"
	"math"
	"strings"
)

// SVGRenderer draws a dataset as a smooth single-line SVG chart on a dark
// background.
type SVGRenderer struct {
	Width        int
	Height       int
	MarginTop    int
	MarginRight  int
	MarginBottom int
	MarginLeft   int
	LineColor    string
	FillColor    string
	GridColor    string
	TextColor    string
	FontSize     int
}

// NewSVGRenderer returns a renderer with the widget's palette.
func NewSVGRenderer() *SVGRenderer {
	return &SVGRenderer{
		Width:        640,
		Height:       320,
		MarginTop:    40,
		MarginRight:  30,
		MarginBottom: 40,
		MarginLeft:   60,
		LineColor:    "rgba(54, 162, 235, 1)",
		FillColor:    "rgba(54, 162, 235, 0.2)",
		GridColor:    "rgba(255, 255, 255, 0.2)",
		TextColor:    "#FFF",
		FontSize:     11,
	}
}

func (r *SVGRenderer) ContentType() string { return "image/svg+xml" }

func (r *SVGRenderer) Render(ds Dataset) ([]byte, error) {
	if len(ds.Labels) != len(ds.Values) {
		return nil, fmt.Errorf("labels (%d) and values (%d) differ in length", len(ds.Labels), len(ds.Values))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		r.Width, r.Height, r.Width, r.Height)
	fmt.Fprintf(&sb, `<text x="%d" y="20" font-size="14" font-weight="bold" fill="%s" text-anchor="middle">%s</text>`,
		r.Width/2, r.TextColor, html.EscapeString(ds.Title))

	if len(ds.Values) == 0 {
		fmt.Fprintf(&sb, `<text x="%d" y="%d" font-size="%d" fill="%s" text-anchor="middle">No data</text>`,
			r.Width/2, r.Height/2, r.FontSize+3, r.TextColor)
		sb.WriteString("</svg>")
		return []byte(sb.String()), nil
	}

	px, py := r.MarginLeft, r.MarginTop
	pw := r.Width - r.MarginLeft - r.MarginRight
	ph := r.Height - r.MarginTop - r.MarginBottom

	minVal, maxVal := math.MaxFloat64, -math.MaxFloat64
	for _, v := range ds.Values {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	vRange := maxVal - minVal
	if vRange < 1e-9 {
		vRange = math.Max(math.Abs(maxVal)*0.01, 1e-6)
	}
	minVal -= vRange * 0.05
	maxVal += vRange * 0.05
	vRange = maxVal - minVal

	const gridLines = 5
	for i := 0; i <= gridLines; i++ {
		val := minVal + vRange*float64(i)/gridLines
		y := py + ph - ph*i/gridLines
		fmt.Fprintf(&sb, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s"/>`,
			px, y, px+pw, y, r.GridColor)
		fmt.Fprintf(&sb, `<text x="%d" y="%d" font-size="%d" fill="%s" text-anchor="end">%s</text>`,
			px-5, y+4, r.FontSize, r.TextColor, tickLabel(val, vRange))
	}

	xAt := func(i int) float64 {
		if len(ds.Values) == 1 {
			return float64(px) + float64(pw)/2
		}
		return float64(px) + float64(i)*float64(pw)/float64(len(ds.Values)-1)
	}
	yAt := func(v float64) float64 {
		return float64(py+ph) - (v-minVal)/vRange*float64(ph)
	}

	points := make([]string, len(ds.Values))
	for i, v := range ds.Values {
		points[i] = fmt.Sprintf("%.1f,%.1f", xAt(i), yAt(v))
	}

	area := fmt.Sprintf("M%.1f,%d L%s L%.1f,%d Z", xAt(0), py+ph, strings.Join(points, " L"), xAt(len(points)-1), py+ph)
	fmt.Fprintf(&sb, `<path d="%s" fill="%s" stroke="none"/>`, area, r.FillColor)
	fmt.Fprintf(&sb, `<polyline points="%s" fill="none" stroke="%s" stroke-width="2"/>`,
		strings.Join(points, " "), r.LineColor)

	interval := max(len(ds.Labels)/6, 1)
	for i := 0; i < len(ds.Labels); i += interval {
		fmt.Fprintf(&sb, `<text x="%.1f" y="%d" font-size="%d" fill="%s" text-anchor="middle">%s</text>`,
			xAt(i), py+ph+18, r.FontSize-1, r.TextColor, html.EscapeString(ds.Labels[i]))
	}

	sb.WriteString("</svg>")
	return []byte(sb.String()), nil
}

// tickLabel picks enough decimals to tell neighbouring grid lines apart.
func tickLabel(v, span float64) string {
	switch {
	case span >= 10:
		return fmt.Sprintf("%.0f", v)
	case span >= 0.1:
		return fmt.Sprintf("%.2f", v)
	default:
		return fmt.Sprintf("%.4f", v)
	}
}
