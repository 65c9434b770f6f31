// Package chart renders plot figures to PNG with go-chart.
package chart

import (
	"fmt"
	"io"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"lumos/internal/plot"
)

// Renderer draws one figure panel per image
type Renderer struct {
	width  int
	height int
}

// NewRenderer creates a renderer producing width x height images
func NewRenderer(width, height int) *Renderer {
	if width <= 0 {
		width = 1024
	}
	if height <= 0 {
		height = 640
	}
	return &Renderer{width: width, height: height}
}

// pointStyle returns a style that renders points only (no connecting line)
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    4,
		DotColor:    col,
	}
}

func lineStyle(col drawing.Color, width float64) chart.Style {
	return chart.Style{
		StrokeWidth: width,
		StrokeColor: col,
	}
}

// PanelTitle appends the facet assignment to the figure title
func PanelTitle(fig *plot.Figure, panel plot.Panel) string {
	if fig.Selection.Facet == "" {
		return fig.Title
	}
	return fmt.Sprintf("%s [%s = %s]", fig.Title, fig.Selection.Facet, panel.Facet)
}

// RenderPanel writes one panel of fig as PNG
func (r *Renderer) RenderPanel(w io.Writer, fig *plot.Figure, panel plot.Panel) error {
	var series []chart.Series
	var xAxis chart.XAxis
	bounds := newExtent()

	switch fig.Selection.Kind {
	case plot.KindBox:
		series = boxSeries(panel, len(fig.Categories), bounds)
		ticks := make([]chart.Tick, len(fig.Categories))
		for i, c := range fig.Categories {
			ticks[i] = chart.Tick{Value: float64(i), Label: c}
		}
		xAxis = chart.XAxis{
			Name:  fig.XLabel,
			Range: &chart.ContinuousRange{Min: -0.5, Max: float64(len(fig.Categories)) - 0.5},
			Ticks: ticks,
		}
	default:
		series = scatterSeries(panel, fig.YLabel, bounds)
		minX, maxX := bounds.paddedX()
		xAxis = chart.XAxis{
			Name:  fig.XLabel,
			Range: &chart.ContinuousRange{Min: minX, Max: maxX},
		}
	}
	if len(series) == 0 {
		return fmt.Errorf("no finite values to plot for %s", fig.Selection.Y)
	}

	minY, maxY := bounds.paddedY()
	ch := chart.Chart{
		Title:      PanelTitle(fig, panel),
		Width:      r.width,
		Height:     r.height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      xAxis,
		YAxis:      chart.YAxis{Name: fig.YLabel, Range: &chart.ContinuousRange{Min: minY, Max: maxY}},
		Series:     series,
	}
	if fig.Selection.Color != "" {
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}

	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render %q: %w", ch.Title, err)
	}
	return nil
}

func scatterSeries(panel plot.Panel, yLabel string, bounds *extent) []chart.Series {
	var out []chart.Series
	for i, s := range panel.Series {
		col := chart.GetDefaultColor(i)
		name := s.Name
		if name == "" {
			name = yLabel
		}

		xs := make([]float64, len(s.Points))
		ys := make([]float64, len(s.Points))
		for j, p := range s.Points {
			xs[j], ys[j] = p.X, p.Y
			bounds.add(p.X, p.Y)
		}
		if len(xs) == 0 {
			continue
		}
		out = append(out, chart.ContinuousSeries{Name: name, XValues: xs, YValues: ys, Style: pointStyle(col)})

		if len(s.Trend) > 1 {
			tx := make([]float64, len(s.Trend))
			ty := make([]float64, len(s.Trend))
			for j, p := range s.Trend {
				tx[j], ty[j] = p.X, p.Y
				bounds.add(p.X, p.Y)
			}
			out = append(out, chart.ContinuousSeries{XValues: tx, YValues: ty, Style: lineStyle(col, 2)})
		}
	}
	return out
}

// boxSeries draws each box as line segments. Colour groups share a category
// slot side by side.
func boxSeries(panel plot.Panel, categories int, bounds *extent) []chart.Series {
	var out []chart.Series
	groups := len(panel.Series)
	if groups == 0 || categories == 0 {
		return nil
	}
	slot := 0.8 / float64(groups)

	for i, s := range panel.Series {
		col := chart.GetDefaultColor(i)
		style := lineStyle(col, 1.5)
		for j, b := range s.Boxes {
			center := float64(b.Position) - 0.4 + slot*(float64(i)+0.5)
			left, right := center-slot*0.35, center+slot*0.35
			capLeft, capRight := center-slot*0.15, center+slot*0.15

			name := ""
			if j == 0 {
				name = s.Name
			}
			out = append(out,
				chart.ContinuousSeries{Name: name, Style: style,
					XValues: []float64{left, right, right, left, left},
					YValues: []float64{b.Q1, b.Q1, b.Q3, b.Q3, b.Q1}},
				chart.ContinuousSeries{Style: lineStyle(col, 2.5),
					XValues: []float64{left, right}, YValues: []float64{b.Median, b.Median}},
				chart.ContinuousSeries{Style: style,
					XValues: []float64{center, center}, YValues: []float64{b.Q3, b.High}},
				chart.ContinuousSeries{Style: style,
					XValues: []float64{center, center}, YValues: []float64{b.Q1, b.Low}},
				chart.ContinuousSeries{Style: style,
					XValues: []float64{capLeft, capRight}, YValues: []float64{b.High, b.High}},
				chart.ContinuousSeries{Style: style,
					XValues: []float64{capLeft, capRight}, YValues: []float64{b.Low, b.Low}},
			)
			bounds.add(center, b.Low)
			bounds.add(center, b.High)

			if len(b.Outliers) > 0 {
				xs := make([]float64, len(b.Outliers))
				for k, v := range b.Outliers {
					xs[k] = center
					bounds.add(center, v)
				}
				out = append(out, chart.ContinuousSeries{XValues: xs, YValues: b.Outliers, Style: pointStyle(col)})
			}
		}
	}
	return out
}

// extent tracks the data bounds so axis ranges are never zero-width
type extent struct {
	minX, maxX, minY, maxY float64
}

func newExtent() *extent {
	return &extent{minX: math.Inf(1), maxX: math.Inf(-1), minY: math.Inf(1), maxY: math.Inf(-1)}
}

func (e *extent) add(x, y float64) {
	e.minX, e.maxX = math.Min(e.minX, x), math.Max(e.maxX, x)
	e.minY, e.maxY = math.Min(e.minY, y), math.Max(e.maxY, y)
}

func (e *extent) paddedX() (float64, float64) { return pad(e.minX, e.maxX) }
func (e *extent) paddedY() (float64, float64) { return pad(e.minY, e.maxY) }

func pad(lo, hi float64) (float64, float64) {
	if math.IsInf(lo, 1) || math.IsInf(hi, -1) {
		return 0, 1
	}
	span := hi - lo
	if span == 0 {
		span = math.Max(math.Abs(lo), 1)
	}
	return lo - 0.05*span, hi + 0.05*span
}
