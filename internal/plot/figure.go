package plot

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"lumos/adapters/datareadiness/coercer"
	"lumos/domain/assay"
	"lumos/domain/table"
	"lumos/internal/analysis/describe"
)

// MissingLabel stands in for a missing colour, facet or category value
const MissingLabel = "(missing)"

// Point is one observation on a continuous x axis
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Box is the five-number summary of one category. Whiskers extend to the most
// extreme values within 1.5 IQR of the quartiles.
type Box struct {
	Category string    `json:"category"`
	Position int       `json:"position"`
	N        int       `json:"n"`
	Q1       float64   `json:"q1"`
	Median   float64   `json:"median"`
	Q3       float64   `json:"q3"`
	Low      float64   `json:"low"`
	High     float64   `json:"high"`
	Outliers []float64 `json:"outliers,omitempty"`
}

// Series is the data of one colour group within a panel
type Series struct {
	Name   string  `json:"name"`
	Points []Point `json:"points,omitempty"`
	Trend  []Point `json:"trend,omitempty"`
	Boxes  []Box   `json:"boxes,omitempty"`
}

// Panel is one facet of a figure
type Panel struct {
	Facet  string   `json:"facet"`
	Series []Series `json:"series"`
}

// Figure is a fully resolved chart ready for a renderer
type Figure struct {
	Selection  Selection `json:"selection"`
	Title      string    `json:"title"`
	XLabel     string    `json:"x_label"`
	YLabel     string    `json:"y_label"`
	Categories []string  `json:"categories,omitempty"`
	Panels     []Panel   `json:"panels"`
	Warnings   []string  `json:"warnings,omitempty"`
}

// Options tune figure construction
type Options struct {
	TrendFraction float64
	Numbers       *coercer.NumberCoercer
}

// DefaultOptions uses the default LOWESS window and coercion rules
func DefaultOptions() Options {
	return Options{
		TrendFraction: DefaultTrendFraction,
		Numbers:       coercer.NewNumberCoercer(coercer.DefaultCoercionConfig()),
	}
}

type observation struct {
	facet, color, category string
	x, y                   float64
}

// Build resolves a selection against the enriched table. Rows with a
// non-finite y, an unreadable continuous x or a non-positive x on a log axis
// are left out and counted in the figure warnings.
func Build(enriched *table.Table, schema assay.VariableSchema, sel Selection, opts Options) (*Figure, error) {
	warnings, err := sel.Validate(schema, enriched)
	if err != nil {
		return nil, err
	}
	if opts.Numbers == nil {
		opts.Numbers = coercer.NewNumberCoercer(coercer.DefaultCoercionConfig())
	}

	fig := &Figure{
		Selection: sel,
		Title:     sel.Title(),
		XLabel:    sel.X,
		YLabel:    sel.Y,
		Warnings:  warnings,
	}
	logX := sel.LogX && sel.Kind == KindScatterTrend
	if logX {
		fig.XLabel = "log10(" + sel.X + ")"
	}

	xCol, _ := enriched.Column(sel.X)
	yCol, _ := enriched.Column(sel.Y)
	var colorCol, facetCol *table.Column
	if sel.Color != "" {
		c, _ := enriched.Column(sel.Color)
		colorCol = &c
	}
	if sel.Facet != "" {
		c, _ := enriched.Column(sel.Facet)
		facetCol = &c
	}

	var obs []observation
	var skippedY, skippedX, skippedLog int
	for i := 0; i < enriched.Rows(); i++ {
		y := yCol.Number(i)
		if math.IsNaN(y) || math.IsInf(y, 0) {
			skippedY++
			continue
		}
		o := observation{y: y, facet: labelOf(facetCol, i), color: labelOf(colorCol, i), category: labelOf(&xCol, i)}
		if sel.Kind == KindScatterTrend {
			raw, present := xCol.Label(i)
			x, outcome := opts.Numbers.Coerce(raw)
			if !present || outcome != coercer.Parsed {
				skippedX++
				continue
			}
			if logX {
				if x <= 0 {
					skippedLog++
					continue
				}
				x = math.Log10(x)
			}
			o.x = x
		}
		obs = append(obs, o)
	}

	if skippedY > 0 {
		fig.Warnings = append(fig.Warnings, fmt.Sprintf("%d rows with undefined %s left out", skippedY, sel.Y))
	}
	if skippedX > 0 {
		fig.Warnings = append(fig.Warnings, fmt.Sprintf("%d rows with non-numeric %s left out of the continuous axis", skippedX, sel.X))
	}
	if skippedLog > 0 {
		fig.Warnings = append(fig.Warnings, fmt.Sprintf("%d rows with non-positive %s left out of the log axis", skippedLog, sel.X))
	}

	if sel.Kind == KindBox {
		fig.Categories = distinct(obs, func(o observation) string { return o.category })
	}
	position := make(map[string]int, len(fig.Categories))
	for i, c := range fig.Categories {
		position[c] = i
	}

	for _, facet := range distinct(obs, func(o observation) string { return o.facet }) {
		panel := Panel{Facet: facet}
		for _, color := range distinct(obs, func(o observation) string { return o.color }) {
			var members []observation
			for _, o := range obs {
				if o.facet == facet && o.color == color {
					members = append(members, o)
				}
			}
			if len(members) == 0 {
				continue
			}
			series := Series{Name: color}
			if sel.Kind == KindScatterTrend {
				for _, o := range members {
					series.Points = append(series.Points, Point{X: o.x, Y: o.y})
				}
				series.Trend = Lowess(series.Points, opts.TrendFraction)
			} else {
				series.Boxes = boxes(members, fig.Categories, position)
			}
			panel.Series = append(panel.Series, series)
		}
		fig.Panels = append(fig.Panels, panel)
	}
	return fig, nil
}

func labelOf(c *table.Column, row int) string {
	if c == nil {
		return ""
	}
	v, ok := c.Label(row)
	if !ok {
		return MissingLabel
	}
	return v
}

// distinct returns the observed values of key, numbers first in numeric
// order, then text in lexical order, then the missing label.
func distinct(obs []observation, key func(observation) string) []string {
	seen := make(map[string]bool)
	var values []string
	hasMissing := false
	for _, o := range obs {
		k := key(o)
		if k == MissingLabel {
			hasMissing = true
			continue
		}
		if !seen[k] {
			seen[k] = true
			values = append(values, k)
		}
	}
	SortLabels(values)
	if hasMissing {
		values = append(values, MissingLabel)
	}
	return values
}

// SortLabels orders labels numerically where they parse, lexically otherwise
func SortLabels(values []string) {
	sort.SliceStable(values, func(i, j int) bool {
		a, aErr := strconv.ParseFloat(values[i], 64)
		b, bErr := strconv.ParseFloat(values[j], 64)
		switch {
		case aErr == nil && bErr == nil:
			if a != b {
				return a < b
			}
			return values[i] < values[j]
		case aErr == nil:
			return true
		case bErr == nil:
			return false
		}
		return values[i] < values[j]
	})
}

func boxes(members []observation, categories []string, position map[string]int) []Box {
	grouped := make(map[string][]float64)
	for _, o := range members {
		grouped[o.category] = append(grouped[o.category], o.y)
	}
	var out []Box
	for _, category := range categories {
		values, ok := grouped[category]
		if !ok {
			continue
		}
		out = append(out, summarizeBox(category, position[category], values))
	}
	return out
}

func summarizeBox(category string, pos int, values []float64) Box {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	b := Box{
		Category: category,
		Position: pos,
		N:        len(sorted),
		Q1:       describe.Quantile(sorted, 0.25),
		Median:   describe.Quantile(sorted, 0.5),
		Q3:       describe.Quantile(sorted, 0.75),
	}
	iqr := b.Q3 - b.Q1
	lowFence, highFence := b.Q1-1.5*iqr, b.Q3+1.5*iqr

	b.Low, b.High = b.Q1, b.Q3
	for _, v := range sorted {
		if v < lowFence || v > highFence {
			b.Outliers = append(b.Outliers, v)
			continue
		}
		if v < b.Low {
			b.Low = v
		}
		if v > b.High {
			b.High = v
		}
	}
	return b
}
