// Package plot turns the enriched table into plot-ready figures: one panel per
// facet value, one series per colour value, with scatter points and a LOWESS
// trend for a continuous x axis or box summaries for a categorical one.
package plot

import (
	"fmt"

	"lumos/domain/assay"
	"lumos/domain/core"
	"lumos/domain/table"
)

// Kind is the chart type for a selection
type Kind string

const (
	KindScatterTrend Kind = "scatter+trend"
	KindBox          Kind = "box"
)

// KindFor picks scatter+trend for a continuous x and box for a categorical x
func KindFor(continuous bool) Kind {
	if continuous {
		return KindScatterTrend
	}
	return KindBox
}

// Selection describes one chart: which variable goes on x, which measure on
// y, and the optional colour and facet variables.
type Selection struct {
	X     string `json:"x" form:"x" binding:"required"`
	Y     string `json:"y" form:"y" binding:"required"`
	Color string `json:"color,omitempty" form:"color"`
	Facet string `json:"facet,omitempty" form:"facet"`
	LogX  bool   `json:"log_x" form:"log_x"`
	Kind  Kind   `json:"kind" form:"kind"`
}

// Title follows the "The effect of x on y" convention
func (s Selection) Title() string {
	return fmt.Sprintf("The effect of %s on %s", s.X, s.Y)
}

// Catalogue returns one selection per charted measure, sharing x, colour,
// facet and scale choices.
func Catalogue(x string, continuous bool, color, facet string, logX bool) []Selection {
	measures := assay.PlotMeasures()
	out := make([]Selection, len(measures))
	for i, y := range measures {
		out[i] = Selection{X: x, Y: y, Color: color, Facet: facet, LogX: logX, Kind: KindFor(continuous)}
	}
	return out
}

// Validate checks the selection against the schema and the enriched table.
// Choosing the same variable for colour and facet is allowed but warned about.
func (s Selection) Validate(schema assay.VariableSchema, enriched *table.Table) ([]string, error) {
	if !schema.Has(s.X) {
		return nil, fmt.Errorf("%w %q for x axis", core.ErrUnknownVariable, s.X)
	}
	for _, v := range []struct{ role, name string }{{"colour", s.Color}, {"facet", s.Facet}} {
		if v.name != "" && !schema.Has(v.name) {
			return nil, fmt.Errorf("%w %q for %s", core.ErrUnknownVariable, v.name, v.role)
		}
	}
	y, ok := enriched.Column(s.Y)
	if !ok || y.Kind() != table.KindNumber {
		return nil, fmt.Errorf("%w %q", core.ErrUnknownMeasure, s.Y)
	}
	if s.Kind != KindScatterTrend && s.Kind != KindBox {
		return nil, fmt.Errorf("%w %q", core.ErrUnknownPlotKind, s.Kind)
	}

	var warnings []string
	if s.Color != "" && s.Color == s.Facet {
		warnings = append(warnings, fmt.Sprintf("colour and facet both use %q; consider choosing different variables", s.Color))
	}
	if s.Color != "" && s.Color == s.X {
		warnings = append(warnings, fmt.Sprintf("colour repeats the x variable %q", s.X))
	}
	if s.LogX && s.Kind == KindBox {
		warnings = append(warnings, "log scale ignored for a categorical x axis")
	}
	return warnings, nil
}
