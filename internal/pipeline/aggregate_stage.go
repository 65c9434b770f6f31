package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"lumos/domain/core"
	"lumos/domain/table"
	"lumos/internal/analysis/describe"
)

// KeyPart is one variable value of a group key
type KeyPart struct {
	Value   string `json:"value"`
	Missing bool   `json:"missing,omitempty"`
}

// Key identifies a group by its variable values, in schema order
type Key []KeyPart

// KeyOf builds a key from present values
func KeyOf(values ...string) Key {
	k := make(Key, len(values))
	for i, v := range values {
		k[i] = KeyPart{Value: v}
	}
	return k
}

func (k Key) String() string {
	parts := make([]string, len(k))
	for i, p := range k {
		if p.Missing {
			parts[i] = "<missing>"
		} else {
			parts[i] = p.Value
		}
	}
	return strings.Join(parts, " / ")
}

// encode maps a key to a collision-free map key
func (k Key) encode() string {
	var b strings.Builder
	for _, p := range k {
		if p.Missing {
			b.WriteString("\x00")
		} else {
			b.WriteString("\x01")
			b.WriteString(p.Value)
		}
		b.WriteString("\x1f")
	}
	return b.String()
}

// compareKeys orders missing values first, then values lexically
func compareKeys(a, b Key) int {
	for i := range a {
		switch {
		case a[i].Missing && b[i].Missing:
			continue
		case a[i].Missing:
			return -1
		case b[i].Missing:
			return 1
		}
		if c := strings.Compare(a[i].Value, b[i].Value); c != 0 {
			return c
		}
	}
	return 0
}

// Group holds the summaries of one observed combination of variable values
type Group struct {
	Key       Key
	Size      int
	Summaries map[string]describe.Summary
}

// Aggregate is the grouped descriptive statistics of an enriched table
type Aggregate struct {
	Variables []string
	Measures  []string
	Groups    []Group
	index     map[string]int
}

// Summarize groups rows by the full tuple of variable values and describes
// every measure within each group. Groups are sorted by key so the output is
// independent of row order.
func Summarize(enriched *table.Table, variables, measures []string) (*Aggregate, error) {
	if len(variables) == 0 {
		return nil, core.ErrEmptySchema
	}
	if missing := enriched.Missing(variables...); len(missing) > 0 {
		return nil, core.NewMissingColumnsError(missing)
	}
	for _, m := range measures {
		c, ok := enriched.Column(m)
		if !ok || c.Kind() != table.KindNumber {
			return nil, fmt.Errorf("%w %q", core.ErrUnknownMeasure, m)
		}
	}

	varCols := make([]table.Column, len(variables))
	for i, v := range variables {
		varCols[i], _ = enriched.Column(v)
	}

	index := make(map[string]int)
	var keys []Key
	var members [][]int
	for row := 0; row < enriched.Rows(); row++ {
		key := make(Key, len(varCols))
		for i, c := range varCols {
			value, present := c.Label(row)
			key[i] = KeyPart{Value: value, Missing: !present}
		}
		enc := key.encode()
		g, seen := index[enc]
		if !seen {
			g = len(keys)
			index[enc] = g
			keys = append(keys, key)
			members = append(members, nil)
		}
		members[g] = append(members[g], row)
	}

	order := make([]int, len(keys))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return compareKeys(keys[order[a]], keys[order[b]]) < 0
	})

	agg := &Aggregate{
		Variables: append([]string(nil), variables...),
		Measures:  append([]string(nil), measures...),
		Groups:    make([]Group, 0, len(keys)),
		index:     make(map[string]int, len(keys)),
	}
	for _, g := range order {
		group := Group{Key: keys[g], Size: len(members[g]), Summaries: make(map[string]describe.Summary, len(measures))}
		for _, m := range measures {
			c, _ := enriched.Column(m)
			values := make([]float64, len(members[g]))
			for i, row := range members[g] {
				values[i] = c.Number(row)
			}
			group.Summaries[m] = describe.Describe(values)
		}
		agg.index[keys[g].encode()] = len(agg.Groups)
		agg.Groups = append(agg.Groups, group)
	}
	return agg, nil
}

// Summary returns the description of measure within the group key
func (a *Aggregate) Summary(key Key, measure string) (describe.Summary, bool) {
	g, ok := a.index[key.encode()]
	if !ok {
		return describe.Summary{}, false
	}
	s, ok := a.Groups[g].Summaries[measure]
	return s, ok
}

// Lookup retrieves a single (group, measure, statistic) value
func (a *Aggregate) Lookup(key Key, measure string, stat describe.Statistic) (float64, bool) {
	s, ok := a.Summary(key, measure)
	if !ok {
		return 0, false
	}
	return s.Get(stat)
}

// MeasureColumn names the measure column of the long-form table
const MeasureColumn = "measure"

// Table renders the aggregate in long form: the variable columns, a measure
// column, then one column per statistic. There is one row per (group, measure).
func (a *Aggregate) Table() (*table.Table, error) {
	rows := len(a.Groups) * len(a.Measures)
	keyValues := make([][]string, len(a.Variables))
	keyPresent := make([][]bool, len(a.Variables))
	for i := range a.Variables {
		keyValues[i] = make([]string, 0, rows)
		keyPresent[i] = make([]bool, 0, rows)
	}
	measureNames := make([]string, 0, rows)
	statValues := make([][]float64, len(describe.Statistics))

	for _, g := range a.Groups {
		for _, m := range a.Measures {
			for i, part := range g.Key {
				keyValues[i] = append(keyValues[i], part.Value)
				keyPresent[i] = append(keyPresent[i], !part.Missing)
			}
			measureNames = append(measureNames, m)
			for s, v := range g.Summaries[m].Values() {
				statValues[s] = append(statValues[s], v)
			}
		}
	}

	cols := make([]table.Column, 0, len(a.Variables)+1+len(describe.Statistics))
	for i, v := range a.Variables {
		cols = append(cols, table.NewLabelColumn(v, keyValues[i], keyPresent[i]))
	}
	cols = append(cols, table.NewLabelColumn(MeasureColumn, measureNames, nil))
	for s, stat := range describe.Statistics {
		cols = append(cols, table.NewNumberColumn(string(stat), statValues[s]))
	}
	return table.New(cols...)
}
