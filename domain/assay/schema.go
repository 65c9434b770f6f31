package assay

import (
	"strings"

	"lumos/domain/core"
)

// VariableSchema is the ordered list of variable names encoded in each strip
// name, together with the delimiter separating them.
type VariableSchema struct {
	names     []string
	delimiter Delimiter
}

// NewVariableSchema validates and copies names. Names are trimmed; blank or
// duplicate names are rejected because they would make column identity ambiguous.
func NewVariableSchema(delimiter Delimiter, names []string) (VariableSchema, error) {
	if delimiter != Hyphen && delimiter != Underscore {
		return VariableSchema{}, core.NewUnknownDelimiterError(delimiter.String())
	}
	if len(names) == 0 {
		return VariableSchema{}, core.ErrEmptySchema
	}

	seen := make(map[string]bool, len(names))
	cleaned := make([]string, 0, len(names))
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			return VariableSchema{}, core.NewVariableError(core.ErrBlankVariable, raw)
		}
		if seen[name] {
			return VariableSchema{}, core.NewVariableError(core.ErrDuplicateVariable, name)
		}
		seen[name] = true
		cleaned = append(cleaned, name)
	}

	return VariableSchema{names: cleaned, delimiter: delimiter}, nil
}

// ParseVariableSchema splits a single user-typed string on the delimiter, as
// the upload form collects it ("dilution-lot-replicate").
func ParseVariableSchema(delimiter Delimiter, variables string) (VariableSchema, error) {
	if strings.TrimSpace(variables) == "" {
		return VariableSchema{}, core.ErrEmptySchema
	}
	return NewVariableSchema(delimiter, strings.Split(variables, delimiter.String()))
}

// Names returns a copy of the declared variable names in order
func (s VariableSchema) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

func (s VariableSchema) Len() int {
	return len(s.names)
}

func (s VariableSchema) Delimiter() Delimiter {
	return s.delimiter
}

// Has reports whether name is a declared variable
func (s VariableSchema) Has(name string) bool {
	for _, n := range s.names {
		if n == name {
			return true
		}
	}
	return false
}

// Split decomposes an identifier into at most Len() tokens. Missing trailing
// tokens are reported with ok=false; excess tokens are discarded.
func (s VariableSchema) Split(identifier string) (tokens []string, present []bool) {
	tokens = make([]string, len(s.names))
	present = make([]bool, len(s.names))
	if identifier == "" {
		return tokens, present
	}
	parts := strings.Split(identifier, s.delimiter.String())
	for i := range s.names {
		if i < len(parts) {
			tokens[i] = parts[i]
			present[i] = true
		}
	}
	return tokens, present
}
