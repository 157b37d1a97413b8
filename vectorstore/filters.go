package vectorstore

import (
	"fmt"

	"github.com/agamjn/rumi/core"
)

// Filters narrows search results. All supplied conditions must hold
// (conjunction). A nil *Filters matches every point.
type Filters struct {
	// Match requires scalar payload fields to equal the given values.
	// Example: {"category": "work"}
	Match map[string]any

	// MatchAny requires payload fields to contain at least one of the
	// given values. Works against both scalar fields and array-valued
	// fields such as tags.
	MatchAny map[string][]string

	// MinScore drops results scoring below the threshold. Zero means no
	// threshold.
	MinScore float32
}

// Validate rejects filter shapes the stores cannot evaluate: non-scalar
// equality values and empty any-of sets.
func (f *Filters) Validate() error {
	if f == nil {
		return nil
	}

	for key, value := range f.Match {
		if key == "" {
			return fmt.Errorf("%w: empty match key", core.ErrInvalidFilter)
		}
		switch value.(type) {
		case string, bool,
			int, int8, int16, int32, int64,
			uint, uint8, uint16, uint32, uint64,
			float32, float64:
		default:
			return fmt.Errorf("%w: match value for %q must be a scalar, got %T",
				core.ErrInvalidFilter, key, value)
		}
	}

	for key, values := range f.MatchAny {
		if key == "" {
			return fmt.Errorf("%w: empty match-any key", core.ErrInvalidFilter)
		}
		if len(values) == 0 {
			return fmt.Errorf("%w: match-any set for %q is empty", core.ErrInvalidFilter, key)
		}
	}

	if f.MinScore < 0 {
		return fmt.Errorf("%w: min score cannot be negative", core.ErrInvalidFilter)
	}

	return nil
}

// Matches reports whether a stored payload satisfies the filters.
// Payloads have passed through JSON, so numbers arrive as float64 and
// arrays as []any; scalar comparison normalizes for that.
func (f *Filters) Matches(payload map[string]any) bool {
	if f == nil {
		return true
	}

	for key, want := range f.Match {
		got, ok := payload[key]
		if !ok || !scalarEqual(got, want) {
			return false
		}
	}

	for key, wanted := range f.MatchAny {
		got, ok := payload[key]
		if !ok || !anyMember(got, wanted) {
			return false
		}
	}

	return true
}

// scalarEqual compares payload scalars across JSON number widening.
func scalarEqual(got, want any) bool {
	if gf, gok := asFloat(got); gok {
		wf, wok := asFloat(want)
		return wok && gf == wf
	}
	return got == want
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// anyMember reports whether the payload value contains any of the wanted
// strings. A scalar string field matches by equality.
func anyMember(got any, wanted []string) bool {
	contains := func(s string) bool {
		for _, w := range wanted {
			if s == w {
				return true
			}
		}
		return false
	}

	switch v := got.(type) {
	case string:
		return contains(v)
	case []string:
		for _, s := range v {
			if contains(s) {
				return true
			}
		}
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && contains(s) {
				return true
			}
		}
	}
	return false
}
