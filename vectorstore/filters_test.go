package vectorstore

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agamjn/rumi/core"
)

func TestFiltersValidate(t *testing.T) {
	t.Run("nil filters are valid", func(t *testing.T) {
		var f *Filters
		assert.NoError(t, f.Validate())
	})

	t.Run("scalar match values", func(t *testing.T) {
		f := &Filters{Match: map[string]any{
			"category": "work",
			"year":     2025,
			"starred":  true,
		}}
		assert.NoError(t, f.Validate())
	})

	t.Run("non-scalar match value", func(t *testing.T) {
		f := &Filters{Match: map[string]any{
			"tags": []string{"go"},
		}}
		err := f.Validate()
		assert.ErrorIs(t, err, core.ErrInvalidFilter)
	})

	t.Run("empty match-any set", func(t *testing.T) {
		f := &Filters{MatchAny: map[string][]string{"tags": {}}}
		err := f.Validate()
		assert.ErrorIs(t, err, core.ErrInvalidFilter)
	})

	t.Run("negative min score", func(t *testing.T) {
		f := &Filters{MinScore: -0.1}
		err := f.Validate()
		assert.ErrorIs(t, err, core.ErrInvalidFilter)
	})
}

func TestFiltersMatches(t *testing.T) {
	payload := map[string]any{
		"category": "work",
		"year":     float64(2025), // JSON round-trip widens numbers
		"tags":     []any{"go", "testing"},
	}

	tests := []struct {
		name     string
		filters  *Filters
		expected bool
	}{
		{
			name:     "nil filters match everything",
			filters:  nil,
			expected: true,
		},
		{
			name:     "scalar equality",
			filters:  &Filters{Match: map[string]any{"category": "work"}},
			expected: true,
		},
		{
			name:     "scalar mismatch",
			filters:  &Filters{Match: map[string]any{"category": "personal"}},
			expected: false,
		},
		{
			name:     "numeric equality across widening",
			filters:  &Filters{Match: map[string]any{"year": 2025}},
			expected: true,
		},
		{
			name:     "missing key never matches",
			filters:  &Filters{Match: map[string]any{"absent": "x"}},
			expected: false,
		},
		{
			name:     "any-of against array field",
			filters:  &Filters{MatchAny: map[string][]string{"tags": {"rust", "go"}}},
			expected: true,
		},
		{
			name:     "any-of with no overlap",
			filters:  &Filters{MatchAny: map[string][]string{"tags": {"rust", "zig"}}},
			expected: false,
		},
		{
			name:     "any-of against scalar field",
			filters:  &Filters{MatchAny: map[string][]string{"category": {"work", "life"}}},
			expected: true,
		},
		{
			name: "conditions are conjunctive",
			filters: &Filters{
				Match:    map[string]any{"category": "work"},
				MatchAny: map[string][]string{"tags": {"zig"}},
			},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.filters.Matches(payload))
		})
	}
}

func TestCollectionConfigValidate(t *testing.T) {
	t.Run("default config is valid", func(t *testing.T) {
		cfg := DefaultCollectionConfig()
		assert.NoError(t, cfg.Validate())
		assert.Equal(t, "rumi_content", cfg.Name)
		assert.Equal(t, 1536, cfg.Dimension)
		assert.Equal(t, DistanceCosine, cfg.Distance)
	})

	t.Run("missing name", func(t *testing.T) {
		cfg := CollectionConfig{Dimension: 8, Distance: DistanceCosine}
		assert.Error(t, cfg.Validate())
	})

	t.Run("non-positive dimension", func(t *testing.T) {
		cfg := CollectionConfig{Name: "c", Distance: DistanceCosine}
		assert.Error(t, cfg.Validate())
	})

	t.Run("unsupported distance", func(t *testing.T) {
		cfg := CollectionConfig{Name: "c", Dimension: 8, Distance: "Euclid"}
		assert.Error(t, cfg.Validate())
	})
}
