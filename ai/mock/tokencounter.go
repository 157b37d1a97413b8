package mock

import "strings"

// MockTokenCounter is a test double for ai.TokenCounter.
// The default behavior counts whitespace-separated words, which keeps chunk
// boundary tests readable without a real BPE tokenizer.
type MockTokenCounter struct {
	// CountFunc is called by Count if set.
	CountFunc func(text string) int

	// CostPerMillionTokens is the pricing used by EstimateCost.
	// Defaults to 0.02 if zero.
	CostPerMillionTokens float64
}

// NewMockTokenCounter creates a word-counting token counter.
func NewMockTokenCounter() *MockTokenCounter {
	return &MockTokenCounter{}
}

// Count returns the number of whitespace-separated words in text.
func (m *MockTokenCounter) Count(text string) int {
	if m.CountFunc != nil {
		return m.CountFunc(text)
	}
	return len(strings.Fields(text))
}

// EstimateCost returns the estimated cost in USD for the given token count.
func (m *MockTokenCounter) EstimateCost(tokens int) float64 {
	cost := m.CostPerMillionTokens
	if cost == 0 {
		cost = 0.02
	}
	return float64(tokens) / 1_000_000 * cost
}
