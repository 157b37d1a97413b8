package openai

import (
	"log/slog"

	"github.com/agamjn/rumi/ai"
	"github.com/pkoukk/tiktoken-go"
)

// fallbackEncoding is used when the configured model has no registered
// tokenizer. cl100k_base covers all current OpenAI embedding models.
const fallbackEncoding = "cl100k_base"

// Tokenizer implements ai.TokenCounter using the provider's own BPE
// tokenization, so counts match what the service bills against.
type Tokenizer struct {
	encoding       *tiktoken.Tiktoken
	costPerMillion float64
}

// newTokenizer is an internal constructor that returns the concrete type.
func newTokenizer(config *ai.Config) (*Tokenizer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	encoding, err := tiktoken.EncodingForModel(config.EmbeddingModel)
	if err != nil {
		slog.Debug("no tokenizer registered for model, using fallback",
			"model", config.EmbeddingModel, "fallback", fallbackEncoding)
		encoding, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			return nil, err
		}
	}

	return &Tokenizer{
		encoding:       encoding,
		costPerMillion: config.CostPerMillionTokens,
	}, nil
}

// NewTokenizer creates a token counter for the configured model.
//
// Returns ai.TokenCounter interface to enforce abstraction.
func NewTokenizer(config *ai.Config) (ai.TokenCounter, error) {
	return newTokenizer(config)
}

// Count returns the number of tokens in text.
func (t *Tokenizer) Count(text string) int {
	return len(t.encoding.Encode(text, nil, nil))
}

// EstimateCost returns the estimated cost in USD for embedding the given
// number of tokens.
func (t *Tokenizer) EstimateCost(tokens int) float64 {
	return float64(tokens) / 1_000_000 * t.costPerMillion
}
