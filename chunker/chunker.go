// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package chunker

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"github.com/agamjn/rumi/core"
)

const (
	// DefaultMaxTokens leaves headroom under the 8K input limit of
	// current embedding models.
	DefaultMaxTokens = 6000

	// DefaultOverlapTokens is reserved for context overlap between
	// adjacent chunks. See the note on Chunker.overlapTokens.
	DefaultOverlapTokens = 200
)

// paragraphSplit matches blank-line paragraph separators.
var paragraphSplit = regexp.MustCompile(`\n\s*\n`)

// TokenCounter counts tokens the way the embedding provider bills them.
// ai.TokenCounter satisfies this interface.
type TokenCounter interface {
	Count(text string) int
}

// Chunker splits document text into ordered, bounded-size chunks.
//
// Strategy: accumulate whole paragraphs greedily until the token budget
// would be exceeded, fall back to sentence granularity for paragraphs
// that are too long on their own, and keep a single oversized sentence
// intact rather than cutting it mid-word.
type Chunker struct {
	maxTokens int
	// overlapTokens is accepted and recorded but chunk boundaries do not
	// yet share context.
	// TODO: carry the trailing overlapTokens of each chunk into the start
	// of the next one when assembling boundaries.
	overlapTokens int
	counter       TokenCounter
	logger        *slog.Logger
}

// Option is a functional option for configuring a Chunker.
type Option func(*Chunker)

// WithMaxTokens sets the per-chunk token budget.
func WithMaxTokens(n int) Option {
	return func(c *Chunker) {
		c.maxTokens = n
	}
}

// WithOverlapTokens sets the reserved overlap budget between chunks.
func WithOverlapTokens(n int) Option {
	return func(c *Chunker) {
		c.overlapTokens = n
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Chunker) {
		c.logger = logger
	}
}

// New creates a Chunker using counter for token budgeting.
func New(counter TokenCounter, opts ...Option) (*Chunker, error) {
	if counter == nil {
		return nil, fmt.Errorf("chunker: token counter is required")
	}

	c := &Chunker{
		maxTokens:     DefaultMaxTokens,
		overlapTokens: DefaultOverlapTokens,
		counter:       counter,
		logger:        slog.Default().With("component", "chunker"),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.maxTokens <= 0 {
		return nil, fmt.Errorf("chunker: max tokens must be positive, got %d", c.maxTokens)
	}

	return c, nil
}

// Chunk splits text into ordered chunks for the document docID.
// Each chunk inherits metadata unchanged and records its position and the
// total chunk count. Empty or whitespace-only input is rejected.
func (c *Chunker) Chunk(text, docID string, metadata map[string]any) ([]core.Chunk, error) {
	if docID == "" {
		return nil, fmt.Errorf("%w: document id", core.ErrEmptyDocumentID)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: document text", core.ErrEmptyInput)
	}

	tokens := c.counter.Count(text)

	// Fast path: the whole document fits in one chunk, verbatim.
	if tokens <= c.maxTokens {
		c.logger.Debug("document fits in single chunk", "doc_id", docID, "tokens", tokens)
		return []core.Chunk{{
			ChunkID:  core.ChunkKey(docID, 0),
			ParentID: docID,
			Index:    0,
			Total:    1,
			Text:     text,
			Tokens:   tokens,
			Metadata: metadata,
		}}, nil
	}

	c.logger.Info("document needs chunking",
		"doc_id", docID, "tokens", tokens, "max_tokens", c.maxTokens)

	paragraphs := splitParagraphs(text)
	pieces := c.assemble(paragraphs)

	chunks := make([]core.Chunk, len(pieces))
	for i, p := range pieces {
		chunks[i] = core.Chunk{
			ChunkID:  core.ChunkKey(docID, i),
			ParentID: docID,
			Index:    i,
			Total:    len(pieces),
			Text:     p.text,
			Tokens:   p.tokens,
			Metadata: metadata,
		}
	}

	c.logger.Info("created chunks", "doc_id", docID, "chunks", len(chunks))

	return chunks, nil
}

// piece is an assembled chunk body before identity is attached.
type piece struct {
	text   string
	tokens int
}

// assemble greedily packs paragraphs into pieces within the token budget,
// dropping to sentence granularity for paragraphs that exceed it alone.
func (c *Chunker) assemble(paragraphs []string) []piece {
	var (
		pieces        []piece
		current       []string
		currentTokens int
	)

	flush := func() {
		if len(current) > 0 {
			pieces = append(pieces, piece{
				text:   strings.Join(current, "\n\n"),
				tokens: currentTokens,
			})
			current = nil
			currentTokens = 0
		}
	}

	add := func(unit string, tokens int) {
		if currentTokens+tokens > c.maxTokens {
			flush()
		}
		current = append(current, unit)
		currentTokens += tokens
	}

	for _, para := range paragraphs {
		paraTokens := c.counter.Count(para)

		if paraTokens <= c.maxTokens {
			add(para, paraTokens)
			continue
		}

		c.logger.Warn("paragraph exceeds token budget, splitting by sentences",
			"tokens", paraTokens, "max_tokens", c.maxTokens)

		for _, sentence := range splitSentences(para) {
			sentTokens := c.counter.Count(sentence)
			if sentTokens > c.maxTokens {
				// Cannot split further without breaking a semantic unit.
				// Keep the sentence intact as an oversized chunk.
				c.logger.Warn("sentence exceeds token budget, keeping intact",
					"tokens", sentTokens, "max_tokens", c.maxTokens)
			}
			add(sentence, sentTokens)
		}
	}

	flush()

	return pieces
}

// splitParagraphs splits text on blank lines, trimming each paragraph and
// dropping empty ones.
func splitParagraphs(text string) []string {
	parts := paragraphSplit.Split(text, -1)

	paragraphs := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}

// splitSentences splits text after sentence-terminating punctuation
// followed by whitespace. Abbreviations are not special-cased.
func splitSentences(text string) []string {
	var (
		sentences []string
		start     int
	)

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		// Swallow a run of terminators ("..." or "?!").
		for i+1 < len(runes) && (runes[i+1] == '.' || runes[i+1] == '!' || runes[i+1] == '?') {
			i++
		}
		if i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
				sentences = append(sentences, s)
			}
			start = i + 1
		}
	}

	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}
