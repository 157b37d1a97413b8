package main

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestPreviewText(t *testing.T) {
	t.Run("short text unchanged", func(t *testing.T) {
		assert.Equal(t, "hello", previewText("hello", 200))
	})

	t.Run("text at the limit unchanged", func(t *testing.T) {
		text := strings.Repeat("a", 200)
		assert.Equal(t, text, previewText(text, 200))
	})

	t.Run("ascii truncated at the limit", func(t *testing.T) {
		text := strings.Repeat("a", 250)
		assert.Equal(t, strings.Repeat("a", 200)+"...", previewText(text, 200))
	})

	t.Run("multi-byte rune never split", func(t *testing.T) {
		// Each rune is 3 bytes, so the 200-byte cut lands mid-rune and
		// must back up to the previous boundary at 198.
		text := strings.Repeat("語", 100)

		preview := previewText(text, 200)
		assert.True(t, utf8.ValidString(preview))
		assert.Equal(t, strings.Repeat("語", 66)+"...", preview)
	})
}
