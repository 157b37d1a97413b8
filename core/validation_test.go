package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDocument(t *testing.T) {
	tests := []struct {
		name    string
		doc     *Document
		wantErr error
	}{
		{
			name: "valid document",
			doc:  &Document{ID: "blog:post_1", Text: "Some content."},
		},
		{
			name:    "nil document",
			doc:     nil,
			wantErr: ErrEmptyInput,
		},
		{
			name:    "missing id",
			doc:     &Document{Text: "Some content."},
			wantErr: ErrEmptyDocumentID,
		},
		{
			name:    "empty text",
			doc:     &Document{ID: "blog:post_1", Text: ""},
			wantErr: ErrEmptyInput,
		},
		{
			name:    "whitespace-only text",
			doc:     &Document{ID: "blog:post_1", Text: " \n\t  \n"},
			wantErr: ErrEmptyInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocument(tt.doc)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateVector(t *testing.T) {
	vector := make([]float32, 1536)

	require.NoError(t, ValidateVector(vector, 1536))

	err := ValidateVector(vector, 768)
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	err = ValidateVector(nil, 1536)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestTransientError(t *testing.T) {
	inner := assert.AnError
	err := Transient("embed", inner)

	assert.True(t, IsTransient(err))
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "embed")

	assert.False(t, IsTransient(inner))
	assert.False(t, IsTransient(nil))
	assert.Nil(t, Transient("embed", nil))
}
