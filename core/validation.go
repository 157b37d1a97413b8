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


package core

import (
	"fmt"
	"strings"
)

// ValidateDocument validates a Document before ingestion.
//
// Validation rules:
//   - ID must not be empty
//   - Text must contain at least one non-whitespace character
//
// NOT validated:
//   - Metadata (opaque to the index, any shape is accepted)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrEmptyInput)
	}
	if doc.ID == "" {
		return ErrEmptyDocumentID
	}
	if strings.TrimSpace(doc.Text) == "" {
		return fmt.Errorf("%w: document %q", ErrEmptyInput, doc.ID)
	}
	return nil
}

// ValidateVector checks that a vector has exactly the expected dimension.
// A mismatch is fatal: vectors are never truncated or padded.
func ValidateVector(vector []float32, dimension int) error {
	if len(vector) != dimension {
		return fmt.Errorf("%w: expected %d components, got %d", ErrDimensionMismatch, dimension, len(vector))
	}
	return nil
}
