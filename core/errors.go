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
	"errors"
	"fmt"
)

// Domain validation errors
var (
	// ErrEmptyInput indicates a document contained no usable text.
	ErrEmptyInput = errors.New("input text is empty")

	// ErrEmptyDocumentID indicates a document was supplied without an id.
	ErrEmptyDocumentID = errors.New("document id cannot be empty")

	// ErrDimensionMismatch indicates a vector's length does not match the
	// configured embedding dimension. This is a model/config inconsistency,
	// never retried.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrInvalidFilter indicates a malformed search filter.
	ErrInvalidFilter = errors.New("invalid search filter")
)

// TransientError marks a remote-call failure (network, timeout, rate limit,
// server error) that the caller may retry with backoff. Components never
// retry internally; they classify and re-raise so batching and cost stay
// observable to the caller.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: transient failure: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// Transient wraps err as a TransientError for the named operation.
// Returns nil if err is nil.
func Transient(op string, err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Op: op, Err: err}
}

// IsTransient reports whether err (or anything it wraps) is retryable.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
