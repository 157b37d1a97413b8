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


package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/agamjn/rumi/core"
	"github.com/agamjn/rumi/vectorstore"
)

const defaultTimeout = 15 * time.Second

// Store is a REST client to a Qdrant collection implementing
// vectorstore.Store. Point ids are derived from chunk keys via
// core.StableIDFromKey, so upserts are idempotent.
type Store struct {
	baseURL string
	apiKey  string
	config  vectorstore.CollectionConfig
	client  *http.Client
	logger  *slog.Logger
}

var _ vectorstore.Store = (*Store)(nil)

// Option is a functional option for configuring a Store.
type Option func(*Store)

// WithAPIKey sets the api-key header sent on every request.
func WithAPIKey(key string) Option {
	return func(s *Store) {
		s.apiKey = key
	}
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Store) {
		s.client.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Store) {
		s.client = client
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates a Store for the collection described by config, served at
// baseURL (e.g. "http://localhost:6333").
func New(baseURL string, config vectorstore.CollectionConfig, opts ...Option) (*Store, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("qdrant: base URL is required")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	s := &Store{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		config:  config,
		client:  &http.Client{Timeout: defaultTimeout},
		logger:  slog.Default().With("component", "qdrant", "collection", config.Name),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// CreateCollection creates the collection if missing. With recreate set,
// an existing collection is dropped first.
func (s *Store) CreateCollection(ctx context.Context, recreate bool) error {
	exists, err := s.collectionExists(ctx)
	if err != nil {
		return err
	}

	if exists {
		if !recreate {
			s.logger.Debug("collection already exists")
			return nil
		}
		s.logger.Warn("recreating collection, stored points will be lost")
		if err := s.do(ctx, http.MethodDelete, s.collectionURL(), nil, nil); err != nil {
			return err
		}
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     s.config.Dimension,
			"distance": string(s.config.Distance),
		},
	}
	if err := s.do(ctx, http.MethodPut, s.collectionURL(), body, nil); err != nil {
		return err
	}

	s.logger.Info("created collection",
		"dimension", s.config.Dimension, "distance", s.config.Distance)
	return nil
}

// Exists reports whether a point for chunkKey is stored. Any failure,
// including a missing collection, reads as absent rather than an error
// so ingestion can proceed to the write path.
func (s *Store) Exists(ctx context.Context, chunkKey string) (bool, error) {
	body := map[string]any{
		"ids":          []string{s.pointID(chunkKey)},
		"with_payload": false,
		"with_vector":  false,
	}

	var resp retrieveResponse
	if err := s.do(ctx, http.MethodPost, s.collectionURL()+"/points", body, &resp); err != nil {
		s.logger.Debug("existence check failed, treating as absent",
			"chunk_key", chunkKey, "err", err)
		return false, nil
	}

	return len(resp.Result) > 0, nil
}

// Upsert writes the point for chunkKey, replacing any prior version.
// The chunk key is preserved in the payload under chunk_id.
func (s *Store) Upsert(ctx context.Context, chunkKey string, vector []float32, payload map[string]any) error {
	if err := core.ValidateVector(vector, s.config.Dimension); err != nil {
		return err
	}

	merged := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		merged[k] = v
	}
	merged[core.PayloadChunkID] = chunkKey

	body := map[string]any{
		"points": []map[string]any{{
			"id":      s.pointID(chunkKey),
			"vector":  vector,
			"payload": merged,
		}},
	}
	return s.do(ctx, http.MethodPut, s.collectionURL()+"/points?wait=true", body, nil)
}

// Search returns up to limit results ordered by descending similarity.
func (s *Store) Search(ctx context.Context, vector []float32, limit int, filters *vectorstore.Filters) ([]vectorstore.SearchResult, error) {
	if err := core.ValidateVector(vector, s.config.Dimension); err != nil {
		return nil, err
	}
	if err := filters.Validate(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	body := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}
	if f := buildFilter(filters); f != nil {
		body["filter"] = f
	}
	if filters != nil && filters.MinScore > 0 {
		body["score_threshold"] = filters.MinScore
	}

	var resp searchResponse
	if err := s.do(ctx, http.MethodPost, s.collectionURL()+"/points/search", body, &resp); err != nil {
		return nil, err
	}

	results := make([]vectorstore.SearchResult, 0, len(resp.Result))
	for _, hit := range resp.Result {
		chunkID, _ := hit.Payload[core.PayloadChunkID].(string)
		results = append(results, vectorstore.SearchResult{
			ChunkID: chunkID,
			Score:   hit.Score,
			Payload: hit.Payload,
		})
	}
	return results, nil
}

// Delete removes the point for chunkKey. Absent keys are a no-op.
func (s *Store) Delete(ctx context.Context, chunkKey string) error {
	body := map[string]any{
		"points": []string{s.pointID(chunkKey)},
	}
	return s.do(ctx, http.MethodPost, s.collectionURL()+"/points/delete?wait=true", body, nil)
}

// Stats returns the collection's point count and status.
func (s *Store) Stats(ctx context.Context) (*vectorstore.Stats, error) {
	var resp collectionInfoResponse
	if err := s.do(ctx, http.MethodGet, s.collectionURL(), nil, &resp); err != nil {
		return nil, err
	}

	return &vectorstore.Stats{
		PointCount: resp.Result.PointsCount,
		Status:     resp.Result.Status,
	}, nil
}

// Close is a no-op; the store holds no persistent connections.
func (s *Store) Close() error {
	return nil
}

func (s *Store) collectionURL() string {
	return fmt.Sprintf("%s/collections/%s", s.baseURL, s.config.Name)
}

func (s *Store) pointID(chunkKey string) string {
	return core.StableIDFromKey(chunkKey).String()
}

func (s *Store) collectionExists(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.collectionURL(), nil)
	if err != nil {
		return false, err
	}
	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return false, core.Transient("qdrant get collection", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode >= 300:
		return false, statusError("GET", s.collectionURL(), resp.StatusCode)
	}
	return true, nil
}

// do issues one JSON request and decodes the response into out if
// non-nil. Network failures and 5xx/429 responses are classified
// transient for caller-level retry.
func (s *Store) do(ctx context.Context, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return core.Transient("qdrant "+method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return statusError(method, url, resp.StatusCode)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (s *Store) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
}

func statusError(method, url string, code int) error {
	err := fmt.Errorf("qdrant %s %s failed: status %d", method, url, code)
	if code >= 500 || code == http.StatusTooManyRequests {
		return core.Transient("qdrant "+method, err)
	}
	return err
}

// buildFilter translates Filters into Qdrant's must-clause form.
func buildFilter(filters *vectorstore.Filters) map[string]any {
	if filters == nil {
		return nil
	}

	var must []map[string]any
	for key, value := range filters.Match {
		must = append(must, map[string]any{
			"key":   key,
			"match": map[string]any{"value": value},
		})
	}
	for key, values := range filters.MatchAny {
		must = append(must, map[string]any{
			"key":   key,
			"match": map[string]any{"any": values},
		})
	}

	if len(must) == 0 {
		return nil
	}
	return map[string]any{"must": must}
}
