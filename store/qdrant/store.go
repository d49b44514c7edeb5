package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/w-h-a/ragchat/record"
	"github.com/w-h-a/ragchat/store"
	getsafe "github.com/w-h-a/ragchat/util/get_safe"
)

const distance = "Cosine"

// qdrantStore serves every logical collection through an alias pointing at
// a physical collection named {name}_{version}.
type qdrantStore struct {
	options store.Options
	client  *http.Client
}

func (s *qdrantStore) ReplaceCollection(ctx context.Context, name string, records []record.Record) (int, error) {
	docs := record.Documents(records)

	vectors, err := store.EmbedDocuments(ctx, s.options.Embedder, docs)
	if err != nil {
		return 0, &store.WriteError{Collection: name, Op: "embed", Cause: err}
	}

	size, err := s.vectorSize(ctx, vectors)
	if err != nil {
		return 0, &store.WriteError{Collection: name, Op: "embed", Cause: err}
	}

	physical := physicalName(name)

	if err := s.createCollection(ctx, physical, size); err != nil {
		return 0, &store.WriteError{Collection: name, Op: "create", Cause: err}
	}

	previous, err := s.publish(ctx, name, physical, docs, vectors)
	if err != nil {
		s.dropCollection(ctx, physical)
		return 0, err
	}

	if len(previous) > 0 {
		s.dropCollection(ctx, previous)
	}

	slog.DebugContext(ctx, "published generation", "collection", name, "physical", physical, "documents", len(docs))

	return len(docs), nil
}

// publish fills physical and points name at it, returning the collection
// name pointed at before.
func (s *qdrantStore) publish(ctx context.Context, name, physical string, docs []record.Document, vectors [][]float32) (string, error) {
	if err := s.upsertPoints(ctx, physical, docs, vectors); err != nil {
		return "", &store.WriteError{Collection: name, Op: "insert", Cause: err}
	}

	previous, err := s.resolveAlias(ctx, name)
	if err != nil {
		return "", &store.WriteError{Collection: name, Op: "publish", Cause: err}
	}

	if err := s.swapAlias(ctx, name, previous, physical); err != nil {
		return "", &store.WriteError{Collection: name, Op: "publish", Cause: err}
	}

	return previous, nil
}

func (s *qdrantStore) Query(ctx context.Context, name string, text string, n int) ([]store.Match, error) {
	vec, err := s.options.Embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	req := map[string]any{
		"vector":       vec,
		"limit":        store.ResultLimit(n),
		"with_payload": true,
	}

	if s.options.MinScore > store.NoMinScore {
		req["score_threshold"] = s.options.MinScore
	}

	var rsp qdrantEnvelope[[]qdrantScoredPoint]

	path := fmt.Sprintf("/collections/%s/points/search", url.PathEscape(name))

	if err := s.do(ctx, http.MethodPost, path, req, &rsp); err != nil {
		if isNotFound(err) {
			return nil, store.ErrCollectionNotFound
		}
		return nil, err
	}

	matches := make([]store.Match, 0, len(rsp.Result))

	for _, point := range rsp.Result {
		payload := point.Payload

		matches = append(matches, store.Match{
			Document: record.Document{
				Id:       getsafe.String(payload, "doc_id"),
				Text:     getsafe.String(payload, "text"),
				Metadata: record.FromMetadata(getsafe.Metadata(payload, "metadata")),
			},
			Score: point.Score,
		})
	}

	return store.Rank(matches, s.options.MinScore, store.ResultLimit(n)), nil
}

func (s *qdrantStore) Count(ctx context.Context, name string) (int, error) {
	var rsp qdrantEnvelope[qdrantCount]

	path := fmt.Sprintf("/collections/%s/points/count", url.PathEscape(name))

	if err := s.do(ctx, http.MethodPost, path, map[string]any{"exact": true}, &rsp); err != nil {
		if isNotFound(err) {
			return 0, nil
		}
		return 0, err
	}

	return rsp.Result.Count, nil
}

func (s *qdrantStore) DeleteCollection(ctx context.Context, name string) error {
	physical, err := s.resolveAlias(ctx, name)
	if err != nil {
		return err
	}

	if len(physical) == 0 {
		return nil
	}

	req := map[string]any{
		"actions": []map[string]any{
			{"delete_alias": map[string]any{"alias_name": name}},
		},
	}

	if err := s.do(ctx, http.MethodPost, "/collections/aliases", req, nil); err != nil {
		return err
	}

	s.dropCollection(ctx, physical)

	return nil
}

func (s *qdrantStore) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

func (s *qdrantStore) vectorSize(ctx context.Context, vectors [][]float32) (int, error) {
	if len(vectors) > 0 {
		return len(vectors[0]), nil
	}

	probe, err := s.options.Embedder.Embed(ctx, "probe")
	if err != nil {
		return 0, err
	}

	return len(probe), nil
}

func (s *qdrantStore) createCollection(ctx context.Context, physical string, size int) error {
	req := map[string]any{
		"vectors": map[string]any{
			"size":     size,
			"distance": distance,
		},
	}

	path := fmt.Sprintf("/collections/%s", url.PathEscape(physical))

	var rsp qdrantEnvelope[json.RawMessage]

	if err := s.do(ctx, http.MethodPut, path, req, &rsp); err != nil {
		return err
	}

	if !strings.EqualFold(rsp.Status.State, "ok") && len(rsp.Status.Error) > 0 {
		return errors.New(rsp.Status.Error)
	}

	return nil
}

func (s *qdrantStore) upsertPoints(ctx context.Context, physical string, docs []record.Document, vectors [][]float32) error {
	if len(docs) == 0 {
		return nil
	}

	points := make([]qdrantPoint, 0, len(docs))

	for i, doc := range docs {
		points = append(points, qdrantPoint{
			Id:     uuid.NewString(),
			Vector: vectors[i],
			Payload: map[string]any{
				"doc_id":   doc.Id,
				"text":     doc.Text,
				"metadata": doc.Metadata.Metadata(),
			},
		})
	}

	req := map[string]any{
		"points": points,
	}

	var rsp qdrantEnvelope[json.RawMessage]

	path := fmt.Sprintf("/collections/%s/points?wait=true", url.PathEscape(physical))

	if err := s.do(ctx, http.MethodPut, path, req, &rsp); err != nil {
		return err
	}

	if !strings.EqualFold(rsp.Status.State, "ok") && len(rsp.Status.Error) > 0 {
		return errors.New(rsp.Status.Error)
	}

	return nil
}

// resolveAlias returns the physical collection behind name, or "" if the
// alias does not exist.
func (s *qdrantStore) resolveAlias(ctx context.Context, name string) (string, error) {
	var rsp qdrantEnvelope[qdrantAliases]

	if err := s.do(ctx, http.MethodGet, "/aliases", nil, &rsp); err != nil {
		return "", err
	}

	for _, alias := range rsp.Result.Aliases {
		if alias.AliasName == name {
			return alias.CollectionName, nil
		}
	}

	return "", nil
}

// swapAlias repoints name in a single atomic action list.
func (s *qdrantStore) swapAlias(ctx context.Context, name, previous, physical string) error {
	actions := []map[string]any{}

	if len(previous) > 0 {
		actions = append(actions, map[string]any{
			"delete_alias": map[string]any{"alias_name": name},
		})
	}

	actions = append(actions, map[string]any{
		"create_alias": map[string]any{
			"collection_name": physical,
			"alias_name":      name,
		},
	})

	var rsp qdrantEnvelope[json.RawMessage]

	if err := s.do(ctx, http.MethodPost, "/collections/aliases", map[string]any{"actions": actions}, &rsp); err != nil {
		return err
	}

	if !strings.EqualFold(rsp.Status.State, "ok") && len(rsp.Status.Error) > 0 {
		return errors.New(rsp.Status.Error)
	}

	return nil
}

func (s *qdrantStore) dropCollection(ctx context.Context, physical string) {
	path := fmt.Sprintf("/collections/%s", url.PathEscape(physical))

	if err := s.do(ctx, http.MethodDelete, path, nil, nil); err != nil && !isNotFound(err) {
		slog.WarnContext(ctx, "failed to drop qdrant collection", "collection", physical, "error", err)
	}
}

func (s *qdrantStore) do(ctx context.Context, method string, path string, req any, rsp any) error {
	u := s.options.Location + path
	var buf io.Reader
	if req != nil {
		data, err := json.Marshal(req)
		if err != nil {
			return err
		}
		buf = bytes.NewReader(data)
	}

	request, err := http.NewRequestWithContext(ctx, method, u, buf)
	if err != nil {
		return err
	}

	request.Header.Set("Content-Type", "application/json")

	if len(s.options.ApiKey) > 0 {
		request.Header.Set("api-key", s.options.ApiKey)
	}

	response, err := s.client.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	payload, err := io.ReadAll(response.Body)
	if err != nil {
		return err
	}

	if response.StatusCode >= 400 {
		return &httpError{StatusCode: response.StatusCode, Body: string(payload)}
	}

	if rsp != nil && len(payload) > 0 {
		if err := json.Unmarshal(payload, rsp); err != nil {
			return err
		}
	}

	return nil
}

func physicalName(name string) string {
	return name + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func isNotFound(err error) bool {
	var httpErr *httpError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound
}

func NewStore(opts ...store.Option) store.Store {
	options := store.NewOptions(opts...)

	if len(options.Location) == 0 || options.Embedder == nil {
		panic("missing location or embedder for qdrant store")
	}

	options.Location = strings.TrimRight(options.Location, "/")

	client := options.Client
	if client == nil {
		client = &http.Client{
			Timeout: options.Timeout,
		}
	}

	s := &qdrantStore{
		options: options,
		client:  client,
	}

	return s
}
