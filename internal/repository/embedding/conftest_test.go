package embedding

import (
	"context"
	"testing"

	"github.com/kailas-cloud/visearch/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hashes map[string]map[string]string

	hsetErr   error
	hgetErr   error
	knnResult *db.SearchResult
	knnErr    error
	knnQuery  *db.KNNQuery // last query seen
}

func newMockStore() *mockStore {
	return &mockStore{hashes: make(map[string]map[string]string)}
}

func (m *mockStore) HSet(_ context.Context, key string, fields map[string]string) error {
	if m.hsetErr != nil {
		return m.hsetErr
	}
	existing, ok := m.hashes[key]
	if !ok {
		existing = make(map[string]string)
		m.hashes[key] = existing
	}
	for k, v := range fields {
		existing[k] = v
	}
	return nil
}

func (m *mockStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	if m.hgetErr != nil {
		return nil, m.hgetErr
	}
	out := make(map[string]string, len(m.hashes[key]))
	for k, v := range m.hashes[key] {
		out[k] = v
	}
	return out, nil
}

func (m *mockStore) CreateIndex(_ context.Context, _ *db.IndexDefinition) error { return nil }

func (m *mockStore) IndexExists(_ context.Context, _ string) (bool, error) { return true, nil }

func (m *mockStore) SearchKNN(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	m.knnQuery = q
	if m.knnErr != nil {
		return nil, m.knnErr
	}
	if m.knnResult == nil {
		return &db.SearchResult{}, nil
	}
	return m.knnResult, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := newMockStore()
	return New(ms, 4), ms
}
