package catalog

import (
	"context"
	"testing"

	"github.com/kailas-cloud/visearch/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hashes map[string]map[string]string

	hsetErr     error
	hgetErr     error
	searchLists []*db.SearchResult
	searchErr   error
	countN      int
	countErr    error

	hsetCalls [][2]string // key + index_state written
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
	m.hsetCalls = append(m.hsetCalls, [2]string{key, fields[fieldState]})
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

func (m *mockStore) SearchList(
	_ context.Context, _, _ string, _, _ int, _ []string,
) (*db.SearchResult, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if len(m.searchLists) == 0 {
		return &db.SearchResult{}, nil
	}
	page := m.searchLists[0]
	m.searchLists = m.searchLists[1:]
	return page, nil
}

func (m *mockStore) SearchCount(_ context.Context, _, _ string) (int, error) {
	return m.countN, m.countErr
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := newMockStore()
	return New(ms), ms
}
