package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/visearch/internal/db"
	"github.com/kailas-cloud/visearch/internal/domain"
	"github.com/kailas-cloud/visearch/internal/domain/product"
)

func sampleProduct(id string) product.Product {
	return product.New(
		id, "instant noodles", "noodles",
		"https://img.example.com/"+id+".jpg", "https://shop.example.com/"+id,
		2.5, true, "2026-08-01T00:00:00Z",
	)
}

func TestUpsert_CreatesPending(t *testing.T) {
	repo, ms := newTestRepo(t)

	p := sampleProduct("p1")
	created, err := repo.Upsert(context.Background(), &p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Error("expected created=true for a new record")
	}

	fields := ms.hashes[productKey("p1")]
	if fields[fieldState] != string(product.StatePending) {
		t.Errorf("state = %q, want pending", fields[fieldState])
	}
	if fields[fieldName] != "instant noodles" {
		t.Errorf("name = %q", fields[fieldName])
	}
	if fields[fieldInStock] != "1" {
		t.Errorf("in_stock = %q, want 1", fields[fieldInStock])
	}
}

func TestUpsert_PreservesDoneState(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.hashes[productKey("p1")] = map[string]string{
		fieldName:  "old name",
		fieldState: string(product.StateDone),
	}

	p := sampleProduct("p1")
	created, err := repo.Upsert(context.Background(), &p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Error("expected created=false for an existing record")
	}

	fields := ms.hashes[productKey("p1")]
	if fields[fieldState] != string(product.StateDone) {
		t.Errorf("re-import reverted state to %q; done must stick", fields[fieldState])
	}
	if fields[fieldName] != "instant noodles" {
		t.Errorf("display fields must still be updated, got name=%q", fields[fieldName])
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.Get(context.Background(), "missing")
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestGet_RoundTrip(t *testing.T) {
	repo, _ := newTestRepo(t)

	p := sampleProduct("p2")
	if _, err := repo.Upsert(context.Background(), &p); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := repo.Get(context.Background(), "p2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID() != "p2" || got.Name() != p.Name() || got.Category() != p.Category() {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.Price() != 2.5 || !got.InStock() {
		t.Errorf("price/stock mismatch: price=%v inStock=%v", got.Price(), got.InStock())
	}
	if got.State() != product.StatePending {
		t.Errorf("state = %q, want pending", got.State())
	}
}

func TestListPending_Paginates(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchLists = []*db.SearchResult{
		{
			Total: 3,
			Entries: []db.SearchEntry{
				{Key: productKey("a"), Fields: map[string]string{fieldName: "a", fieldState: "pending"}},
				{Key: productKey("b"), Fields: map[string]string{fieldName: "b", fieldState: "pending"}},
			},
		},
		{
			Total: 3,
			Entries: []db.SearchEntry{
				{Key: productKey("c"), Fields: map[string]string{fieldName: "c", fieldState: "pending"}},
			},
		},
	}

	products, err := repo.ListPending(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) != 3 {
		t.Fatalf("expected 3 products, got %d", len(products))
	}
	// catalog order must be preserved
	for i, want := range []string{"a", "b", "c"} {
		if products[i].ID() != want {
			t.Errorf("products[%d] = %q, want %q", i, products[i].ID(), want)
		}
	}
}

func TestListPending_Error(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchErr = errors.New("connection refused")

	_, err := repo.ListPending(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestGet_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.hgetErr = &db.Error{Op: db.OpHGetAll, Err: errors.New("connection refused")}

	_, err := repo.Get(context.Background(), "p1")
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if errors.Is(err, domain.ErrProductNotFound) {
		t.Fatal("an unreachable store must not read as a missing product")
	}
}

func TestUpsert_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.hsetErr = &db.Error{Op: db.OpHSet, Err: errors.New("connection refused")}

	p := sampleProduct("p1")
	if _, err := repo.Upsert(context.Background(), &p); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestMarkIndexed_WritesOnlyState(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.hashes[productKey("p1")] = map[string]string{
		fieldName:  "noodles",
		fieldState: string(product.StatePending),
	}

	if err := repo.MarkIndexed(context.Background(), "p1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fields := ms.hashes[productKey("p1")]
	if fields[fieldState] != string(product.StateDone) {
		t.Errorf("state = %q, want done", fields[fieldState])
	}
	if fields[fieldName] != "noodles" {
		t.Error("other fields must be untouched")
	}
}

func TestParseFields_InvalidStateDefaultsPending(t *testing.T) {
	p := parseFields("x", map[string]string{fieldName: "n", fieldState: "R"})
	if p.State() != product.StatePending {
		t.Errorf("legacy state flag parsed as %q, want pending", p.State())
	}
}
