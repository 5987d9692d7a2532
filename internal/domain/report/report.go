// Package report models the outcome of an indexing run. Per-item failures are
// recorded as structured skips rather than suppressed exceptions, so the batch
// summary is guaranteed by construction.
package report

// Skip records one product left Pending, with the reason.
type Skip struct {
	id     string
	reason string
}

// NewSkip creates a skip record.
func NewSkip(id, reason string) Skip {
	return Skip{id: id, reason: reason}
}

// ID returns the skipped product identifier.
func (s Skip) ID() string { return s.id }

// Reason returns why the product was skipped.
func (s Skip) Reason() string { return s.reason }

// Report aggregates the outcome of one indexing run.
type Report struct {
	attempted int
	stored    int
	skipped   []Skip
}

// AddStored counts one product embedded and flipped to Done.
func (r *Report) AddStored() {
	r.attempted++
	r.stored++
}

// AddSkip counts one product left Pending.
func (r *Report) AddSkip(id, reason string) {
	r.attempted++
	r.skipped = append(r.skipped, NewSkip(id, reason))
}

// Attempted returns the number of products processed.
func (r *Report) Attempted() int { return r.attempted }

// Stored returns the number of products embedded and marked Done.
func (r *Report) Stored() int { return r.stored }

// Skipped returns the per-product skip records.
func (r *Report) Skipped() []Skip { return r.skipped }
