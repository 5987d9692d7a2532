package product

// IndexState is the embedding state of a product record.
// The only legal transition is Pending -> Done, exactly once.
type IndexState string

// Index state values.
const (
	// StatePending marks a record awaiting embedding.
	StatePending IndexState = "pending"
	// StateDone marks a record whose embedding document has been stored.
	StateDone IndexState = "done"
)

// IsValid checks if the state is one of the supported values.
func (s IndexState) IsValid() bool {
	return s == StatePending || s == StateDone
}

// CanTransitionTo reports whether moving to next preserves monotonicity.
func (s IndexState) CanTransitionTo(next IndexState) bool {
	return s == StatePending && next == StateDone
}
