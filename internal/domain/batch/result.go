package batch

// ItemStatus is the processing outcome of a single batch item.
type ItemStatus string

// Batch item status values.
const (
	StatusCreated ItemStatus = "created"
	StatusUpdated ItemStatus = "updated"
	StatusError   ItemStatus = "error"
)

// Result is the outcome of importing one product.
type Result struct {
	id     string
	status ItemStatus
	err    error
}

// NewCreated marks a product imported for the first time.
func NewCreated(id string) Result { return Result{id: id, status: StatusCreated} }

// NewUpdated marks an existing product refreshed in place.
func NewUpdated(id string) Result { return Result{id: id, status: StatusUpdated} }

// NewError creates a failed batch result.
func NewError(id string, err error) Result { return Result{id: id, status: StatusError, err: err} }

// ID returns the item identifier.
func (r Result) ID() string { return r.id }

// Status returns the processing outcome.
func (r Result) Status() ItemStatus { return r.status }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }
