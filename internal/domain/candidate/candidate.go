package candidate

// Candidate is a raw nearest-neighbor hit returned by the embedding store,
// before scoring and metadata join. It carries the stored vectors so the
// engines can compute every score themselves.
type Candidate struct {
	id          string
	textVector  []float32
	imageVector []float32
}

// New creates a candidate.
func New(id string, textVector, imageVector []float32) Candidate {
	return Candidate{id: id, textVector: textVector, imageVector: imageVector}
}

// ID returns the product identifier.
func (c *Candidate) ID() string { return c.id }

// TextVector returns the stored text embedding (nil if missing or malformed).
func (c *Candidate) TextVector() []float32 { return c.textVector }

// ImageVector returns the stored image embedding (nil if missing or malformed).
func (c *Candidate) ImageVector() []float32 { return c.imageVector }
