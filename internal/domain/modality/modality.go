package modality

// Modality identifies which embedding a score was computed against.
type Modality string

// Modality constants.
const (
	Text  Modality = "text"
	Image Modality = "image"
	// Combined marks hits re-ranked by the fusion engine.
	Combined Modality = "combined"
)

// IsValid checks if the modality is one of the supported values.
func (m Modality) IsValid() bool {
	return m == Text || m == Image || m == Combined
}

// Searchable reports whether the modality names a stored vector field.
// Combined vectors are derived at query time and never stored.
func (m Modality) Searchable() bool {
	return m == Text || m == Image
}
