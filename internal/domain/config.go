package domain

// KeyPrefix namespaces all keys written to the store.
const KeyPrefix = "visearch:"

// VectorConfig holds internal vectorization settings, not exposed to clients.
type VectorConfig struct {
	Model      string
	Dimensions int
}

// DefaultVectorConfig returns the model and dimension defaults for Jina CLIP v2.
func DefaultVectorConfig() VectorConfig {
	return VectorConfig{
		Model:      "jina-clip-v2",
		Dimensions: 1024,
	}
}
