package embedding

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/kailas-cloud/visearch/internal/db"
	"github.com/kailas-cloud/visearch/internal/domain"
	"github.com/kailas-cloud/visearch/internal/domain/candidate"
	"github.com/kailas-cloud/visearch/internal/domain/modality"
)

// Hash field names for embedding documents.
const (
	fieldTextVector  = "text_vector"
	fieldImageVector = "image_vector"
)

func keyPrefix() string {
	return domain.KeyPrefix + "emb:"
}

func docKey(id string) string {
	return keyPrefix() + id
}

func indexName() string {
	return domain.KeyPrefix + "emb:idx"
}

func extractID(key string) string {
	return strings.TrimPrefix(key, keyPrefix())
}

// fieldFor maps a searchable modality to its stored vector field.
func fieldFor(m modality.Modality) (string, error) {
	switch m {
	case modality.Text:
		return fieldTextVector, nil
	case modality.Image:
		return fieldImageVector, nil
	default:
		return "", fmt.Errorf("modality %q has no stored vector field: %w", m, domain.ErrInvalidQuery)
	}
}

func vectorField(name string, dim int, hnsw HNSWConfig) db.IndexField {
	return db.IndexField{
		Name:              name,
		Type:              db.IndexFieldVector,
		VectorAlgo:        db.VectorHNSW,
		VectorDim:         dim,
		VectorDistance:    db.DistanceIP,
		VectorM:           hnsw.M,
		VectorEFConstruct: hnsw.EFConstruct,
	}
}

func parseCandidate(id string, fields map[string]string) candidate.Candidate {
	return candidate.New(
		id,
		bytesToVector(fields[fieldTextVector]),
		bytesToVector(fields[fieldImageVector]),
	)
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// bytesToVector deserializes a binary string back to []float32.
// Returns nil when the payload is not a whole number of float32s.
func bytesToVector(s string) []float32 {
	b := []byte(s)
	if len(b) == 0 || len(b)%4 != 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
