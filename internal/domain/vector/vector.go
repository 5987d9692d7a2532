// Package vector holds the similarity arithmetic shared by the retrieval and
// fusion engines. All scores are computed here, never taken from the store.
package vector

import "math"

// Dot returns the inner product of a and b, accumulated in float64.
// Mismatched or empty inputs yield 0.
func Dot(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// Cosine returns the cosine similarity of a and b.
// Zero-length or all-zero inputs yield 0, not an error.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Blend combines an image vector and a text vector into a single vector:
// out[j] = alpha*image[j] + (1-alpha)*text[j].
// If only one side is present it is returned unchanged (no weighting), and if
// both are absent the result is nil. The inputs are never mutated.
func Blend(alpha float64, image, text []float32) []float32 {
	switch {
	case len(image) == 0 && len(text) == 0:
		return nil
	case len(image) == 0:
		return text
	case len(text) == 0:
		return image
	}

	n := len(text)
	if len(image) < n {
		n = len(image)
	}
	out := make([]float32, n)
	for j := 0; j < n; j++ {
		out[j] = float32(alpha*float64(image[j]) + (1-alpha)*float64(text[j]))
	}
	return out
}
