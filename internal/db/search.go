package db

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	Field        string // vector field alias to search over
	Vector       []float32
	K            int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search. Score carries the
// store's raw distance; callers recompute similarity from the returned
// vectors and must not rank by it.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
