package health

import "context"

// DBPinger checks store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// PendingCounter reports the indexing backlog size.
type PendingCounter interface {
	CountPending(ctx context.Context) (int, error)
}
