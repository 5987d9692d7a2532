package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results. PendingProducts is -1 when the
// backlog could not be counted.
type Report struct {
	Status          Status
	Checks          map[string]CheckResult
	PendingProducts int
}

// Service coordinates health checks.
type Service struct {
	db        DBPinger
	embedding EmbeddingChecker
	backlog   PendingCounter
}

// New creates a Service. embedding and backlog can be nil.
func New(db DBPinger, embedding EmbeddingChecker, backlog PendingCounter) *Service {
	return &Service{db: db, embedding: embedding, backlog: backlog}
}

// Check runs health checks against all components and reports the indexing
// backlog size alongside.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
	} else {
		checks["database"] = CheckOK
	}

	if s.embedding != nil {
		if err := s.embedding.HealthCheck(ctx); err != nil {
			checks["embedding"] = CheckError
		} else {
			checks["embedding"] = CheckOK
		}
	}

	pending := -1
	if s.backlog != nil {
		if n, err := s.backlog.CountPending(ctx); err == nil {
			pending = n
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks, PendingProducts: pending}
}
