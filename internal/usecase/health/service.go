// Package health aggregates component availability for the health endpoint.
package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates an optional collaborator is down; search still works.
	Degraded Status = "degraded"
	// Unhealthy indicates the sheet store is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
	// CheckAbsent indicates the component is not configured.
	CheckAbsent CheckResult = "absent"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	store     StorePinger
	embedding EmbeddingChecker
	rerankers []RerankProbe
}

// New creates a Service. embedding may be nil; rerankers may be empty.
func New(store StorePinger, embedding EmbeddingChecker, rerankers []RerankProbe) *Service {
	return &Service{store: store, embedding: embedding, rerankers: rerankers}
}

// Check runs health checks against all components. The store is the only
// required one: without it every adapter fails, so its failure is Unhealthy
// rather than Degraded.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	storeOK := s.store.Ping(ctx) == nil
	if storeOK {
		checks["store"] = CheckOK
	} else {
		checks["store"] = CheckError
	}

	degraded := false
	if s.embedding != nil {
		if err := s.embedding.HealthCheck(ctx); err != nil {
			checks["embedding"] = CheckError
			degraded = true
		} else {
			checks["embedding"] = CheckOK
		}
	}

	for _, probe := range s.rerankers {
		if probe.Available() {
			checks["rerank_"+probe.Name()] = CheckOK
		} else {
			checks["rerank_"+probe.Name()] = CheckAbsent
		}
	}

	switch {
	case !storeOK:
		return Report{Status: Unhealthy, Checks: checks}
	case degraded:
		return Report{Status: Degraded, Checks: checks}
	default:
		return Report{Status: Healthy, Checks: checks}
	}
}
