package health

import "context"

// StorePinger checks sheet store availability.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// RerankProbe reports whether a rerank stage has credentials configured.
type RerankProbe interface {
	Name() string
	Available() bool
}
