// Package rerank reorders fused candidates via a cascade of external
// relevance-scoring stages. Every stage is optional; the cascade as a whole
// never fails the request.
package rerank

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/worshipdeck/sheetsearch/internal/logger"
	"github.com/worshipdeck/sheetsearch/internal/metrics"
)

// Stage is one external reranking endpoint.
type Stage interface {
	// Name identifies the stage in logs and metrics.
	Name() string
	// Available reports whether the stage has credentials configured.
	Available() bool
	// Rerank returns document indices in relevance order, at most topN.
	Rerank(ctx context.Context, query string, documents []string, topN int) ([]int, error)
}

// Cascade tries stages in priority order. The first stage that succeeds wins;
// unavailable or failing stages are skipped.
type Cascade struct {
	stages  []Stage
	timeout time.Duration
}

// New creates a cascade. A zero timeout disables the per-stage deadline.
func New(stages []Stage, timeout time.Duration) *Cascade {
	return &Cascade{stages: stages, timeout: timeout}
}

// Rerank returns indices into documents in final relevance order. When no
// stage is available or every stage fails, it returns the identity order
// truncated to topN, so the fused ranking stands.
func (c *Cascade) Rerank(ctx context.Context, query string, documents []string, topN int) []int {
	if topN <= 0 || topN > len(documents) {
		topN = len(documents)
	}

	log := logger.FromContext(ctx)

	for _, stage := range c.stages {
		if !stage.Available() {
			metrics.RerankStageTotal.WithLabelValues(stage.Name(), "skipped").Inc()
			continue
		}

		stageCtx := ctx
		if c.timeout > 0 {
			var cancel context.CancelFunc
			stageCtx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}

		indices, err := stage.Rerank(stageCtx, query, documents, topN)
		if err != nil {
			metrics.RerankStageTotal.WithLabelValues(stage.Name(), "error").Inc()
			log.Warn("rerank stage failed, falling through",
				zap.String("stage", stage.Name()),
				zap.Error(err))
			continue
		}

		metrics.RerankStageTotal.WithLabelValues(stage.Name(), "ok").Inc()
		return indices
	}

	identity := make([]int, topN)
	for i := range identity {
		identity[i] = i
	}
	return identity
}
