package jobs

import (
	"context"
	"log"
	"time"

	"github.com/pitchlabs/coachkb/internal/telemetry"
)

// staleReason is recorded on documents failed by the sweep.
const staleReason = "ingestion did not complete; document was reconciled as failed"

// DocumentSweepRepository marks documents stuck in processing as failed.
type DocumentSweepRepository interface {
	SweepStaleProcessing(ctx context.Context, cutoff time.Time, reason string) (int, error)
}

// Reconciler moves documents that have been in processing state longer
// than the stale timeout into failed state. Ingestion is synchronous,
// so a document only stays in processing when its writer crashed
// mid-pipeline.
type Reconciler struct {
	repo       DocumentSweepRepository
	staleAfter time.Duration
}

// NewReconciler creates a Reconciler with the given stale timeout.
func NewReconciler(repo DocumentSweepRepository, staleAfter time.Duration) *Reconciler {
	if staleAfter <= 0 {
		staleAfter = 15 * time.Minute
	}
	return &Reconciler{
		repo:       repo,
		staleAfter: staleAfter,
	}
}

// Run sweeps stale processing documents once.
func (r *Reconciler) Run(ctx context.Context) error {
	ctx, span := telemetry.StartSpan(ctx, "Reconciler.Run", telemetry.SpanAttributes{
		Operation: "reconcile",
	})
	defer span.End()

	cutoff := time.Now().UTC().Add(-r.staleAfter)
	swept, err := r.repo.SweepStaleProcessing(ctx, cutoff, staleReason)
	if err != nil {
		span.SetError(err)
		return err
	}

	if swept > 0 {
		log.Printf("jobs: reconciled %d stale processing document(s)", swept)
	}
	return nil
}
