package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"autoapply/models"
)

// AttemptStore is the slice of the attempt model the processor drives.
type AttemptStore interface {
	DueForRetry(ctx context.Context, now time.Time, ceiling, limit int) ([]*models.ApplicationAttempt, error)
	MarkApplied(ctx context.Context, id string, fieldsFilled int, note string) error
	RecordFailure(ctx context.Context, id string, note string, nextRetryAt *time.Time) error
	MarkManualReview(ctx context.Context, id string, note string) error
}

// Pipeline re-runs the full apply flow for one attempt.
type Pipeline interface {
	Apply(ctx context.Context, target models.ApplicationTarget, profile *models.ApplicantProfile) (*ApplyResult, error)
}

// Ledger receives exactly one debit per verified success.
type Ledger interface {
	Debit(ctx context.Context, attemptID, jobID string) error
}

// RetryProcessor periodically sweeps failed attempts and re-runs the
// pipeline with exponential backoff and a hard attempt ceiling. The state
// machine lives in the attempt rows, so sweeps survive process restarts.
type RetryProcessor struct {
	attempts  AttemptStore
	pipeline  Pipeline
	ledger    Ledger
	ceiling   int
	baseDelay time.Duration
	maxDelay  time.Duration
	batchSize int

	now func() time.Time
}

func NewRetryProcessor(attempts AttemptStore, pipeline Pipeline, ledger Ledger, ceiling, batchSize int, baseDelay, maxDelay time.Duration) *RetryProcessor {
	if ceiling <= 0 {
		ceiling = 3
	}
	if batchSize <= 0 {
		batchSize = 10
	}
	if baseDelay <= 0 {
		baseDelay = 30 * time.Minute
	}
	if maxDelay <= 0 {
		maxDelay = 24 * time.Hour
	}
	return &RetryProcessor{
		attempts:  attempts,
		pipeline:  pipeline,
		ledger:    ledger,
		ceiling:   ceiling,
		baseDelay: baseDelay,
		maxDelay:  maxDelay,
		batchSize: batchSize,
		now:       time.Now,
	}
}

// Run sweeps on the interval until the context is cancelled.
func (p *RetryProcessor) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := p.Sweep(ctx); err != nil {
				log.Printf("⚠️ Retry sweep failed: %v", err)
			}
		}
	}
}

// Sweep processes one bounded batch of due attempts and returns how many
// pipeline runs it performed. No due attempts means zero pipeline runs.
func (p *RetryProcessor) Sweep(ctx context.Context) (int, error) {
	due, err := p.attempts.DueForRetry(ctx, p.now(), p.ceiling, p.batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to select due attempts: %w", err)
	}
	if len(due) == 0 {
		return 0, nil
	}

	log.Printf("🔁 Retry sweep: %d attempts due", len(due))
	processed := 0
	for _, attempt := range due {
		if ctx.Err() != nil {
			return processed, ctx.Err()
		}
		p.processOne(ctx, attempt)
		processed++
	}
	return processed, nil
}

func (p *RetryProcessor) processOne(ctx context.Context, attempt *models.ApplicationAttempt) {
	target := models.ApplicationTarget{URL: attempt.TargetURL, JobID: attempt.JobID}
	profile := attempt.Profile

	result, err := p.pipeline.Apply(ctx, target, &profile)
	if err == nil && result != nil && result.Success {
		if markErr := p.attempts.MarkApplied(ctx, attempt.ID, result.FieldsFilledCount, result.Message); markErr != nil {
			log.Printf("⚠️ Failed to mark attempt %s applied: %v", attempt.ID, markErr)
			return
		}
		// Debit only after the applied status landed; billing without a
		// recorded success would double-charge on the next sweep.
		if p.ledger != nil {
			if debitErr := p.ledger.Debit(ctx, attempt.ID, attempt.JobID); debitErr != nil {
				log.Printf("⚠️ Ledger debit failed for attempt %s: %v", attempt.ID, debitErr)
			}
		}
		return
	}

	note := "retry failed"
	if err != nil {
		note = err.Error()
	} else if result != nil {
		note = result.Message
	}

	if result != nil && result.RequiresManual {
		if reviewErr := p.attempts.MarkManualReview(ctx, attempt.ID, note); reviewErr != nil {
			log.Printf("⚠️ Failed to flag attempt %s for review: %v", attempt.ID, reviewErr)
		}
		return
	}

	newCount := attempt.RetryCount + 1
	if newCount >= p.ceiling {
		// Terminal. The failure still counts against the attempt before it
		// surfaces to the user; a nil next retry clears the schedule.
		if failErr := p.attempts.RecordFailure(ctx, attempt.ID, note, nil); failErr != nil {
			log.Printf("⚠️ Failed to record failure for attempt %s: %v", attempt.ID, failErr)
		}
		if reviewErr := p.attempts.MarkManualReview(ctx, attempt.ID,
			fmt.Sprintf("retry ceiling reached: %s", note)); reviewErr != nil {
			log.Printf("⚠️ Failed to flag attempt %s for review: %v", attempt.ID, reviewErr)
		}
		return
	}

	nextRetry := p.now().Add(BackoffDelay(newCount, p.baseDelay, p.maxDelay))
	if failErr := p.attempts.RecordFailure(ctx, attempt.ID, note, &nextRetry); failErr != nil {
		log.Printf("⚠️ Failed to record failure for attempt %s: %v", attempt.ID, failErr)
	}
}

// BackoffDelay is min(base × 2^retryCount, max).
func BackoffDelay(retryCount int, base, max time.Duration) time.Duration {
	delay := base
	for i := 0; i < retryCount; i++ {
		delay *= 2
		if delay >= max {
			return max
		}
	}
	if delay > max {
		return max
	}
	return delay
}
