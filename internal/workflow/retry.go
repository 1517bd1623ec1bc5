package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/leadflowhq/leadflow/internal/model"
	"github.com/leadflowhq/leadflow/internal/monitoring"
)

// usageActions names the metered billing action per step. Steps absent
// from the map are free.
var usageActions = map[model.Step]string{
	model.StepProposal: "proposal",
	model.StepFollowup: "followup",
}

// runWithRetry drives one step through the retry policy: up to
// MaxAttempts attempts, each recorded as a run entry, with capped
// exponential backoff between attempts. Quota errors propagate on
// first occurrence; precondition errors never retry. A skippable step
// that exhausts its attempts returns the zero value and no error.
func runWithRetry[T any](ctx context.Context, r *run, step model.Step, allowSkip bool, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	maxAttempts := r.w.cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		started := time.Now()

		err := r.recordUsage(ctx, step, attempt)
		var value T
		if err == nil {
			r.w.logger.Printf("[INFO] step_start lead=%s step=%s attempt=%d", r.leadID, step, attempt)
			value, err = fn(ctx)
		}
		duration := time.Since(started)

		if err == nil {
			r.w.recorder.RecordRun(ctx, r.ownerID, r.leadID, model.StageName(step), true, duration, "")
			r.w.logger.Printf("[INFO] step_success lead=%s step=%s attempt=%d", r.leadID, step, attempt)
			return value, nil
		}

		lastErr = err
		r.w.logger.Printf("[ERROR] step_failed lead=%s step=%s attempt=%d err=%v", r.leadID, step, attempt, err)
		r.w.recorder.RecordRun(ctx, r.ownerID, r.leadID, model.StageName(step), false, duration,
			fmt.Sprintf("attempt %d: %s", attempt, monitoring.TruncateError(err.Error())))

		switch classify(err) {
		case kindQuota:
			return zero, err
		case kindPrecondition:
			if allowSkip {
				r.w.logger.Printf("[WARN] step_skipped lead=%s step=%s reason=%v", r.leadID, step, err)
				return zero, nil
			}
			return zero, err
		}

		if attempt >= maxAttempts {
			if allowSkip {
				r.w.logger.Printf("[WARN] step_skipped lead=%s step=%s reason=%v", r.leadID, step, err)
				return zero, nil
			}
			return zero, err
		}
		r.w.sleep(backoff(r.w.cfg, attempt))
	}
	return zero, lastErr
}

// recordUsage meters the step's billing action once per run, before
// the first attempt.
func (r *run) recordUsage(ctx context.Context, step model.Step, attempt int) error {
	action, metered := usageActions[step]
	if !metered || attempt != 1 || r.usageRecorded[action] {
		return nil
	}
	if err := r.w.meter.Increment(ctx, r.ownerID, action); err != nil {
		return err
	}
	r.usageRecorded[action] = true
	return nil
}

// backoff doubles per attempt from the configured base, capped.
func backoff(cfg model.WorkflowConfig, attempt int) time.Duration {
	base := cfg.BackoffBaseMS
	if base <= 0 {
		base = 1000
	}
	capMS := cfg.BackoffCapMS
	if capMS <= 0 {
		capMS = 5000
	}
	delay := base
	for i := 0; i < attempt && delay < capMS; i++ {
		delay *= 2
	}
	if delay > capMS {
		delay = capMS
	}
	return time.Duration(delay) * time.Millisecond
}
