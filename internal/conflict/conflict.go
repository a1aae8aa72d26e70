// Package conflict enforces "at most one in-flight run per conversation"
// against a service that rejects mutations while a run is active.
//
// The mechanism is detect-and-recover, not a lock: the service is the source
// of truth for whether a run is active, so a rejected append triggers a
// best-effort cancellation sweep, a bounded confirmation wait, and exactly one
// retry. If the retry is rejected too, the error propagates.
package conflict

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/ramiro/assistant-core/internal/execsvc"
	"github.com/ramiro/assistant-core/internal/metrics"
	"github.com/ramiro/assistant-core/internal/telemetry"
)

const (
	defaultConfirmInterval = 1500 * time.Millisecond
	defaultConfirmTimeout  = 15 * time.Second
)

// Config tunes the cancellation-confirmation wait. Zero values fall back to
// the documented defaults: 1.5s checks for up to 15s.
type Config struct {
	ConfirmInterval time.Duration
	ConfirmTimeout  time.Duration
}

// Resolver recovers from active-run rejections on append.
type Resolver struct {
	client execsvc.Client
	cfg    Config
	log    zerolog.Logger
	stats  *metrics.Metrics
}

func New(client execsvc.Client, cfg Config, log zerolog.Logger) *Resolver {
	if cfg.ConfirmInterval <= 0 {
		cfg.ConfirmInterval = defaultConfirmInterval
	}
	if cfg.ConfirmTimeout <= 0 {
		cfg.ConfirmTimeout = defaultConfirmTimeout
	}
	return &Resolver{client: client, cfg: cfg, log: log, stats: metrics.Default()}
}

// AppendWithRetry appends a message to the thread. On an active-run rejection
// it cancels the thread's active runs, waits for the service to confirm the
// thread is clear, and retries exactly once. A second rejection is surfaced
// wrapped as an execution error.
func (r *Resolver) AppendWithRetry(ctx context.Context, threadRef, role, content string) (string, error) {
	msgRef, err := r.client.AddMessage(ctx, threadRef, role, content)
	if err == nil {
		return msgRef, nil
	}
	if !execsvc.IsActiveRun(err) {
		return "", err
	}

	r.log.Info().Str("thread_ref", threadRef).Msg("active run detected; cancelling and retrying append")
	r.CancelActiveRuns(ctx, threadRef)
	r.stats.ConflictRetries.Inc()
	telemetry.Emit(ctx, r.log, "conflict_retry", map[string]any{"thread_ref": threadRef})

	msgRef, err = r.client.AddMessage(ctx, threadRef, role, content)
	if err != nil {
		if execsvc.IsActiveRun(err) {
			return "", &execsvc.ExecutionError{Op: "add_message", Err: err}
		}
		return "", err
	}
	return msgRef, nil
}

// CancelActiveRuns cancels every queued or in-progress run on the thread, then
// waits, polling on ConfirmInterval up to ConfirmTimeout, for the service to
// report the thread clear. It proceeds regardless of the outcome: the retry
// happens either way, accepting a small chance of a second conflict.
func (r *Resolver) CancelActiveRuns(ctx context.Context, threadRef string) {
	runs, err := r.client.ListRuns(ctx, threadRef)
	if err != nil {
		r.log.Warn().Err(err).Str("thread_ref", threadRef).Msg("could not list runs for cancellation")
		return
	}
	for _, run := range runs {
		if !run.Status.Active() {
			continue
		}
		if err := r.client.CancelRun(ctx, threadRef, run.ID); err != nil {
			r.log.Warn().Err(err).Str("run_ref", run.ID).Msg("failed to cancel run")
			continue
		}
		r.log.Debug().Str("run_ref", run.ID).Msg("run cancelled")
	}

	deadline := time.NewTimer(r.cfg.ConfirmTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(r.cfg.ConfirmInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-deadline.C:
			r.log.Warn().Str("thread_ref", threadRef).
				Msg("timed out waiting for run cancellation to clear")
			return
		case <-ticker.C:
		}

		runs, err := r.client.ListRuns(ctx, threadRef)
		if err != nil {
			r.log.Warn().Err(err).Str("thread_ref", threadRef).Msg("could not confirm cancellation")
			return
		}
		if !anyActive(runs) {
			r.log.Debug().Str("thread_ref", threadRef).Msg("thread clear of active runs")
			return
		}
	}
}

func anyActive(runs []execsvc.RunState) bool {
	for _, run := range runs {
		if run.Status.Active() {
			return true
		}
	}
	return false
}
