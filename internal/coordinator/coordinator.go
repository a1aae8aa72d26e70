package coordinator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ramiro/assistant-core/internal/execsvc"
	"github.com/ramiro/assistant-core/internal/metrics"
	"github.com/ramiro/assistant-core/internal/telemetry"
)

const (
	defaultPollInterval  = time.Second
	defaultTimeout       = 300 * time.Second
	defaultMaxToolRounds = 10
)

// ErrRunTimeout reports that a run did not reach a terminal or action state
// within the configured bound. The remote run is cancelled best-effort first.
var ErrRunTimeout = errors.New("run timed out")

// ErrTooManyToolRounds reports that the assistant kept requesting tool calls
// past the round limit.
var ErrTooManyToolRounds = errors.New("run exceeded the tool round limit")

// ResolveFunc produces the outputs for one requires-action round. All calls in
// the round must be resolved; the run is only resumed with the complete set.
type ResolveFunc func(ctx context.Context, calls []execsvc.ToolCall) ([]execsvc.ToolOutput, error)

// Config tunes the polling loop. Zero values fall back to the documented
// defaults: 1s polls, 300s timeout, 10 tool rounds.
type Config struct {
	PollInterval  time.Duration
	Timeout       time.Duration
	MaxToolRounds int
}

// Coordinator drives a run from creation to a terminal state.
type Coordinator struct {
	client execsvc.Client
	cfg    Config
	log    zerolog.Logger
	stats  *metrics.Metrics
}

func New(client execsvc.Client, cfg Config, log zerolog.Logger) *Coordinator {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxToolRounds <= 0 {
		cfg.MaxToolRounds = defaultMaxToolRounds
	}
	return &Coordinator{client: client, cfg: cfg, log: log, stats: metrics.Default()}
}

// StartRun begins a run of assistantRef against threadRef. Failures are not
// retried.
func (c *Coordinator) StartRun(ctx context.Context, threadRef, assistantRef string) (execsvc.RunState, error) {
	run, err := c.client.CreateRun(ctx, threadRef, assistantRef)
	if err != nil {
		return execsvc.RunState{}, err
	}
	c.stats.RunsStarted.Inc()
	telemetry.Emit(ctx, c.log, "run_started", map[string]any{
		"thread_ref": threadRef,
		"run_ref":    run.ID,
		"status":     string(run.Status),
	})
	return run, nil
}

// AwaitTerminal polls the run until it reaches a terminal state or pauses on
// requires_action. On timeout the remote run is cancelled best-effort and
// ErrRunTimeout is returned; a cancelled ctx aborts the wait the same way.
func (c *Coordinator) AwaitTerminal(ctx context.Context, threadRef, runID string) (execsvc.RunState, error) {
	deadline := time.NewTimer(c.cfg.Timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		state, err := c.client.RetrieveRun(ctx, threadRef, runID)
		if err != nil {
			return execsvc.RunState{}, err
		}
		c.stats.PollTicks.Inc()
		telemetry.Emit(ctx, c.log, "run_poll", map[string]any{
			"run_ref": runID,
			"status":  string(state.Status),
		})

		if state.Status.Terminal() || state.Status == execsvc.RunRequiresAction {
			return state, nil
		}

		select {
		case <-ctx.Done():
			c.cancelBestEffort(ctx, threadRef, runID)
			return execsvc.RunState{}, fmt.Errorf("awaiting run %s: %w", runID, ctx.Err())
		case <-deadline.C:
			c.cancelBestEffort(ctx, threadRef, runID)
			c.stats.RunTimeouts.Inc()
			return execsvc.RunState{}, fmt.Errorf("run %s after %s: %w", runID, c.cfg.Timeout, ErrRunTimeout)
		case <-ticker.C:
		}
	}
}

// Resolve waits the run out, resolving each requires-action round through
// onRequiresAction until a true terminal state. The round loop is bounded: one
// round past MaxToolRounds the run is cancelled best-effort and the operation
// fails closed.
func (c *Coordinator) Resolve(ctx context.Context, threadRef string, run execsvc.RunState, onRequiresAction ResolveFunc) (execsvc.RunState, error) {
	started := time.Now()
	state := run
	for round := 0; ; round++ {
		var err error
		state, err = c.AwaitTerminal(ctx, threadRef, state.ID)
		if err != nil {
			return execsvc.RunState{}, err
		}

		if state.Status != execsvc.RunRequiresAction {
			c.stats.RunsFinished.WithLabelValues(string(state.Status)).Inc()
			c.stats.RunDuration.Observe(time.Since(started).Seconds())
			telemetry.Emit(ctx, c.log, "run_state", map[string]any{
				"run_ref":    state.ID,
				"status":     string(state.Status),
				"rounds":     round,
				"last_error": state.LastError,
			})
			return state, nil
		}

		if round >= c.cfg.MaxToolRounds {
			c.log.Warn().Str("run_ref", state.ID).Int("rounds", round).
				Msg("cancelling run stuck in tool rounds")
			c.cancelBestEffort(ctx, threadRef, state.ID)
			return execsvc.RunState{}, fmt.Errorf("run %s: %w", state.ID, ErrTooManyToolRounds)
		}

		outputs, err := onRequiresAction(ctx, state.ToolCalls)
		if err != nil {
			return execsvc.RunState{}, err
		}
		c.stats.ToolRounds.Inc()

		state, err = c.client.SubmitToolOutputs(ctx, threadRef, state.ID, outputs)
		if err != nil {
			return execsvc.RunState{}, err
		}
		telemetry.Emit(ctx, c.log, "outputs_submitted", map[string]any{
			"run_ref": state.ID,
			"count":   len(outputs),
			"round":   round,
		})
	}
}

// cancelBestEffort tries to stop the remote run; a failure here is logged and
// otherwise ignored since the local outcome is already decided. A fresh
// context detached from the caller's keeps the cancel request alive even when
// ctx itself expired.
func (c *Coordinator) cancelBestEffort(ctx context.Context, threadRef, runID string) {
	cancelCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := c.client.CancelRun(cancelCtx, threadRef, runID); err != nil {
		c.log.Warn().Err(err).Str("run_ref", runID).Msg("failed to cancel run")
	}
}
