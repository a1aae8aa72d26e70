// Package telemetry emits named orchestration events (run_started, run_poll,
// tool_exec, sync_done, ...) through the structured logger.
//
// Events log at debug level so they stay quiet in normal operation; setting
// ASSISTANT_TRACE=1 promotes them to info for live inspection.
package telemetry

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var traceEnabled bool

func init() {
	// Read once at process start. Mid-run environment changes have no effect.
	traceEnabled = os.Getenv("ASSISTANT_TRACE") == "1"
}

// TraceEnabled reports whether event promotion was enabled at startup.
func TraceEnabled() bool { return traceEnabled }

// Emit logs one event with its fields, augmented with the event name, the
// emission time, and the operation ID from ctx when present. Callers' maps are
// never mutated.
func Emit(ctx context.Context, log zerolog.Logger, name string, fields map[string]any) {
	ev := log.Debug()
	if traceEnabled {
		ev = log.Info()
	}
	if opID, ok := OpIDFromContext(ctx); ok {
		ev = ev.Str("op_id", opID)
	}
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Time("emitted_at", time.Now().UTC()).Str("event", name).Msg(name)
}
