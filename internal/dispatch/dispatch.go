package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ramiro/assistant-core/internal/domain"
	"github.com/ramiro/assistant-core/internal/execsvc"
	"github.com/ramiro/assistant-core/internal/metrics"
	"github.com/ramiro/assistant-core/internal/telemetry"
	"github.com/ramiro/assistant-core/tools"
)

// InvocationStore is the slice of persistence the dispatcher needs: a system
// message announcing each call, plus the invocation row's lifecycle.
type InvocationStore interface {
	CreateMessage(ctx context.Context, msg *domain.Message) error
	CreateInvocation(ctx context.Context, inv *domain.ToolInvocation) error
	FinishInvocation(ctx context.Context, id, status, output, errDetail string) error
}

// Dispatcher resolves a round of tool calls against the static registry.
type Dispatcher struct {
	defs  map[string]tools.ToolDefinition
	store InvocationStore
	log   zerolog.Logger
	stats *metrics.Metrics
}

// New indexes defs by tool name. Later definitions with a duplicate name win.
func New(defs []tools.ToolDefinition, store InvocationStore, log zerolog.Logger) *Dispatcher {
	index := make(map[string]tools.ToolDefinition, len(defs))
	for _, def := range defs {
		index[def.Name] = def
	}
	return &Dispatcher{defs: index, store: store, log: log, stats: metrics.Default()}
}

// ResolveToolCalls executes every call in the round and returns one output per
// call, in call order. Handler failures are absorbed per-invocation; only
// local persistence failures abort the round, since resuming a run with
// unrecorded invocations would break the bookkeeping the transcript relies on.
func (d *Dispatcher) ResolveToolCalls(ctx context.Context, calls []execsvc.ToolCall, convCtx domain.Context) ([]execsvc.ToolOutput, error) {
	outputs := make([]execsvc.ToolOutput, 0, len(calls))
	for _, call := range calls {
		out, err := d.resolveOne(ctx, call, convCtx)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, execsvc.ToolOutput{CallID: call.ID, Output: out})
	}
	return outputs, nil
}

func (d *Dispatcher) resolveOne(ctx context.Context, call execsvc.ToolCall, convCtx domain.Context) (string, error) {
	sysMsg := &domain.Message{
		ConversationID: convCtx.ConversationID,
		Role:           domain.RoleSystem,
		Content:        fmt.Sprintf("tool call: %s with %s", call.Name, call.Arguments),
	}
	if err := d.store.CreateMessage(ctx, sysMsg); err != nil {
		return "", fmt.Errorf("record tool call message: %w", err)
	}

	inv := &domain.ToolInvocation{
		MessageID: sysMsg.ID,
		ToolName:  call.Name,
		Input:     call.Arguments,
		Status:    domain.InvocationInProgress,
		CallRef:   call.ID,
	}
	if err := d.store.CreateInvocation(ctx, inv); err != nil {
		return "", fmt.Errorf("record tool invocation: %w", err)
	}

	started := time.Now()
	result, execErr := d.execute(ctx, call, convCtx)

	status := domain.InvocationCompleted
	errDetail := ""
	if execErr != nil {
		status = domain.InvocationFailed
		errDetail = execErr.Error()
		// Failure placeholder keeps the round's output set complete.
		result = map[string]any{"error": execErr.Error()}
		d.log.Warn().Err(execErr).Str("tool", call.Name).Str("call_ref", call.ID).
			Msg("tool execution failed; round continues")
	}

	payload, err := json.Marshal(JSONSafe(result))
	if err != nil {
		// A handler returned something unencodable; treat like a failure so
		// the round still completes.
		status = domain.InvocationFailed
		errDetail = err.Error()
		payload = []byte(fmt.Sprintf(`{"error":%q}`, err.Error()))
	}

	if err := d.store.FinishInvocation(ctx, inv.ID, status, string(payload), errDetail); err != nil {
		return "", fmt.Errorf("finalize tool invocation: %w", err)
	}

	d.stats.ToolExecutions.WithLabelValues(call.Name, status).Inc()
	telemetry.Emit(ctx, d.log, "tool_exec", map[string]any{
		"tool":        call.Name,
		"call_ref":    call.ID,
		"status":      status,
		"duration_ms": time.Since(started).Milliseconds(),
		"input_size":  len(call.Arguments),
		"output_size": len(payload),
	})
	return string(payload), nil
}

// execute runs the matching handler, or the generic placeholder when the name
// is not registered.
func (d *Dispatcher) execute(ctx context.Context, call execsvc.ToolCall, convCtx domain.Context) (result any, err error) {
	def, ok := d.defs[call.Name]
	if !ok {
		d.log.Debug().Str("tool", call.Name).Msg("no handler registered; using placeholder result")
		return map[string]any{
			"result": fmt.Sprintf("executed %s with %s", call.Name, call.Arguments),
		}, nil
	}

	// A panicking handler must not take down the whole round.
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("tool %s panicked: %v", call.Name, r)
		}
	}()
	return def.Function(ctx, json.RawMessage(call.Arguments), convCtx)
}
