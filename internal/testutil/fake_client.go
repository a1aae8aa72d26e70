// Package testutil provides a scriptable execution-service fake shared by the
// core's tests.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/ramiro/assistant-core/internal/execsvc"
)

// FakeClient implements execsvc.Client. Behavior is overridden per test by
// assigning the *Fn fields; unset fields fall back to permissive defaults.
// Call counts and cancelled run ids are recorded for assertions.
type FakeClient struct {
	mu sync.Mutex

	CreateThreadFn      func(ctx context.Context) (string, error)
	AddMessageFn        func(ctx context.Context, threadID, role, content string) (string, error)
	CreateRunFn         func(ctx context.Context, threadID, assistantID string) (execsvc.RunState, error)
	RetrieveRunFn       func(ctx context.Context, threadID, runID string) (execsvc.RunState, error)
	SubmitToolOutputsFn func(ctx context.Context, threadID, runID string, outputs []execsvc.ToolOutput) (execsvc.RunState, error)
	CancelRunFn         func(ctx context.Context, threadID, runID string) error
	ListRunsFn          func(ctx context.Context, threadID string) ([]execsvc.RunState, error)
	ListMessagesFn      func(ctx context.Context, threadID string) ([]execsvc.ThreadMessage, error)

	AddMessageCalls   int
	RetrieveRunCalls  int
	SubmitCalls       int
	ListRunsCalls     int
	ListMessagesCalls int
	Cancelled         []string
	Submitted         [][]execsvc.ToolOutput
}

var _ execsvc.Client = (*FakeClient)(nil)

func (f *FakeClient) CreateThread(ctx context.Context) (string, error) {
	if f.CreateThreadFn != nil {
		return f.CreateThreadFn(ctx)
	}
	return "thread_1", nil
}

func (f *FakeClient) AddMessage(ctx context.Context, threadID, role, content string) (string, error) {
	f.mu.Lock()
	f.AddMessageCalls++
	n := f.AddMessageCalls
	f.mu.Unlock()
	if f.AddMessageFn != nil {
		return f.AddMessageFn(ctx, threadID, role, content)
	}
	return fmt.Sprintf("msg_%d", n), nil
}

func (f *FakeClient) CreateRun(ctx context.Context, threadID, assistantID string) (execsvc.RunState, error) {
	if f.CreateRunFn != nil {
		return f.CreateRunFn(ctx, threadID, assistantID)
	}
	return execsvc.RunState{ID: "run_1", Status: execsvc.RunQueued}, nil
}

func (f *FakeClient) RetrieveRun(ctx context.Context, threadID, runID string) (execsvc.RunState, error) {
	f.mu.Lock()
	f.RetrieveRunCalls++
	f.mu.Unlock()
	if f.RetrieveRunFn != nil {
		return f.RetrieveRunFn(ctx, threadID, runID)
	}
	return execsvc.RunState{ID: runID, Status: execsvc.RunCompleted}, nil
}

func (f *FakeClient) SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []execsvc.ToolOutput) (execsvc.RunState, error) {
	f.mu.Lock()
	f.SubmitCalls++
	f.Submitted = append(f.Submitted, outputs)
	f.mu.Unlock()
	if f.SubmitToolOutputsFn != nil {
		return f.SubmitToolOutputsFn(ctx, threadID, runID, outputs)
	}
	return execsvc.RunState{ID: runID, Status: execsvc.RunQueued}, nil
}

func (f *FakeClient) CancelRun(ctx context.Context, threadID, runID string) error {
	f.mu.Lock()
	f.Cancelled = append(f.Cancelled, runID)
	f.mu.Unlock()
	if f.CancelRunFn != nil {
		return f.CancelRunFn(ctx, threadID, runID)
	}
	return nil
}

func (f *FakeClient) ListRuns(ctx context.Context, threadID string) ([]execsvc.RunState, error) {
	f.mu.Lock()
	f.ListRunsCalls++
	f.mu.Unlock()
	if f.ListRunsFn != nil {
		return f.ListRunsFn(ctx, threadID)
	}
	return nil, nil
}

func (f *FakeClient) ListMessages(ctx context.Context, threadID string) ([]execsvc.ThreadMessage, error) {
	f.mu.Lock()
	f.ListMessagesCalls++
	f.mu.Unlock()
	if f.ListMessagesFn != nil {
		return f.ListMessagesFn(ctx, threadID)
	}
	return nil, nil
}

// CancelledRuns returns a copy of the cancelled run ids.
func (f *FakeClient) CancelledRuns() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.Cancelled))
	copy(out, f.Cancelled)
	return out
}

// StatusScript returns a RetrieveRun implementation that walks through the
// given statuses, repeating the last one once exhausted.
func StatusScript(states ...execsvc.RunState) func(ctx context.Context, threadID, runID string) (execsvc.RunState, error) {
	i := 0
	var mu sync.Mutex
	return func(ctx context.Context, threadID, runID string) (execsvc.RunState, error) {
		mu.Lock()
		defer mu.Unlock()
		state := states[i]
		if i < len(states)-1 {
			i++
		}
		return state, nil
	}
}
