package dispatch_test

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ramiro/assistant-core/internal/dispatch"
	"github.com/ramiro/assistant-core/internal/domain"
	"github.com/ramiro/assistant-core/internal/execsvc"
	"github.com/ramiro/assistant-core/internal/logging"
	"github.com/ramiro/assistant-core/tools"
)

// memStore records messages and invocations in memory.
type memStore struct {
	messages    []*domain.Message
	invocations map[string]*domain.ToolInvocation // by invocation id
}

func newMemStore() *memStore {
	return &memStore{invocations: make(map[string]*domain.ToolInvocation)}
}

func (s *memStore) CreateMessage(_ context.Context, msg *domain.Message) error {
	if msg.ID == "" {
		msg.ID = fmt.Sprintf("local_%d", len(s.messages)+1)
	}
	s.messages = append(s.messages, msg)
	return nil
}

func (s *memStore) CreateInvocation(_ context.Context, inv *domain.ToolInvocation) error {
	if inv.ID == "" {
		inv.ID = fmt.Sprintf("inv_%d", len(s.invocations)+1)
	}
	cp := *inv
	s.invocations[inv.ID] = &cp
	return nil
}

func (s *memStore) FinishInvocation(_ context.Context, id, status, output, errDetail string) error {
	inv, ok := s.invocations[id]
	if !ok {
		return fmt.Errorf("invocation %s not found", id)
	}
	inv.Status = status
	inv.Output = output
	inv.Error = errDetail
	return nil
}

func (s *memStore) byCallRef(callRef string) *domain.ToolInvocation {
	for _, inv := range s.invocations {
		if inv.CallRef == callRef {
			return inv
		}
	}
	return nil
}

func call(id, name, args string) execsvc.ToolCall {
	return execsvc.ToolCall{ID: id, Name: name, Arguments: args}
}

var testConv = domain.Context{ConversationID: "conv_1", ParticipantRef: "user_7"}

func TestResolveToolCalls_UnknownToolGetsPlaceholder(t *testing.T) {
	st := newMemStore()
	d := dispatch.New(nil, st, logging.Nop())

	outputs, err := d.ResolveToolCalls(context.Background(),
		[]execsvc.ToolCall{call("call_1", "frobnicate", `{"x":1}`)}, testConv)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(outputs) != 1 {
		t.Fatalf("outputs = %d", len(outputs))
	}
	if !strings.Contains(outputs[0].Output, "executed frobnicate with") {
		t.Fatalf("unexpected placeholder: %s", outputs[0].Output)
	}

	inv := st.byCallRef("call_1")
	if inv == nil || inv.Status != domain.InvocationCompleted {
		t.Fatalf("unknown tool must still complete its invocation: %+v", inv)
	}
}

func TestResolveToolCalls_FailureDoesNotAbortRound(t *testing.T) {
	defs := []tools.ToolDefinition{
		{Name: "ok_tool", Function: func(context.Context, json.RawMessage, domain.Context) (any, error) {
			return map[string]any{"result": "fine"}, nil
		}},
		{Name: "broken_tool", Function: func(context.Context, json.RawMessage, domain.Context) (any, error) {
			return nil, fmt.Errorf("downstream unavailable")
		}},
	}
	st := newMemStore()
	d := dispatch.New(defs, st, logging.Nop())

	calls := []execsvc.ToolCall{
		call("call_1", "ok_tool", "{}"),
		call("call_2", "broken_tool", "{}"),
		call("call_3", "ok_tool", "{}"),
	}
	outputs, err := d.ResolveToolCalls(context.Background(), calls, testConv)
	if err != nil {
		t.Fatalf("one failing handler must not abort the round: %v", err)
	}
	if len(outputs) != 3 {
		t.Fatalf("all outputs must be produced, got %d", len(outputs))
	}

	if inv := st.byCallRef("call_2"); inv == nil || inv.Status != domain.InvocationFailed ||
		!strings.Contains(inv.Error, "downstream unavailable") {
		t.Fatalf("failed call not recorded: %+v", st.byCallRef("call_2"))
	}
	for _, ref := range []string{"call_1", "call_3"} {
		if inv := st.byCallRef(ref); inv == nil || inv.Status != domain.InvocationCompleted {
			t.Fatalf("sibling call %s affected by failure: %+v", ref, st.byCallRef(ref))
		}
	}
	if !strings.Contains(outputs[1].Output, "downstream unavailable") {
		t.Fatalf("failure placeholder missing: %s", outputs[1].Output)
	}
}

func TestResolveToolCalls_RecordsSystemMessagePerCall(t *testing.T) {
	st := newMemStore()
	d := dispatch.New(nil, st, logging.Nop())

	_, err := d.ResolveToolCalls(context.Background(),
		[]execsvc.ToolCall{call("call_1", "frobnicate", `{"x":1}`)}, testConv)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(st.messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(st.messages))
	}
	msg := st.messages[0]
	if msg.Role != domain.RoleSystem || msg.ConversationID != "conv_1" ||
		!strings.Contains(msg.Content, "frobnicate") {
		t.Fatalf("unexpected system message: %+v", msg)
	}
}

func TestResolveToolCalls_SanitizesHandlerOutput(t *testing.T) {
	id := uuid.MustParse("7f9c24e5-2f06-4bb3-9d4b-9a5f5c2a6d10")
	when := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	defs := []tools.ToolDefinition{
		{Name: "booker", Function: func(context.Context, json.RawMessage, domain.Context) (any, error) {
			return map[string]any{"event_id": id, "starts_at": when}, nil
		}},
	}
	st := newMemStore()
	d := dispatch.New(defs, st, logging.Nop())

	outputs, err := d.ResolveToolCalls(context.Background(),
		[]execsvc.ToolCall{call("call_1", "booker", "{}")}, testConv)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	var decoded map[string]string
	if err := json.Unmarshal([]byte(outputs[0].Output), &decoded); err != nil {
		t.Fatalf("output is not flat JSON: %v\n%s", err, outputs[0].Output)
	}
	if decoded["event_id"] != id.String() {
		t.Fatalf("event_id = %q", decoded["event_id"])
	}
	if decoded["starts_at"] != "2026-09-01T09:00:00Z" {
		t.Fatalf("starts_at = %q", decoded["starts_at"])
	}
}

func TestResolveToolCalls_PanickingHandlerIsContained(t *testing.T) {
	defs := []tools.ToolDefinition{
		{Name: "panicky", Function: func(context.Context, json.RawMessage, domain.Context) (any, error) {
			panic("boom")
		}},
	}
	st := newMemStore()
	d := dispatch.New(defs, st, logging.Nop())

	outputs, err := d.ResolveToolCalls(context.Background(),
		[]execsvc.ToolCall{call("call_1", "panicky", "{}")}, testConv)
	if err != nil {
		t.Fatalf("panic must be contained: %v", err)
	}
	inv := st.byCallRef("call_1")
	if inv.Status != domain.InvocationFailed || !strings.Contains(inv.Error, "boom") {
		t.Fatalf("panic not recorded as failure: %+v", inv)
	}
	if len(outputs) != 1 {
		t.Fatalf("round must still submit an output")
	}
}
