package tools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ramiro/assistant-core/internal/domain"
)

func call(t *testing.T, def ToolDefinition, input string) map[string]any {
	t.Helper()
	out, err := def.Function(context.Background(), json.RawMessage(input), domain.Context{ParticipantRef: "+15550001111"})
	if err != nil {
		t.Fatalf("%s: %v", def.Name, err)
	}
	result, ok := out.(map[string]any)
	if !ok {
		t.Fatalf("%s returned %T, want map", def.Name, out)
	}
	return result
}

func TestCurrentDate(t *testing.T) {
	out := call(t, CurrentDateDefinition, `{}`)
	result, _ := out["result"].(string)
	want := "today's date is " + time.Now().UTC().Format("2006-01-02")
	if result != want {
		t.Fatalf("result = %q, want %q", result, want)
	}
}

func TestCurrentDateIgnoresBadTimezone(t *testing.T) {
	out := call(t, CurrentDateDefinition, `{"timezone":"Not/AZone"}`)
	if _, ok := out["result"].(string); !ok {
		t.Fatalf("bad timezone must fall back to UTC, got %v", out)
	}
}

func TestCreateCalendarEvent(t *testing.T) {
	out := call(t, CalendarEventDefinition,
		`{"title":"Sync","starts_at":"2026-09-01T10:00:00Z","attendees":["ana"]}`)

	if _, ok := out["event_id"].(uuid.UUID); !ok {
		t.Fatalf("event_id = %T, want uuid.UUID", out["event_id"])
	}
	start, ok := out["starts_at"].(time.Time)
	if !ok {
		t.Fatalf("starts_at = %T", out["starts_at"])
	}
	end, _ := out["ends_at"].(time.Time)
	if end.Sub(start) != time.Hour {
		t.Fatalf("default duration = %s, want 1h", end.Sub(start))
	}
	if out["booked_for"] != "+15550001111" || out["status"] != "scheduled" {
		t.Fatalf("out = %v", out)
	}
}

func TestCreateCalendarEventAcceptsLocalLayouts(t *testing.T) {
	for _, raw := range []string{"2026-09-01T10:00", "2026-09-01 10:00"} {
		out := call(t, CalendarEventDefinition, `{"title":"Sync","starts_at":"`+raw+`"}`)
		if _, ok := out["starts_at"].(time.Time); !ok {
			t.Errorf("layout %q not accepted", raw)
		}
	}
}

func TestCreateCalendarEventValidation(t *testing.T) {
	cases := map[string]string{
		"missing title": `{"starts_at":"2026-09-01T10:00:00Z"}`,
		"missing start": `{"title":"Sync"}`,
		"bad start":     `{"title":"Sync","starts_at":"next tuesday"}`,
	}
	for name, input := range cases {
		if _, err := CreateCalendarEvent(context.Background(), json.RawMessage(input), domain.Context{}); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestRegisterOperations(t *testing.T) {
	out := call(t, RegisterOperationsDefinition,
		`{"operations":[{"concept":"lunch","amount":-12.5,"category":"food"},{"concept":"refund","amount":30}]}`)

	if result, _ := out["result"].(string); !strings.Contains(result, "2") {
		t.Fatalf("result = %v", out["result"])
	}
	ops, _ := out["operations"].([]map[string]any)
	if len(ops) != 2 {
		t.Fatalf("recorded %d operations", len(ops))
	}
	if ops[0]["concept"] != "lunch" || ops[0]["amount"] != -12.5 {
		t.Fatalf("first operation = %v", ops[0])
	}

	if _, err := RegisterOperations(context.Background(), json.RawMessage(`{"operations":[]}`), domain.Context{}); err == nil {
		t.Fatal("empty operation list must be rejected")
	}
}

func TestRequestQuote(t *testing.T) {
	out := call(t, RequestQuoteDefinition, `{"service":"catering"}`)
	if out["quantity"] != 1 {
		t.Fatalf("quantity = %v, want default 1", out["quantity"])
	}
	if out["requested_by"] != "+15550001111" || out["status"] != "received" {
		t.Fatalf("out = %v", out)
	}

	if _, err := RequestQuote(context.Background(), json.RawMessage(`{}`), domain.Context{}); err == nil {
		t.Fatal("missing service must be rejected")
	}
}
