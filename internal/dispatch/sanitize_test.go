package dispatch

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestJSONSafe_NestedValues(t *testing.T) {
	id := uuid.MustParse("2d1f3c58-6f3a-4e0d-8af0-1a2b3c4d5e6f")
	when := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)

	in := map[string]any{
		"id":    id,
		"plain": "text",
		"count": 3,
		"nested": map[string]any{
			"at": when,
		},
		"items": []any{id, when, "x"},
	}

	out, ok := JSONSafe(in).(map[string]any)
	if !ok {
		t.Fatal("expected a map back")
	}
	if out["id"] != id.String() {
		t.Fatalf("id = %v", out["id"])
	}
	if out["plain"] != "text" || out["count"] != 3 {
		t.Fatalf("native values must pass through: %v", out)
	}
	nested := out["nested"].(map[string]any)
	if nested["at"] != "2026-01-02T15:04:05Z" {
		t.Fatalf("nested time = %v", nested["at"])
	}
	items := out["items"].([]any)
	if items[0] != id.String() || items[1] != "2026-01-02T15:04:05Z" || items[2] != "x" {
		t.Fatalf("slice values = %v", items)
	}
}

func TestJSONSafe_DoesNotMutateInput(t *testing.T) {
	id := uuid.New()
	in := map[string]any{"id": id}
	_ = JSONSafe(in)
	if _, ok := in["id"].(uuid.UUID); !ok {
		t.Fatal("input map was mutated")
	}
}
