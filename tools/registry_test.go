package tools

import "testing"

func TestRegistryNames(t *testing.T) {
	defs := Registry()
	want := []string{
		"get_current_date",
		"create_calendar_event",
		"register_operations",
		"request_quote",
	}
	if len(defs) != len(want) {
		t.Fatalf("registry has %d tools, want %d", len(defs), len(want))
	}
	for i, def := range defs {
		if def.Name != want[i] {
			t.Errorf("tool %d = %q, want %q", i, def.Name, want[i])
		}
		if def.Description == "" {
			t.Errorf("tool %q has no description", def.Name)
		}
		if def.InputSchema == nil {
			t.Errorf("tool %q has no input schema", def.Name)
		}
		if def.Function == nil {
			t.Errorf("tool %q has no handler", def.Name)
		}
	}
}

func TestGenerateSchemaRequiredFields(t *testing.T) {
	schema := GenerateSchema[CalendarEventInput]()
	if schema.Properties == nil {
		t.Fatal("schema has no properties")
	}
	for _, name := range []string{"title", "starts_at"} {
		if _, ok := schema.Properties.Get(name); !ok {
			t.Errorf("schema missing property %q", name)
		}
	}
	required := map[string]bool{}
	for _, name := range schema.Required {
		required[name] = true
	}
	if !required["title"] || !required["starts_at"] {
		t.Errorf("required = %v, want title and starts_at", schema.Required)
	}
	if required["duration_minutes"] {
		t.Errorf("duration_minutes must be optional, required = %v", schema.Required)
	}
}
