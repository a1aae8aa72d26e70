package tools

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ramiro/assistant-core/internal/domain"
)

type CurrentDateInput struct {
	Timezone string `json:"timezone,omitempty" jsonschema_description:"IANA timezone name; defaults to UTC."`
}

var CurrentDateDefinition = ToolDefinition{
	Name:        "get_current_date",
	Description: "Return today's date so the assistant can resolve relative expressions like 'tomorrow'.",
	InputSchema: CurrentDateInputSchema,
	Function:    CurrentDate,
}

var CurrentDateInputSchema = GenerateSchema[CurrentDateInput]()

func CurrentDate(_ context.Context, input json.RawMessage, _ domain.Context) (any, error) {
	var in CurrentDateInput
	if len(input) > 0 {
		if err := json.Unmarshal(input, &in); err != nil {
			return nil, err
		}
	}

	loc := time.UTC
	if in.Timezone != "" {
		parsed, err := time.LoadLocation(in.Timezone)
		if err == nil {
			loc = parsed
		}
	}

	today := time.Now().In(loc).Format("2006-01-02")
	return map[string]any{"result": "today's date is " + today}, nil
}
