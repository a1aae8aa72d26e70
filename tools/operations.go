package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/ramiro/assistant-core/internal/domain"
)

type Operation struct {
	Concept  string  `json:"concept" jsonschema_description:"What the operation was for."`
	Amount   float64 `json:"amount" jsonschema_description:"Signed amount; negative for expenses."`
	Category string  `json:"category,omitempty" jsonschema_description:"Free-form category label."`
}

type RegisterOperationsInput struct {
	Operations []Operation `json:"operations" jsonschema_description:"Operations to record."`
}

var RegisterOperationsDefinition = ToolDefinition{
	Name:        "register_operations",
	Description: "Record one or more financial operations mentioned in the conversation.",
	InputSchema: RegisterOperationsInputSchema,
	Function:    RegisterOperations,
}

var RegisterOperationsInputSchema = GenerateSchema[RegisterOperationsInput]()

func RegisterOperations(_ context.Context, input json.RawMessage, _ domain.Context) (any, error) {
	var in RegisterOperationsInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, err
	}
	if len(in.Operations) == 0 {
		return nil, fmt.Errorf("register operations: no operations given")
	}

	recorded := make([]map[string]any, 0, len(in.Operations))
	for _, op := range in.Operations {
		recorded = append(recorded, map[string]any{
			"operation_id": uuid.New(),
			"concept":      op.Concept,
			"amount":       op.Amount,
			"category":     op.Category,
		})
	}
	return map[string]any{
		"result":     fmt.Sprintf("recorded %d operations", len(recorded)),
		"operations": recorded,
	}, nil
}
