package tools

import (
	"context"
	"encoding/json"

	"github.com/invopop/jsonschema"

	"github.com/ramiro/assistant-core/internal/domain"
)

// ToolDefinition couples a tool name with its input schema and handler.
//
// Handlers receive the raw JSON argument object exactly as the run produced it
// plus the ambient conversation context, and return a JSON-serializable value.
// They should return an error rather than panic; the dispatcher records the
// error on the invocation and the round continues.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema *jsonschema.Schema
	Function    func(ctx context.Context, input json.RawMessage, call domain.Context) (any, error)
}

// GenerateSchema derives the JSON schema for a handler's input struct.
func GenerateSchema[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}
