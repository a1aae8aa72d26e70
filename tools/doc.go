// Package tools defines tool contracts and the handlers an assistant run can
// request.
//
// Includes:
//   - ToolDefinition: name, description, JSON input schema, handler.
//   - GenerateSchema[T](): derive JSON Schema from Go structs.
//   - Handlers: get_current_date, create_calendar_event, register_operations,
//     request_quote.
//   - Handlers return any JSON-serializable value; the dispatcher owns
//     sanitization and persistence of the result.
package tools
