package tools

// Registry returns all tool definitions wired for the assistant.
func Registry() []ToolDefinition {
	return []ToolDefinition{
		CurrentDateDefinition,
		CalendarEventDefinition,
		RegisterOperationsDefinition,
		RequestQuoteDefinition,
	}
}
