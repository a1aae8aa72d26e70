package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/ramiro/assistant-core/internal/domain"
)

type RequestQuoteInput struct {
	Service  string `json:"service" jsonschema_description:"Service or product the quote is for."`
	Quantity int    `json:"quantity,omitempty" jsonschema_description:"Requested quantity; defaults to 1."`
	Notes    string `json:"notes,omitempty" jsonschema_description:"Extra detail for the sales follow-up."`
}

var RequestQuoteDefinition = ToolDefinition{
	Name:        "request_quote",
	Description: "Open a quote request on behalf of the conversation's participant.",
	InputSchema: RequestQuoteInputSchema,
	Function:    RequestQuote,
}

var RequestQuoteInputSchema = GenerateSchema[RequestQuoteInput]()

func RequestQuote(_ context.Context, input json.RawMessage, call domain.Context) (any, error) {
	var in RequestQuoteInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, err
	}
	if in.Service == "" {
		return nil, fmt.Errorf("quote request: service is required")
	}

	quantity := in.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	return map[string]any{
		"quote_id":     uuid.New(),
		"service":      in.Service,
		"quantity":     quantity,
		"notes":        in.Notes,
		"requested_by": call.ParticipantRef,
		"status":       "received",
	}, nil
}
