package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"samvaad.app/intake/common/llm"
)

const extractionSystemPrompt = `You extract structured field values from informal chat messages sent by municipal field staff and contractors. Messages may be in English, Hindi, or a mix.

Rules:
- Only fill a field when the message actually states its value. Never invent values.
- Return values verbatim where possible; normalize numbers to plain digits.
- A field not mentioned in the message must be returned as an empty string.`

type extractionResponse struct {
	Fields map[string]string `json:"fields" jsonschema_description:"Field name to extracted value; empty string when the message does not supply the field"`
}

type llmExtractor struct {
	client llm.Client
}

// NewLLMExtractor returns an Extractor backed by a structured-output LLM call.
func NewLLMExtractor(client llm.Client) Extractor {
	return &llmExtractor{client: client}
}

func (e *llmExtractor) Extract(ctx context.Context, text string, partial map[string]string, required []string) (*ExtractionResult, error) {
	known, err := json.Marshal(partial)
	if err != nil {
		return nil, fmt.Errorf("marshal partial record: %w", err)
	}

	prompt := fmt.Sprintf(
		"Fields to extract: %s\nAlready known (do not re-extract unless the message updates them): %s\n\nMessage:\n%s",
		strings.Join(required, ", "), known, text,
	)

	var resp extractionResponse
	if _, err := e.client.Chat(ctx, llm.Request{
		SystemPrompt: extractionSystemPrompt,
		UserPrompt:   prompt,
		SchemaName:   "field_extraction",
		Schema:       llm.GenerateSchema[extractionResponse](),
		Temperature:  llm.Temp(0),
	}, &resp); err != nil {
		return nil, fmt.Errorf("extracting fields: %w", err)
	}

	result := &ExtractionResult{Fields: map[string]string{}}
	for name, value := range resp.Fields {
		if value == "" {
			continue
		}
		result.Fields[name] = value
	}
	for _, name := range required {
		if _, ok := result.Fields[name]; ok {
			continue
		}
		if v, ok := partial[name]; ok && v != "" {
			continue
		}
		result.Missing = append(result.Missing, name)
	}

	slog.DebugContext(ctx, "extraction completed",
		"extracted", len(result.Fields),
		"missing", len(result.Missing))
	return result, nil
}
