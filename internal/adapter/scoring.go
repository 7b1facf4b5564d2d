package adapter

import (
	"context"
	"fmt"

	"samvaad.app/intake/common/llm"
	"samvaad.app/intake/internal/model"
)

const scoringSystemPrompt = `You score the day's work of a municipal field worker on a 0-10 productivity scale, given their report and the verdict on their photographic proof. Consider hours worked, clarity of the report, and proof confidence. Typical honest days land between 5 and 8.`

type scoreResponse struct {
	Score     float64 `json:"score" jsonschema_description:"Productivity score from 0 to 10"`
	Rationale string  `json:"rationale" jsonschema_description:"One sentence justification"`
}

type llmScorer struct {
	client llm.Client
}

// NewLLMScorer returns a Scorer backed by a structured-output LLM call.
func NewLLMScorer(client llm.Client) Scorer {
	return &llmScorer{client: client}
}

func (s *llmScorer) Score(ctx context.Context, report model.DailyReport, analysis ProofAnalysis) (float64, error) {
	prompt := fmt.Sprintf(
		"Report:\n- description: %s\n- site: %s\n- hours: %s\n- blockers: %s\n\nProof verdict: valid=%t confidence=%.2f (%s)",
		deref(report.Description), deref(report.Site), deref(report.Hours), deref(report.Blockers),
		analysis.Valid, analysis.Confidence, analysis.Explanation,
	)

	var resp scoreResponse
	if _, err := s.client.Chat(ctx, llm.Request{
		SystemPrompt: scoringSystemPrompt,
		UserPrompt:   prompt,
		SchemaName:   "productivity_score",
		Schema:       llm.GenerateSchema[scoreResponse](),
		Temperature:  llm.Temp(0),
	}, &resp); err != nil {
		return 0, fmt.Errorf("scoring report: %w", err)
	}

	return clamp(resp.Score, 0, 10), nil
}
