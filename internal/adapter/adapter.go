// Package adapter defines the external capabilities the workflows consume:
// field extraction, proof/document validation, scoring, and object storage.
// The core treats all of them as opaque, possibly slow, possibly failing
// functions; callers bound every invocation with a timeout.
package adapter

import (
	"context"

	"samvaad.app/intake/internal/model"
)

// ExtractionResult is transient: the workflow merges Fields into its own state
// and re-derives the missing set itself rather than trusting Missing.
type ExtractionResult struct {
	Fields  map[string]string `json:"fields"`
	Missing []string          `json:"missing_fields"`
}

type ProofAnalysis struct {
	Valid       bool    `json:"valid"`
	Explanation string  `json:"explanation"`
	Confidence  float64 `json:"confidence"`
}

type DocumentAnalysis struct {
	Valid       bool              `json:"valid"`
	Extracted   map[string]string `json:"extracted"`
	Explanation string            `json:"explanation"`
}

// Extractor pulls structured field values out of free-form text.
type Extractor interface {
	Extract(ctx context.Context, text string, partial map[string]string, required []string) (*ExtractionResult, error)
}

// ProofValidator judges whether a work photo plausibly evidences the report.
type ProofValidator interface {
	ValidateProof(ctx context.Context, report model.DailyReport, mediaURL string) (*ProofAnalysis, error)
}

// DocumentAnalyzer validates an onboarding document and extracts profile
// fields from it.
type DocumentAnalyzer interface {
	AnalyzeDocument(ctx context.Context, mediaURL string) (*DocumentAnalysis, error)
}

// Scorer assigns a productivity score in [0, 10] to a finalized report.
type Scorer interface {
	Score(ctx context.Context, report model.DailyReport, analysis ProofAnalysis) (float64, error)
}

// ObjectStore uploads raw media and returns a stable URL.
type ObjectStore interface {
	Upload(ctx context.Context, ownerID int64, media model.Media) (string, error)
}
