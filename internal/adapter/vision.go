package adapter

import (
	"context"
	"fmt"

	"samvaad.app/intake/common/llm"
	"samvaad.app/intake/internal/model"
)

const proofSystemPrompt = `You review photos submitted by municipal field workers as evidence of completed work. Judge whether the photo plausibly shows the reported work. Be lenient about photo quality, strict about obvious mismatches (screenshots, unrelated scenes, stock photos).`

const documentSystemPrompt = `You review business documents (licenses, GST certificates, registration papers) submitted by contractors during onboarding. Judge validity and extract any of the requested fields the document shows. Only extract values that are legible in the document. A field not present must be returned as an empty string.`

type proofResponse struct {
	Valid       bool    `json:"valid" jsonschema_description:"Whether the photo plausibly evidences the reported work"`
	Explanation string  `json:"explanation" jsonschema_description:"One or two sentences a citizen-facing bot can relay"`
	Confidence  float64 `json:"confidence" jsonschema_description:"Confidence in the verdict, 0 to 1"`
}

type documentResponse struct {
	Valid         bool   `json:"valid"`
	Explanation   string `json:"explanation"`
	CompanyName   string `json:"companyName" jsonschema_description:"Registered company name, empty if not shown"`
	LicenseNumber string `json:"licenseNumber" jsonschema_description:"License number, empty if not shown"`
	GST           string `json:"gst" jsonschema_description:"GSTIN, empty if not shown"`
	Category      string `json:"category" jsonschema_description:"Work category, empty if not shown"`
}

type VisionAnalyzer struct {
	client llm.Client
}

// NewVisionAnalyzer returns proof and document validation backed by a
// vision-capable LLM. One instance serves both interfaces.
func NewVisionAnalyzer(client llm.Client) *VisionAnalyzer {
	return &VisionAnalyzer{client: client}
}

var (
	_ ProofValidator   = (*VisionAnalyzer)(nil)
	_ DocumentAnalyzer = (*VisionAnalyzer)(nil)
)

func (v *VisionAnalyzer) ValidateProof(ctx context.Context, report model.DailyReport, mediaURL string) (*ProofAnalysis, error) {
	prompt := fmt.Sprintf(
		"Reported work:\n- description: %s\n- site: %s\n- hours: %s\n\nDoes the attached photo plausibly evidence this work?",
		deref(report.Description), deref(report.Site), deref(report.Hours),
	)

	var resp proofResponse
	if _, err := v.client.Chat(ctx, llm.Request{
		SystemPrompt: proofSystemPrompt,
		UserPrompt:   prompt,
		ImageURL:     mediaURL,
		SchemaName:   "proof_validation",
		Schema:       llm.GenerateSchema[proofResponse](),
		Temperature:  llm.Temp(0),
	}, &resp); err != nil {
		return nil, fmt.Errorf("validating proof: %w", err)
	}

	return &ProofAnalysis{
		Valid:       resp.Valid,
		Explanation: resp.Explanation,
		Confidence:  clamp(resp.Confidence, 0, 1),
	}, nil
}

func (v *VisionAnalyzer) AnalyzeDocument(ctx context.Context, mediaURL string) (*DocumentAnalysis, error) {
	var resp documentResponse
	if _, err := v.client.Chat(ctx, llm.Request{
		SystemPrompt: documentSystemPrompt,
		UserPrompt:   "Review the attached onboarding document and extract companyName, licenseNumber, gst, and category where shown.",
		ImageURL:     mediaURL,
		SchemaName:   "document_analysis",
		Schema:       llm.GenerateSchema[documentResponse](),
		Temperature:  llm.Temp(0),
	}, &resp); err != nil {
		return nil, fmt.Errorf("analyzing document: %w", err)
	}

	extracted := map[string]string{}
	for name, value := range map[string]string{
		model.FieldCompanyName:   resp.CompanyName,
		model.FieldLicenseNumber: resp.LicenseNumber,
		model.FieldGST:           resp.GST,
		model.FieldCategory:      resp.Category,
	} {
		if value != "" {
			extracted[name] = value
		}
	}

	return &DocumentAnalysis{
		Valid:       resp.Valid,
		Extracted:   extracted,
		Explanation: resp.Explanation,
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
