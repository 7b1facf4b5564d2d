package model

import "time"

// VerificationStatus transitions are monotonic within the intake core:
// collecting_profile → collecting_documents → pending_review → verified.
// The final step to verified happens in an external review process; this core
// only ever advances as far as pending_review.
type VerificationStatus string

const (
	VerificationCollectingProfile   VerificationStatus = "collecting_profile"
	VerificationCollectingDocuments VerificationStatus = "collecting_documents"
	VerificationPendingReview       VerificationStatus = "pending_review"
	VerificationVerified            VerificationStatus = "verified"
)

// Profile field names as the extraction adapter knows them.
const (
	FieldCompanyName   = "companyName"
	FieldLicenseNumber = "licenseNumber"
	FieldGST           = "gst"
	FieldCategory      = "category"
)

// ProfileRequiredFields is the minimal field set an onboarding profile needs.
// Order matters: it doubles as the question order.
var ProfileRequiredFields = []string{FieldCompanyName, FieldLicenseNumber, FieldGST, FieldCategory}

// ContractorProfile is the partial record a contractor fills over a
// conversation, by text or by document extraction.
type ContractorProfile struct {
	CompanyName   *string `json:"company_name,omitempty"`
	LicenseNumber *string `json:"license_number,omitempty"`
	GST           *string `json:"gst,omitempty"`
	Category      *string `json:"category,omitempty"`
}

// Field returns a pointer to the named field's value, nil if unset or unknown.
func (p *ContractorProfile) Field(name string) *string {
	switch name {
	case FieldCompanyName:
		return p.CompanyName
	case FieldLicenseNumber:
		return p.LicenseNumber
	case FieldGST:
		return p.GST
	case FieldCategory:
		return p.Category
	default:
		return nil
	}
}

func (p *ContractorProfile) setField(name, value string) {
	switch name {
	case FieldCompanyName:
		p.CompanyName = &value
	case FieldLicenseNumber:
		p.LicenseNumber = &value
	case FieldGST:
		p.GST = &value
	case FieldCategory:
		p.Category = &value
	}
}

// Merge applies the named merge contract for text extraction: the last
// non-null value wins per field.
func (p *ContractorProfile) Merge(fields map[string]string) {
	for name, value := range fields {
		if value == "" {
			continue
		}
		p.setField(name, value)
	}
}

// MergeMissing fills only fields that are still null. Document extraction is
// subtractive: a field the contractor already supplied is never overwritten,
// it just stops being asked for.
func (p *ContractorProfile) MergeMissing(fields map[string]string) {
	for name, value := range fields {
		if value == "" {
			continue
		}
		if existing := p.Field(name); existing != nil && *existing != "" {
			continue
		}
		p.setField(name, value)
	}
}

// MissingFields is always exactly (required fields) minus (fields with a
// non-null value). Derived, never independently set.
func (p *ContractorProfile) MissingFields() []string {
	return missingFields(ProfileRequiredFields, p.Field)
}

// ContractorState is the lifetime-scoped conversation state for onboarding.
// Documents is append-only until finalization.
type ContractorState struct {
	UserID    int64              `json:"user_id"`
	Profile   ContractorProfile  `json:"profile"`
	Documents []string           `json:"documents,omitempty"` // media URLs, in arrival order
	Missing   []string           `json:"missing_fields"`
	Status    VerificationStatus `json:"verification_status"`
}

// NewContractorState returns the default-initialized onboarding state.
func NewContractorState(userID int64) *ContractorState {
	return &ContractorState{
		UserID:  userID,
		Missing: append([]string(nil), ProfileRequiredFields...),
		Status:  VerificationCollectingProfile,
	}
}

// RecomputeMissing re-derives Missing from the profile.
func (s *ContractorState) RecomputeMissing() {
	s.Missing = s.Profile.MissingFields()
}

// ContractorProfileRecord is the finalized, persisted onboarding output.
// Write-once per user; re-finalization upserts the same row.
type ContractorProfileRecord struct {
	ID                 int64              `json:"id"`
	UserID             int64              `json:"user_id"`
	CompanyName        string             `json:"company_name"`
	LicenseNumber      string             `json:"license_number"`
	GST                string             `json:"gst"`
	Category           string             `json:"category"`
	DocumentURLs       []string           `json:"document_urls"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	CreatedAt          time.Time          `json:"created_at"`
}
