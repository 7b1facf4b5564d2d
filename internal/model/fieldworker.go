package model

import "time"

// ReportStatus transitions are monotonic within the intake core:
// collecting → awaiting_proof → complete. There is no automatic regression;
// a new calendar day starts a fresh state instead.
type ReportStatus string

const (
	ReportStatusCollecting    ReportStatus = "collecting"
	ReportStatusAwaitingProof ReportStatus = "awaiting_proof"
	ReportStatusComplete      ReportStatus = "complete"
)

// Report field names as the extraction adapter knows them.
const (
	FieldDescription = "description"
	FieldSite        = "site"
	FieldHours       = "hours"
	FieldBlockers    = "blockers"
)

// ReportRequiredFields is the minimal field set a daily report needs before
// the workflow advances to proof collection. Order matters: it doubles as the
// question order.
var ReportRequiredFields = []string{FieldDescription, FieldSite, FieldHours}

// DailyReport is the partial record a field worker fills over a conversation.
// Blockers is optional and never blocks progression.
type DailyReport struct {
	Description *string `json:"description,omitempty"`
	Site        *string `json:"site,omitempty"`
	Hours       *string `json:"hours,omitempty"`
	Blockers    *string `json:"blockers,omitempty"`
}

// Field returns a pointer to the named field's value, nil if unset or unknown.
func (r *DailyReport) Field(name string) *string {
	switch name {
	case FieldDescription:
		return r.Description
	case FieldSite:
		return r.Site
	case FieldHours:
		return r.Hours
	case FieldBlockers:
		return r.Blockers
	default:
		return nil
	}
}

func (r *DailyReport) setField(name, value string) {
	switch name {
	case FieldDescription:
		r.Description = &value
	case FieldSite:
		r.Site = &value
	case FieldHours:
		r.Hours = &value
	case FieldBlockers:
		r.Blockers = &value
	}
}

// Merge applies the named merge contract: the last non-null value wins per
// field. Empty values never clobber known ones.
func (r *DailyReport) Merge(fields map[string]string) {
	for name, value := range fields {
		if value == "" {
			continue
		}
		r.setField(name, value)
	}
}

// MissingFields is always exactly (required fields) minus (fields with a
// non-null value). It is derived, never independently set.
func (r *DailyReport) MissingFields() []string {
	return missingFields(ReportRequiredFields, r.Field)
}

// FieldWorkerState is the per-(user, date) conversation state for the daily
// report workflow. Proofs is append-only until finalization.
type FieldWorkerState struct {
	UserID    int64        `json:"user_id"`
	ScopeDate string       `json:"scope_date"` // YYYY-MM-DD
	Report    DailyReport  `json:"report"`
	Proofs    []string     `json:"proofs,omitempty"` // media URLs, in arrival order
	Missing   []string     `json:"missing_fields"`
	Status    ReportStatus `json:"status"`
}

// NewFieldWorkerState returns the default-initialized state for a scope key:
// all report fields null, the full required set missing, status collecting.
func NewFieldWorkerState(userID int64, scopeDate string) *FieldWorkerState {
	return &FieldWorkerState{
		UserID:    userID,
		ScopeDate: scopeDate,
		Missing:   append([]string(nil), ReportRequiredFields...),
		Status:    ReportStatusCollecting,
	}
}

// RecomputeMissing re-derives Missing from the report. Callers must invoke it
// after every merge; the stored value exists for observability only.
func (s *FieldWorkerState) RecomputeMissing() {
	s.Missing = s.Report.MissingFields()
}

// DailyReportRecord is the finalized, persisted output of the daily report
// workflow. Write-once per (user, date); re-finalization upserts the same row.
type DailyReportRecord struct {
	ID                int64     `json:"id"`
	UserID            int64     `json:"user_id"`
	ReportDate        string    `json:"report_date"` // YYYY-MM-DD
	Description       string    `json:"description"`
	Site              string    `json:"site"`
	Hours             string    `json:"hours"`
	Blockers          *string   `json:"blockers,omitempty"`
	ProofURLs         []string  `json:"proof_urls"`
	ProductivityScore float64   `json:"productivity_score"`
	CreatedAt         time.Time `json:"created_at"`
}

func missingFields(required []string, get func(string) *string) []string {
	missing := make([]string, 0, len(required))
	for _, name := range required {
		if v := get(name); v == nil || *v == "" {
			missing = append(missing, name)
		}
	}
	return missing
}
