package dto

import "time"

type DailyReportResponse struct {
	ID                int64     `json:"id"`
	UserID            int64     `json:"user_id"`
	ReportDate        string    `json:"report_date"`
	Description       string    `json:"description"`
	Site              string    `json:"site"`
	Hours             string    `json:"hours"`
	Blockers          *string   `json:"blockers,omitempty"`
	ProofURLs         []string  `json:"proof_urls"`
	ProductivityScore float64   `json:"productivity_score"`
	CreatedAt         time.Time `json:"created_at"`
}

type ConversationEntryResponse struct {
	ID        int64     `json:"id"`
	UserID    *int64    `json:"user_id,omitempty"`
	Direction string    `json:"direction"`
	Text      string    `json:"text"`
	MediaURL  *string   `json:"media_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type ConversationHistoryResponse struct {
	Channel  string                      `json:"channel"`
	SenderID string                      `json:"sender_id"`
	Entries  []ConversationEntryResponse `json:"entries"`
}

type ContractorProfileResponse struct {
	ID                 int64     `json:"id"`
	UserID             int64     `json:"user_id"`
	CompanyName        string    `json:"company_name"`
	LicenseNumber      string    `json:"license_number"`
	GST                string    `json:"gst"`
	Category           string    `json:"category"`
	DocumentURLs       []string  `json:"document_urls"`
	VerificationStatus string    `json:"verification_status"`
	CreatedAt          time.Time `json:"created_at"`
}
