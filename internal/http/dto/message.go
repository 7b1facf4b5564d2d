package dto

// IngestMessageRequest is the normalized envelope a channel adapter posts.
type IngestMessageRequest struct {
	Channel           string    `json:"channel" binding:"required"`
	SenderID          string    `json:"sender_id" binding:"required"`
	SenderName        string    `json:"sender_name"`
	Text              string    `json:"text"`
	Media             *Media    `json:"media"`
	Location          *Location `json:"location"`
	ExternalMessageID string    `json:"external_message_id" binding:"required"`
}

type Media struct {
	MimeType string `json:"mime_type" binding:"required"`
	URL      string `json:"url"`
	Data     []byte `json:"data"`
	Filename string `json:"filename"`
}

type Location struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Name    string  `json:"name"`
	Address string  `json:"address"`
}

type IngestMessageResponse struct {
	MessageID  int64 `json:"message_id"`
	Enqueued   bool  `json:"enqueued"`
	Duplicated bool  `json:"duplicated"`
}
