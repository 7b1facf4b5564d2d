package model

// Envelope is the channel-agnostic normalized form of one inbound chat event.
// Channel adapters (WhatsApp, Telegram, ...) produce it; the core never sees
// the wire protocol. Immutable, one per inbound event.
type Envelope struct {
	Channel           string    `json:"channel"`
	SenderID          string    `json:"sender_id"` // channel-scoped sender identifier
	SenderName        string    `json:"sender_name"`
	Text              string    `json:"text,omitempty"`
	Media             *Media    `json:"media,omitempty"`
	Location          *Location `json:"location,omitempty"`
	ExternalMessageID string    `json:"external_message_id"`
}

// Media carries either raw bytes or a fetchable URL, never both required.
type Media struct {
	MimeType string `json:"mime_type"`
	URL      string `json:"url,omitempty"`
	Data     []byte `json:"data,omitempty"`
	Filename string `json:"filename"`
}

type Location struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Name    string  `json:"name,omitempty"`
	Address string  `json:"address,omitempty"`
}

// Reply is the normalized outbound message handed back to the channel adapter.
type Reply struct {
	Text        string       `json:"text"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

type Attachment struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}
