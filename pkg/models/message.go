package models

// Message is one entry of a chat transcript.
type Message struct {
	Text   string `json:"text"`
	IsUser bool   `json:"isUser"`
}
