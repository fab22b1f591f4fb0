package domain

import "time"

// ChatMessage is one turn of a document conversation, supplied by the client.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type QAAnswer struct {
	DocumentID string    `json:"document_id"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
}

type ChatReply struct {
	DocumentID    string    `json:"document_id"`
	Message       string    `json:"message"`
	FromAssistant bool      `json:"is_from_assistant"`
	Timestamp     time.Time `json:"timestamp"`
}
