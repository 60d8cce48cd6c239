package model

import "time"

// Message represents a single turn sent to a provider
type Message struct {
	Role      string
	Content   string
	Timestamp time.Time
}

// ChatMessage is one entry of the host chat history.
// ID is the position of the message in the chat, starting at 0.
type ChatMessage struct {
	ID   int
	Role string
	Text string
}

// IsAssistant reports whether the message was produced by the character/model.
func (m ChatMessage) IsAssistant() bool {
	return m.Role == "assistant"
}
