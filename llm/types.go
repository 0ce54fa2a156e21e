package llm

import (
	"encoding/json"
	"time"
)

// MessageRole represents the role of a message in a conversation.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is a single provider-neutral conversation message.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// Request is the canonical, provider-agnostic form of one LLM call.
// It is built once per operation call and not modified after it has been encoded.
type Request struct {
	ID          string
	Operation   OperationKind
	Provider    ProviderKind
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// Result is the canonical outcome of a successful call.
type Result struct {
	Content string
	// Model is the model name reported by the backend. The gateway fills in
	// the requested model when the backend reports none.
	Model    string
	Latency  time.Duration
	Attempts int
}

// NewTextMessage creates a message with the given role and text.
func NewTextMessage(role MessageRole, text string) Message {
	return Message{Role: role, Content: text}
}

// SystemMessage creates a system message.
func SystemMessage(text string) Message {
	return NewTextMessage(RoleSystem, text)
}

// UserMessage creates a user message.
func UserMessage(text string) Message {
	return NewTextMessage(RoleUser, text)
}

// InputChars returns the number of characters across all non-system messages.
func (r *Request) InputChars() int {
	n := 0
	for _, m := range r.Messages {
		if m.Role == RoleSystem {
			continue
		}
		n += len([]rune(m.Content))
	}
	return n
}

// ToJSON marshals a message to JSON for debugging/logging purposes.
func (m Message) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}
