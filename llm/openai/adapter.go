// Package openai translates canonical requests to the OpenAI chat-completions
// wire format. vLLM and llama.cpp servers are served by the same adapter.
package openai

import (
	"encoding/json"
	"fmt"

	"github.com/AaronAust1n/wps-addin/llm"
	"github.com/samber/lo"
	openai "github.com/sashabaranov/go-openai"
)

// ChatCompletionsPath is the endpoint, relative to the base URL, for chat completions.
const ChatCompletionsPath = "/v1/chat/completions"

// Adapter implements llm.Adapter for OpenAI-compatible servers.
type Adapter struct {
	provider llm.ProviderKind
}

// NewAdapter creates an Adapter for the given provider kind. The kind only
// labels the adapter; the wire format is the same for all of them.
func NewAdapter(provider llm.ProviderKind) *Adapter {
	if provider == "" {
		provider = llm.ProviderOpenAICompatible
	}
	return &Adapter{provider: provider}
}

// Provider implements llm.Adapter.
func (a *Adapter) Provider() llm.ProviderKind {
	return a.provider
}

// Encode implements llm.Adapter.
func (a *Adapter) Encode(req *llm.Request) (string, []byte, error) {
	if req == nil {
		return "", nil, fmt.Errorf("request is required")
	}

	chatReq := openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    ToOpenAIMessages(req.Messages),
		MaxTokens:   req.MaxTokens,
		Temperature: float32(req.Temperature),
	}

	body, err := json.Marshal(chatReq)
	if err != nil {
		return "", nil, fmt.Errorf("failed to marshal chat completion request: %w", err)
	}
	return ChatCompletionsPath, body, nil
}

// Decode implements llm.Adapter.
func (a *Adapter) Decode(body []byte) (*llm.Result, error) {
	var chatResp openai.ChatCompletionResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, llm.NewMalformedResponseError("invalid chat completion JSON", body, err)
	}

	if len(chatResp.Choices) == 0 {
		return nil, llm.NewMalformedResponseError("no choices in response", body, nil)
	}

	return &llm.Result{
		Content: chatResp.Choices[0].Message.Content,
		Model:   chatResp.Model,
	}, nil
}

// ErrorMessage implements llm.Adapter. OpenAI-compatible servers report
// errors as {"error": {"message": "..."}}.
func (a *Adapter) ErrorMessage(body []byte) string {
	var errResp openai.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error == nil {
		return ""
	}
	return errResp.Error.Message
}

// ToOpenAIMessages converts llm.Messages to OpenAI chat message format.
func ToOpenAIMessages(msgs []llm.Message) []openai.ChatCompletionMessage {
	return lo.Map(msgs, func(msg llm.Message, _ int) openai.ChatCompletionMessage {
		return ToOpenAIMessage(msg)
	})
}

// ToOpenAIMessage converts a single llm.Message to OpenAI format.
func ToOpenAIMessage(msg llm.Message) openai.ChatCompletionMessage {
	var role string
	switch msg.Role {
	case llm.RoleSystem:
		role = openai.ChatMessageRoleSystem
	case llm.RoleAssistant:
		role = openai.ChatMessageRoleAssistant
	default:
		role = openai.ChatMessageRoleUser
	}
	return openai.ChatCompletionMessage{
		Role:    role,
		Content: msg.Content,
	}
}

var _ llm.Adapter = (*Adapter)(nil)
