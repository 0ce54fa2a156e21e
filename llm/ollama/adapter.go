// Package ollama translates canonical requests to Ollama's native generate API.
package ollama

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/AaronAust1n/wps-addin/llm"
	"github.com/ollama/ollama/api"
	"github.com/samber/lo"
)

// GeneratePath is the endpoint, relative to the base URL, for completions.
const GeneratePath = "/api/generate"

// Adapter implements llm.Adapter for Ollama.
type Adapter struct{}

// NewAdapter creates an Ollama adapter.
func NewAdapter() *Adapter {
	return &Adapter{}
}

// Provider implements llm.Adapter.
func (a *Adapter) Provider() llm.ProviderKind {
	return llm.ProviderOllama
}

// Encode implements llm.Adapter. The generate endpoint takes a single prompt,
// so message contents are joined with newlines and their roles dropped.
func (a *Adapter) Encode(req *llm.Request) (string, []byte, error) {
	if req == nil {
		return "", nil, fmt.Errorf("request is required")
	}

	stream := false
	genReq := api.GenerateRequest{
		Model:  req.Model,
		Prompt: Prompt(req.Messages),
		Stream: &stream,
		Options: map[string]any{
			"temperature": req.Temperature,
			"num_predict": req.MaxTokens,
		},
	}

	body, err := json.Marshal(genReq)
	if err != nil {
		return "", nil, fmt.Errorf("failed to marshal generate request: %w", err)
	}
	return GeneratePath, body, nil
}

// Decode implements llm.Adapter. A body without a "response" field yields
// empty content rather than an error.
func (a *Adapter) Decode(body []byte) (*llm.Result, error) {
	var genResp api.GenerateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return nil, llm.NewMalformedResponseError("invalid generate JSON", body, err)
	}
	return &llm.Result{
		Content: genResp.Response,
		Model:   genResp.Model,
	}, nil
}

// ErrorMessage implements llm.Adapter. Ollama reports errors as {"error": "..."}.
func (a *Adapter) ErrorMessage(body []byte) string {
	var statusErr api.StatusError
	if err := json.Unmarshal(body, &statusErr); err != nil {
		return ""
	}
	return statusErr.ErrorMessage
}

// Prompt flattens messages into a single generate prompt.
func Prompt(msgs []llm.Message) string {
	return strings.Join(lo.Map(msgs, func(m llm.Message, _ int) string {
		return m.Content
	}), "\n")
}

var _ llm.Adapter = (*Adapter)(nil)
