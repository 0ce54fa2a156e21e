package config

import (
	"strings"
	"time"

	"github.com/AaronAust1n/wps-addin/llm"
	"github.com/samber/lo"
)

// chatCompletionsPath is cut from user-entered URLs so that adapters can
// append their own endpoint paths.
const chatCompletionsPath = "/v1/chat/completions"

// ModelKey names a per-operation model setting.
type ModelKey string

const (
	ModelContinuation  ModelKey = "continuation"
	ModelProofread     ModelKey = "proofread"
	ModelPolish        ModelKey = "polish"
	ModelSummarization ModelKey = "summarization"
	ModelQA            ModelKey = "qa"
	ModelChat          ModelKey = "chat"
)

// Configuration is the normalized, read-only view of Settings that every call
// consumes. Build it with Normalize.
type Configuration struct {
	// BaseURL has an explicit scheme, no trailing slash and never contains
	// the chat-completions path.
	BaseURL      string
	APIKey       string
	Models       map[ModelKey]string
	DefaultModel string
	MaxTokens    int
	Temperature  float64
	// TimeoutOverride replaces the per-operation timeout when positive.
	TimeoutOverride time.Duration
	Provider        llm.ProviderKind
}

// NormalizeBaseURL cleans a user-entered API URL: whitespace is trimmed, a
// missing scheme becomes http://, anything from /v1/chat/completions on is
// dropped and trailing slashes are removed. Empty input stays empty.
func NormalizeBaseURL(raw string) string {
	u := strings.TrimSpace(raw)
	if u == "" {
		return ""
	}

	lower := strings.ToLower(u)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		u = "http://" + u
	}

	if idx := strings.Index(u, chatCompletionsPath); idx >= 0 {
		u = u[:idx]
	}

	return strings.TrimRight(u, "/")
}

// Normalize converts raw settings into a Configuration and classifies the
// provider. It never fails; malformed URLs are kept as they are.
func Normalize(s Settings) Configuration {
	baseURL := NormalizeBaseURL(s.APIURL)

	models := map[ModelKey]string{
		ModelContinuation:  s.Models.Continuation,
		ModelProofread:     s.Models.Proofread,
		ModelPolish:        s.Models.Polish,
		ModelSummarization: s.Models.Summarization,
		ModelQA:            s.Models.QA,
		ModelChat:          s.Models.Chat,
	}
	models = lo.PickBy(models, func(_ ModelKey, name string) bool {
		return strings.TrimSpace(name) != ""
	})

	var timeout time.Duration
	if s.Timeout > 0 {
		timeout = time.Duration(s.Timeout) * time.Second
	}

	return Configuration{
		BaseURL:         baseURL,
		APIKey:          strings.TrimSpace(s.APIKey),
		Models:          models,
		DefaultModel:    strings.TrimSpace(s.Models.Default),
		MaxTokens:       s.Options.MaxTokens,
		Temperature:     s.Options.Temperature,
		TimeoutOverride: timeout,
		Provider:        llm.DetectProvider(baseURL),
	}
}

// Model returns the model configured for key, falling back to DefaultModel.
func (c Configuration) Model(key ModelKey) string {
	return lo.CoalesceOrEmpty(strings.TrimSpace(c.Models[key]), c.DefaultModel)
}

// AuthorizationHeader returns the bearer header value, or "" without a key.
func (c Configuration) AuthorizationHeader() string {
	if c.APIKey == "" {
		return ""
	}
	return "Bearer " + c.APIKey
}
