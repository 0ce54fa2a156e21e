// Package gateway exposes the editor operations (continue, proofread, polish,
// summarize, document QA, chat and the connection test) on top of the
// provider adapters and the transport engine.
package gateway

import (
	"context"
	"fmt"
	"maps"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/AaronAust1n/wps-addin/config"
	ctxpkg "github.com/AaronAust1n/wps-addin/context"
	"github.com/AaronAust1n/wps-addin/llm"
	llmollama "github.com/AaronAust1n/wps-addin/llm/ollama"
	llmopenai "github.com/AaronAust1n/wps-addin/llm/openai"
	"github.com/AaronAust1n/wps-addin/transport"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Connection test messages.
const (
	MsgURLNotConfigured = "API URL is not configured"
	MsgURLInvalid       = "API URL is invalid"
	connectedFormat     = "connected (%dms)"
)

// Transport executes encoded calls. *transport.Engine implements it.
type Transport interface {
	Execute(ctx context.Context, call transport.Call) (*transport.Response, error)
}

// ConnectionResult reports the outcome of TestConnection.
type ConnectionResult struct {
	Success bool
	Message string
	// Model is the model the backend reported, or the requested one.
	Model   string
	Latency time.Duration
	// Err is set when Success is false.
	Err *llm.Error
}

// snapshot pairs a configuration with the adapter selected for it.
type snapshot struct {
	cfg     config.Configuration
	adapter llm.Adapter
}

// Client runs catalog operations. It is safe for concurrent use; every call
// works on the configuration that was current when it started.
type Client struct {
	logger     zerolog.Logger
	transport  Transport
	middleware llm.Chain
	current    atomic.Pointer[snapshot]
}

// NewClient creates a Client for settings. A nil transport gets a default
// engine.
func NewClient(logger zerolog.Logger, t Transport, settings config.Settings, middleware ...llm.Middleware) *Client {
	logger = logger.With().Str("component", "gateway").Logger()
	if t == nil {
		t = transport.NewEngine(transport.WithLogger(logger))
	}
	c := &Client{
		logger:     logger,
		transport:  t,
		middleware: llm.Chain(middleware),
	}
	c.UpdateConfiguration(settings)
	return c
}

// UpdateConfiguration replaces the held configuration. Calls already in
// flight keep the configuration they started with.
func (c *Client) UpdateConfiguration(settings config.Settings) {
	cfg := config.Normalize(settings)
	c.current.Store(&snapshot{
		cfg:     cfg,
		adapter: newAdapter(cfg.Provider),
	})

	c.logger.Info().
		Str("base_url", cfg.BaseURL).
		Str("provider", cfg.Provider.String()).
		Str("default_model", cfg.DefaultModel).
		Bool("has_api_key", cfg.APIKey != "").
		Msg("Configuration updated")
}

// Configuration returns a copy of the current configuration.
func (c *Client) Configuration() config.Configuration {
	cfg := c.current.Load().cfg
	cfg.Models = maps.Clone(cfg.Models)
	return cfg
}

func newAdapter(provider llm.ProviderKind) llm.Adapter {
	if provider.WireFormat() == llm.ProviderOllama {
		return llmollama.NewAdapter()
	}
	return llmopenai.NewAdapter(provider)
}

// ContinueText continues writing from text.
func (c *Client) ContinueText(ctx context.Context, text string) (string, error) {
	return c.content(ctx, llm.OperationContinue, Input{Text: text})
}

// ProofreadText corrects grammar and punctuation in text.
func (c *Client) ProofreadText(ctx context.Context, text string) (string, error) {
	return c.content(ctx, llm.OperationProofread, Input{Text: text})
}

// PolishText rewrites text in a more polished style.
func (c *Client) PolishText(ctx context.Context, text string) (string, error) {
	return c.content(ctx, llm.OperationPolish, Input{Text: text})
}

// SummarizeText summarizes a selection.
func (c *Client) SummarizeText(ctx context.Context, text string) (string, error) {
	return c.content(ctx, llm.OperationSummarize, Input{Text: text})
}

// SummarizeDocument produces a structured summary of a whole document.
func (c *Client) SummarizeDocument(ctx context.Context, text string) (string, error) {
	return c.content(ctx, llm.OperationSummarizeDocument, Input{Text: text})
}

// DocumentQA answers question using text as the document.
func (c *Client) DocumentQA(ctx context.Context, text, question string) (string, error) {
	return c.content(ctx, llm.OperationDocumentQA, Input{Text: text, Question: question})
}

// Chat sends a free-form conversation.
func (c *Client) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	return c.content(ctx, llm.OperationChat, Input{Messages: messages})
}

func (c *Client) content(ctx context.Context, kind llm.OperationKind, in Input) (string, error) {
	res, err := c.Run(ctx, kind, in)
	if err != nil {
		return "", err
	}
	return res.Content, nil
}

// TestConnection sends a minimal request and reports the round trip. It never
// returns an error; failures are described in the result.
func (c *Client) TestConnection(ctx context.Context) ConnectionResult {
	snap := c.current.Load()
	op, _ := Lookup(llm.OperationConnectionTest)

	if snap.cfg.BaseURL == "" {
		return failedConnection(op, llm.NewConfigurationError(MsgURLNotConfigured))
	}
	if u, err := url.Parse(snap.cfg.BaseURL); err != nil || u.Host == "" {
		return failedConnection(op, llm.NewConfigurationError(MsgURLInvalid))
	}

	res, err := c.execute(ctx, snap, op, Input{})
	if err != nil {
		return failedConnection(op, err)
	}

	return ConnectionResult{
		Success: true,
		Message: fmt.Sprintf(connectedFormat, res.Latency.Milliseconds()),
		Model:   res.Model,
		Latency: res.Latency,
	}
}

func failedConnection(op Operation, err *llm.Error) ConnectionResult {
	if err.Op == "" {
		err.Op = op.Label
	}
	return ConnectionResult{
		Success: false,
		Message: err.Message,
		Err:     err,
	}
}

// Run executes the catalog operation kind with in. Every error it returns is
// an *llm.Error labelled with the operation.
func (c *Client) Run(ctx context.Context, kind llm.OperationKind, in Input) (*llm.Result, error) {
	op, ok := Lookup(kind)
	if !ok {
		return nil, llm.NewConfigurationError(fmt.Sprintf("unknown operation %q", kind))
	}
	res, err := c.execute(ctx, c.current.Load(), op, in)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// execute runs one call against snap. It returns *llm.Error rather than error
// so callers never see a typed nil.
func (c *Client) execute(ctx context.Context, snap *snapshot, op Operation, in Input) (*llm.Result, *llm.Error) {
	cfg := snap.cfg
	maxTokens, temperature, timeout := op.Params(cfg)

	req := &llm.Request{
		ID:          uuid.NewString(),
		Operation:   op.Kind,
		Provider:    cfg.Provider,
		Model:       op.Model(cfg),
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	log := c.logger.With().
		Str("request_id", req.ID).
		Str("operation", op.Kind.String()).
		Str("provider", cfg.Provider.String()).
		Str("model", req.Model).
		Logger()

	if err := validate(cfg, op, req, in); err != nil {
		return nil, c.fail(ctx, log, op, req, err)
	}

	req.Messages = op.Messages(in)
	if op.WarnChars > 0 {
		if n := req.InputChars(); n > op.WarnChars {
			log.Warn().
				Int("input_chars", n).
				Int("warn_chars", op.WarnChars).
				Msg("Input is long and may be truncated by the model")
			ctxpkg.Debugf(ctx, "[%s] input has %d characters, the model may truncate it", op.Label, n)
		}
	}

	next, err := c.middleware.BeforeRequest(ctx, req)
	if err != nil {
		return nil, c.fail(ctx, log, op, req, err)
	}
	req = next

	path, body, err := snap.adapter.Encode(req)
	if err != nil {
		return nil, c.fail(ctx, log, op, req, err)
	}

	log.Debug().
		Str("path", path).
		Dur("timeout", timeout).
		Int("max_tokens", req.MaxTokens).
		Float64("temperature", req.Temperature).
		Msg("Sending request")
	ctxpkg.Debugf(ctx, "[%s] POST %s%s model=%s timeout=%s", op.Label, cfg.BaseURL, path, req.Model, timeout)

	start := time.Now()
	resp, err := c.transport.Execute(ctx, transport.Call{
		BaseURL: cfg.BaseURL,
		Path:    path,
		Body:    body,
		APIKey:  cfg.APIKey,
		Timeout: timeout,
		OnRetry: func(err error, attempt int, delay time.Duration) {
			log.Info().Err(err).Int("attempt", attempt).Dur("delay", delay).Msg("Retrying request")
			ctxpkg.Debugf(ctx, "[%s] no response (%v), attempt %d in %s", op.Label, err, attempt, delay)
		},
	})
	if err != nil {
		return nil, c.failWith(ctx, log, op, req, llm.Classify(err, snap.adapter.ErrorMessage))
	}

	res, err := snap.adapter.Decode(resp.Body)
	if err != nil {
		return nil, c.fail(ctx, log, op, req, err)
	}
	res.Latency = time.Since(start)
	res.Attempts = resp.Attempts
	if res.Model == "" {
		res.Model = req.Model
	}

	final, err := c.middleware.AfterResponse(ctx, req, res)
	if err != nil {
		return nil, c.fail(ctx, log, op, req, err)
	}
	res = final

	log.Info().
		Dur("latency", res.Latency).
		Int("attempts", res.Attempts).
		Int("output_chars", len([]rune(res.Content))).
		Msg("Request completed")
	ctxpkg.Debugf(ctx, "[%s] completed in %dms after %d attempt(s)", op.Label, res.Latency.Milliseconds(), res.Attempts)

	return res, nil
}

func validate(cfg config.Configuration, op Operation, req *llm.Request, in Input) error {
	if cfg.BaseURL == "" {
		return llm.NewConfigurationError(MsgURLNotConfigured)
	}
	if req.Model == "" {
		return llm.NewConfigurationError(fmt.Sprintf("no model configured for %s", op.Label))
	}
	if op.Kind == llm.OperationChat && len(in.Messages) == 0 {
		return llm.NewConfigurationError("chat requires at least one message")
	}
	return nil
}

func (c *Client) fail(ctx context.Context, log zerolog.Logger, op Operation, req *llm.Request, err error) *llm.Error {
	return c.failWith(ctx, log, op, req, llm.Classify(err, nil))
}

// failWith labels err with the operation, passes it through the OnError hooks
// and logs the final error.
func (c *Client) failWith(ctx context.Context, log zerolog.Logger, op Operation, req *llm.Request, err *llm.Error) *llm.Error {
	labelled := *err
	labelled.Op = op.Label

	final := c.middleware.OnError(ctx, req, &labelled)

	log.Error().
		Str("kind", string(final.Kind)).
		Int("status", final.StatusCode).
		Bool("retryable", final.Retryable).
		Err(final).
		Msg("Request failed")
	ctxpkg.Debugf(ctx, "[%s] failed: %v", op.Label, final)

	return final
}
