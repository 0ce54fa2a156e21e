package gateway

import (
	"fmt"
	"time"

	"github.com/AaronAust1n/wps-addin/config"
	"github.com/AaronAust1n/wps-addin/llm"
	"github.com/samber/lo"
)

// Timeouts per operation family.
const (
	ConnectionTestTimeout    = 10 * time.Second
	GenerationTimeout        = 60 * time.Second
	DocumentQATimeout        = 120 * time.Second
	SummarizeDocumentTimeout = 180 * time.Second
)

const (
	connectionTestMaxTokens = 10
	connectionTestPrompt    = `回复"连接测试成功"确认API连接`
)

// Input is the caller-supplied material for an operation.
type Input struct {
	Text     string
	Question string
	// Messages is only used by chat.
	Messages []llm.Message
}

// Operation is a fixed catalog entry: system prompt, model lookup key,
// generation defaults and timeout.
type Operation struct {
	Kind         llm.OperationKind
	Label        string
	SystemPrompt string
	// ModelKey is empty for the connection test, which uses the default model.
	ModelKey    config.ModelKey
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
	// WarnChars is the input size above which a truncation warning is logged.
	// Zero disables the warning.
	WarnChars int
	// Prompt renders the user message. Nil for chat.
	Prompt func(in Input) string
}

var catalog = []Operation{
	{
		Kind:         llm.OperationContinue,
		Label:        "Continue",
		SystemPrompt: "你是一个专业的文字助手，你的任务是根据用户提供的上下文继续写作，保持风格一致，输出流畅自然。",
		ModelKey:     config.ModelContinuation,
		MaxTokens:    1500,
		Temperature:  0.7,
		Timeout:      GenerationTimeout,
		WarnChars:    4000,
		Prompt: func(in Input) string {
			return fmt.Sprintf("请基于以下上下文，继续写作：\n\n%s\n\n续写：", in.Text)
		},
	},
	{
		Kind:         llm.OperationProofread,
		Label:        "Proofread",
		SystemPrompt: "你是一个专业的文字校对助手，检查并修正文本中的语法错误、标点错误和用词不当，同时保持原文的风格和意思。",
		ModelKey:     config.ModelProofread,
		MaxTokens:    2000,
		Temperature:  0.3,
		Timeout:      GenerationTimeout,
		WarnChars:    6000,
		Prompt: func(in Input) string {
			return "请对以下文本进行校对修正，修正语法和标点符号错误，使表达更通顺准确：\n\n" + in.Text
		},
	},
	{
		Kind:         llm.OperationPolish,
		Label:        "Polish",
		SystemPrompt: "你是一个专业的文字润色助手，帮助用户改进文本表达，使其更加优美、专业和有说服力，同时保持原意不变。",
		ModelKey:     config.ModelPolish,
		MaxTokens:    2000,
		Temperature:  0.5,
		Timeout:      GenerationTimeout,
		WarnChars:    6000,
		Prompt: func(in Input) string {
			return "请对以下文本进行润色改进，使表达更加优美、专业，但保持原意不变：\n\n" + in.Text
		},
	},
	{
		Kind:         llm.OperationSummarize,
		Label:        "Summarize",
		SystemPrompt: "你是一个专业的文本摘要助手，请为用户提供的文本生成简洁、准确的摘要，突出核心内容和关键点。",
		ModelKey:     config.ModelSummarization,
		MaxTokens:    1000,
		Temperature:  0.3,
		Timeout:      GenerationTimeout,
		WarnChars:    6000,
		Prompt: func(in Input) string {
			return "请为以下文本生成摘要：\n" + in.Text
		},
	},
	{
		Kind:         llm.OperationSummarizeDocument,
		Label:        "Summarize document",
		SystemPrompt: "你是一个专业的文档总结助手，请为用户提供的完整文档生成全面、结构化的总结，包括主要观点、论据和结论。",
		ModelKey:     config.ModelSummarization,
		MaxTokens:    2000,
		Temperature:  0.4,
		Timeout:      SummarizeDocumentTimeout,
		WarnChars:    10000,
		Prompt: func(in Input) string {
			return "请为以下文档生成全文总结：\n" + in.Text
		},
	},
	{
		Kind:         llm.OperationDocumentQA,
		Label:        "Document QA",
		SystemPrompt: "你是一个专业的文档助手，根据文档内容回答用户问题。请提供准确、简洁且有帮助的回答。",
		ModelKey:     config.ModelQA,
		MaxTokens:    2000,
		Temperature:  0.3,
		Timeout:      DocumentQATimeout,
		WarnChars:    8000,
		Prompt: func(in Input) string {
			return fmt.Sprintf("文档内容：%s\n\n问题：%s", in.Text, in.Question)
		},
	},
	{
		Kind:         llm.OperationChat,
		Label:        "Chat",
		SystemPrompt: "你是一个专业的写作助手，请根据对话内容提供准确、有帮助的回答。",
		ModelKey:     config.ModelChat,
		MaxTokens:    2000,
		Temperature:  0.7,
		Timeout:      GenerationTimeout,
		WarnChars:    8000,
	},
	{
		Kind:        llm.OperationConnectionTest,
		Label:       "Connection test",
		MaxTokens:   connectionTestMaxTokens,
		Temperature: 0,
		Timeout:     ConnectionTestTimeout,
		Prompt: func(Input) string {
			return connectionTestPrompt
		},
	},
}

var catalogByKind = lo.KeyBy(catalog, func(op Operation) llm.OperationKind {
	return op.Kind
})

// Lookup returns the catalog entry for kind.
func Lookup(kind llm.OperationKind) (Operation, bool) {
	op, ok := catalogByKind[kind]
	return op, ok
}

// Operations returns every catalog entry in a stable order.
func Operations() []Operation {
	return append([]Operation(nil), catalog...)
}

// Messages builds the conversation sent for in.
//
// Chat passes the caller's messages through and prepends the system prompt
// unless the conversation already starts with a system message. The
// connection test sends only its fixed user message.
func (op Operation) Messages(in Input) []llm.Message {
	if op.Kind == llm.OperationChat {
		if len(in.Messages) > 0 && in.Messages[0].Role == llm.RoleSystem {
			return append([]llm.Message(nil), in.Messages...)
		}
		msgs := make([]llm.Message, 0, len(in.Messages)+1)
		msgs = append(msgs, llm.SystemMessage(op.SystemPrompt))
		return append(msgs, in.Messages...)
	}

	var msgs []llm.Message
	if op.SystemPrompt != "" {
		msgs = append(msgs, llm.SystemMessage(op.SystemPrompt))
	}
	return append(msgs, llm.UserMessage(op.Prompt(in)))
}

// Params resolves generation parameters against cfg. Non-zero configured
// values replace the operation defaults; the connection test ignores them.
func (op Operation) Params(cfg config.Configuration) (maxTokens int, temperature float64, timeout time.Duration) {
	maxTokens, temperature, timeout = op.MaxTokens, op.Temperature, op.Timeout
	if op.Kind == llm.OperationConnectionTest {
		return maxTokens, temperature, timeout
	}
	if cfg.MaxTokens > 0 {
		maxTokens = cfg.MaxTokens
	}
	if cfg.Temperature > 0 {
		temperature = cfg.Temperature
	}
	if cfg.TimeoutOverride > 0 {
		timeout = cfg.TimeoutOverride
	}
	return maxTokens, temperature, timeout
}

// Model resolves the model name for op against cfg.
func (op Operation) Model(cfg config.Configuration) string {
	if op.ModelKey == "" {
		return lo.CoalesceOrEmpty(cfg.DefaultModel, config.DefaultModel)
	}
	return cfg.Model(op.ModelKey)
}
