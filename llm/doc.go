// Package llm provides the provider-neutral core of the gateway client.
//
// It defines the canonical request and result types, the closed set of
// operations, provider detection, the error taxonomy and classifier, and the
// interfaces wire adapters and middleware implement. Nothing in this package
// performs I/O.
//
// # Core Concepts
//
//  1. Request / Result: the canonical form of one call and its outcome. Every
//     operation is expressed as an ordered list of system and user messages
//     plus a model name and generation parameters.
//
//  2. ProviderKind: the backend family inferred from a base URL by
//     DetectProvider. vLLM and llama.cpp keep their own kinds but speak the
//     OpenAI chat-completions wire format; only Ollama differs.
//
//  3. Adapter: encodes a Request into a provider-native path and body and
//     decodes the provider-native response. See the openai and ollama
//     subpackages.
//
//  4. Errors: every failure surfaced by the gateway is an *Error whose Kind is
//     one of network, http_status, malformed_response, configuration or
//     unknown. Classify builds one from whatever the transport or an adapter
//     raised; only network failures are retryable.
//
//  5. Middleware: hooks run around each call for logging, metrics and the
//     like. A Chain composes several.
//
// Usage Example
//
//	kind := llm.DetectProvider("http://localhost:8000") // llm.ProviderVLLM
//
//	req := &llm.Request{
//	    Operation: llm.OperationSummarize,
//	    Model:     "qwen2.5",
//	    Messages: []llm.Message{
//	        llm.SystemMessage("You summarize text."),
//	        llm.UserMessage(text),
//	    },
//	    MaxTokens:   1000,
//	    Temperature: 0.3,
//	}
//
//	path, body, err := adapter.Encode(req)
//	...
//	if cerr := llm.Classify(err, adapter.ErrorMessage); cerr != nil {
//	    fmt.Println(cerr.Message)
//	}
package llm
