package llm

import (
	"net"
	"net/url"
	"strings"
)

// ProviderKind is the backend family inferred from a base URL.
type ProviderKind string

const (
	ProviderOpenAICompatible ProviderKind = "openai"
	ProviderOllama           ProviderKind = "ollama"
	ProviderVLLM             ProviderKind = "vllm"
	ProviderLlamaCpp         ProviderKind = "llama-cpp"
)

const (
	vllmPort     = "8000"
	llamaCppPort = "8080"
)

// WireFormat names the request/response format a provider speaks.
// Provider kind drives adapter selection, not necessarily wire format:
// vLLM and llama.cpp servers speak the OpenAI chat-completions protocol.
func (k ProviderKind) WireFormat() ProviderKind {
	if k == ProviderOllama {
		return ProviderOllama
	}
	return ProviderOpenAICompatible
}

func (k ProviderKind) String() string {
	return string(k)
}

// DetectProvider classifies a normalized base URL into a backend family.
// The result depends only on the URL.
func DetectProvider(baseURL string) ProviderKind {
	if strings.Contains(strings.ToLower(baseURL), "ollama") {
		return ProviderOllama
	}

	host, port := hostPort(baseURL)
	if !isLoopback(host) {
		return ProviderOpenAICompatible
	}

	switch port {
	case vllmPort:
		return ProviderVLLM
	case llamaCppPort:
		return ProviderLlamaCpp
	default:
		return ProviderOpenAICompatible
	}
}

func hostPort(baseURL string) (string, string) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return "", ""
	}
	return u.Hostname(), u.Port()
}

func isLoopback(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
