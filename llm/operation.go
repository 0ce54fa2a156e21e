package llm

import (
	"fmt"
	"strings"
)

// OperationKind identifies one of the fixed gateway operations.
type OperationKind string

const (
	OperationContinue          OperationKind = "continue"
	OperationProofread         OperationKind = "proofread"
	OperationPolish            OperationKind = "polish"
	OperationSummarize         OperationKind = "summarize"
	OperationSummarizeDocument OperationKind = "summarize-document"
	OperationDocumentQA        OperationKind = "document-qa"
	OperationChat              OperationKind = "chat"
	OperationConnectionTest    OperationKind = "connection-test"
)

// OperationKinds lists every operation in catalog order.
var OperationKinds = []OperationKind{
	OperationContinue,
	OperationProofread,
	OperationPolish,
	OperationSummarize,
	OperationSummarizeDocument,
	OperationDocumentQA,
	OperationChat,
	OperationConnectionTest,
}

func (k OperationKind) String() string {
	return string(k)
}

// ParseOperationKind parses a kind name. Underscores are accepted in place of dashes.
func ParseOperationKind(s string) (OperationKind, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	for _, k := range OperationKinds {
		if string(k) == name {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown operation %q", s)
}
