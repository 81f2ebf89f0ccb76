package domain

import (
	"fmt"
	"strings"
)

// ContextSeparator joins retrieved chunks into a single context block.
const ContextSeparator = "\n---\n"

const noContextPlaceholder = "(no relevant context was found)"

// JoinContext concatenates retrieved chunk contents in rank order.
func JoinContext(records []ScoredRecord) string {
	parts := make([]string, 0, len(records))
	for _, record := range records {
		parts = append(parts, record.Content)
	}
	return strings.Join(parts, ContextSeparator)
}

// BuildAugmentedPrompt frames the user prompt with retrieved context and the requester role.
func BuildAugmentedPrompt(role Role, contextBlock string, prompt string) string {
	if strings.TrimSpace(contextBlock) == "" {
		contextBlock = noContextPlaceholder
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are an assistant for a school management platform, answering a %s.\n", role)
	b.WriteString("Answer using only the information in the context below. ")
	b.WriteString("If the context does not contain enough information to answer, say so explicitly ")
	b.WriteString("instead of guessing.\n\n")
	b.WriteString("Context:\n")
	b.WriteString(contextBlock)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Question (from %s):\n%s", role, prompt)
	return b.String()
}
