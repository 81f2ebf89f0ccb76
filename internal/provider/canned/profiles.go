package canned

import (
	"fmt"
	"strings"
	"time"

	"github.com/schoolhub/aigateway/internal/domain"
)

const fastChatChunkRunes = 12

// FastChat answers briefly in small rune chunks with minimal delay.
func FastChat() Profile {
	return Profile{
		Name:  domain.ProviderFastChat,
		Delay: 5 * time.Millisecond,
		Split: func(text string) []string { return splitRunes(text, fastChatChunkRunes) },
		Reply: func(question string) string {
			return fmt.Sprintf("Quick answer to %q: please check the context excerpts from the school records "+
				"above; they cover this topic directly.", question)
		},
	}
}

// Summarization emits a short summary one sentence at a time.
func Summarization() Profile {
	return Profile{
		Name:  domain.ProviderSummarization,
		Delay: 40 * time.Millisecond,
		Split: splitSentences,
		Reply: func(question string) string {
			return fmt.Sprintf("Summary of the request %q. "+
				"The relevant school documents were condensed into their key points. "+
				"Details not present in the context are intentionally left out.", question)
		},
	}
}

// CodeGeneration emits a code block one line at a time.
func CodeGeneration() Profile {
	return Profile{
		Name:  domain.ProviderCodeSpecialist,
		Delay: 20 * time.Millisecond,
		Split: splitLines,
		Reply: func(question string) string {
			return fmt.Sprintf("```go\n// %s\nfunc answer() string {\n\treturn \"see the provided context\"\n}\n```\n",
				question)
		},
	}
}

// GeneralPurpose is the fallback profile, streaming word by word.
func GeneralPurpose() Profile {
	return Profile{
		Name:  domain.ProviderGeneralPurpose,
		Delay: 10 * time.Millisecond,
		Split: splitWords,
		Reply: func(question string) string {
			return fmt.Sprintf("Based on the provided context, here is a general answer to your question: %s "+
				"If the context does not cover it, please contact the school office.", question)
		},
	}
}

func splitRunes(text string, size int) []string {
	runes := []rune(text)
	pieces := make([]string, 0, len(runes)/size+1)
	for start := 0; start < len(runes); start += size {
		pieces = append(pieces, string(runes[start:min(start+size, len(runes))]))
	}
	return pieces
}

func splitWords(text string) []string {
	return nonEmpty(strings.SplitAfter(text, " "))
}

func splitSentences(text string) []string {
	return nonEmpty(strings.SplitAfter(text, ". "))
}

func splitLines(text string) []string {
	return nonEmpty(strings.SplitAfter(text, "\n"))
}

func nonEmpty(pieces []string) []string {
	out := pieces[:0]
	for _, piece := range pieces {
		if piece != "" {
			out = append(out, piece)
		}
	}
	return out
}
