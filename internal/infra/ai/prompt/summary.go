package prompt

import (
	"fmt"
	"strings"
)

// GetSystemPrompt provides strict directions for a plain-text contract summary.
func GetSystemPrompt() string {
	return `You are a legal analyst who summarizes contracts for legal professionals. You must answer with the summary text only (no markdown, no headings, no commentary, no code fences).

Requirements:
- Keep the parties, obligations, payment terms, term and termination, liability and governing law when the contract states them.
- Do not invent clauses that are not in the contract.
- Write in the language of the contract.
- Respect the length limits given in the user message.`
}

// GetUserPrompt wraps the contract text with its generation bounds.
func GetUserPrompt(text string, minTokens, maxTokens int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Summarize the contract below in at least %d and at most %d tokens.\n\n", minTokens, maxTokens)
	b.WriteString("Contract:\n")
	b.WriteString(text)
	return b.String()
}
