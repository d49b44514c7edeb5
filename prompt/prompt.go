package prompt

import (
	"fmt"
	"strings"

	"github.com/w-h-a/ragchat/store"
)

// NoContext stands in for the context block when retrieval produced nothing.
const NoContext = "NO_CONTEXT"

const contextHeader = "Relevant country data:"

const groundedTemplate = `You are a helpful assistant that answers questions about countries using ONLY the following context.
If the context does not contain the answer, say that the information is not available in the provided data. Do not make up information.

Context:
%s

Question: %s

Answer:`

const generalTemplate = `You are a helpful assistant answering questions about countries.
Answer the following question using your general knowledge: %s
If you don't know the answer, say so.

Answer:`

// FormatContext renders matches as a bulleted block in the order given.
func FormatContext(matches []store.Match) string {
	if len(matches) == 0 {
		return NoContext
	}

	var sb strings.Builder
	sb.WriteString(contextHeader)
	for _, m := range matches {
		sb.WriteString("\n- ")
		sb.WriteString(m.Document.Text)
	}

	return sb.String()
}

// Build picks the grounded variant for a real context block and the general
// knowledge variant for NoContext.
func Build(context string, query string) string {
	if context == NoContext {
		return General(query)
	}
	return Grounded(context, query)
}

func Grounded(context string, query string) string {
	return fmt.Sprintf(groundedTemplate, context, query)
}

func General(query string) string {
	return fmt.Sprintf(generalTemplate, query)
}
