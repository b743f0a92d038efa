package relay

import (
	"fmt"

	"github.com/adityakx/sehat/internal/llm"
	"github.com/adityakx/sehat/internal/memory"
)

// searchPrompt folds retrieved context into the question handed to the
// reasoning engine. When search is unavailable the original question goes
// through unchanged.
func searchPrompt(question, searchContext string) string {
	return fmt.Sprintf(
		"Based on this recent health information: %s\n\nAnswer the user's question: %s",
		searchContext, question)
}

// exchanges converts stored turns, newest first as the store returns them,
// into chronological reasoning context.
func exchanges(turns []memory.Turn) []llm.Exchange {
	out := make([]llm.Exchange, 0, len(turns))
	for i := len(turns) - 1; i >= 0; i-- {
		out = append(out, llm.Exchange{
			User:      turns[i].Message,
			Assistant: turns[i].Response,
		})
	}
	return out
}
