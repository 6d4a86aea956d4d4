package llm

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultDigestSystemPrompt instructs the model to summarize a day's worth
// of channel messages and respond with strict JSON.
const DefaultDigestSystemPrompt = `You are a news analyst. You receive a batch of messages collected from several channels, optionally with attached images.
Summarize the important developments, grouping related messages and noting which channel reported them.
Respond with a single JSON object and nothing else:
{"summary": "<2-4 sentence overview>", "content": "<detailed digest in markdown>"}`

// BuildDigestUserPrompt assembles the user prompt from the serialized
// message batch and the per-channel descriptions.
func BuildDigestUserPrompt(messagesJSON string, descriptions map[string]string) string {
	var b strings.Builder

	if len(descriptions) > 0 {
		b.WriteString("Channel context:\n")
		titles := make([]string, 0, len(descriptions))
		for title := range descriptions {
			titles = append(titles, title)
		}
		sort.Strings(titles)
		for _, title := range titles {
			fmt.Fprintf(&b, "- %s: %s\n", title, descriptions[title])
		}
		b.WriteString("\n")
	}

	b.WriteString("Messages (JSON):\n")
	b.WriteString(messagesJSON)

	return b.String()
}
