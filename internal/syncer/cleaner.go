package syncer

import (
	"regexp"
	"strings"
)

// Assistant-authored text sometimes embeds raw tool artifacts: fenced JSON
// blocks with the argument payload, or the tool invocation written out as
// pseudo-code. Neither is presentable to an end user.
var (
	jsonFencePattern  = regexp.MustCompile("(?s)```json.*?```")
	pseudoCallPattern = regexp.MustCompile(`\b(?:get_current_date|create_calendar_event|register_operations|request_quote)\s*\([^)]*\)`)
)

// CleanContent strips tool artifacts from message text: ```json fences,
// inline pseudo-calls of the registered tools, and any stray backtick fences
// left behind. Surrounding prose is preserved.
func CleanContent(text string) string {
	if text == "" {
		return text
	}
	text = jsonFencePattern.ReplaceAllString(text, "")
	text = pseudoCallPattern.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}
