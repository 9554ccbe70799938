package ai

import (
	"regexp"
	"strings"
)

// reasoningTagPatterns match the scratchpad sections some local models
// (deepseek-r1, qwen3) emit before their answer.
var reasoningTagPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?s)<think>.*?</think>`),
	regexp.MustCompile(`(?s)<thinking>.*?</thinking>`),
	regexp.MustCompile(`(?s)<reasoning>.*?</reasoning>`),
}

// unclosedThink matches a scratchpad cut off by the token limit.
var unclosedThink = regexp.MustCompile(`(?s)^\s*<think>.*$`)

// excessiveNewlines matches 3 or more consecutive newlines
var excessiveNewlines = regexp.MustCompile(`\n{3,}`)

// StripReasoning removes reasoning sections and their contents from a model
// answer so only the Markdown explanation remains.
func StripReasoning(content string) string {
	result := content
	for _, pattern := range reasoningTagPatterns {
		result = pattern.ReplaceAllString(result, "")
	}
	result = unclosedThink.ReplaceAllString(result, "")
	result = excessiveNewlines.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

// FirstNWords returns the first n words of content, or content itself when
// it is shorter.
func FirstNWords(content string, n int) string {
	words := strings.Fields(content)
	if len(words) <= n {
		return content
	}
	return strings.Join(words[:n], " ")
}
