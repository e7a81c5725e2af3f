package session

import (
	"regexp"
	"strings"
)

// Local models often leak chain-of-thought wrapped in pseudo-XML tags.
// Everything inside these tags is stripped before the reply is used.
var thinkingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<thinking>.*?</thinking>`),
	regexp.MustCompile(`(?is)<think>.*?</think>`),
	regexp.MustCompile(`(?is)<reasoning>.*?</reasoning>`),
	regexp.MustCompile(`(?is)<analysis>.*?</analysis>`),
	regexp.MustCompile(`(?is)<internal>.*?</internal>`),
	regexp.MustCompile(`(?is)<meta>.*?</meta>`),
}

var blankRuns = regexp.MustCompile(`\n{3,}`)

// FilterThinking removes reasoning markup from a model reply, collapses the
// blank runs left behind and trims surrounding whitespace.
func FilterThinking(text string) string {
	for _, p := range thinkingPatterns {
		text = p.ReplaceAllString(text, "")
	}
	text = blankRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
