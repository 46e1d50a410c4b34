// Package flagging implements the QA auto-flag heuristic applied to
// incoming bot messages. It is advisory tooling for triage, not a
// security control.
package flagging

import "regexp"

// Flag reasons returned by Evaluate.
const (
	ReasonUUID      = "Contains UUID patterns"
	ReasonErrorText = "Contains error-like text"
)

var uuidPattern = regexp.MustCompile(`(?i)[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)

// Checked in order; first match wins.
var errorPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)error`),
	regexp.MustCompile(`(?i)failed`),
	regexp.MustCompile(`(?i)exception`),
	regexp.MustCompile(`(?i)timeout`),
	regexp.MustCompile(`(?i)connection refused`),
	regexp.MustCompile(`(?i)not found`),
	regexp.MustCompile(`(?i)unauthorized`),
	regexp.MustCompile(`(?i)forbidden`),
	regexp.MustCompile(`(?i)internal server error`),
}

// Result is the outcome of evaluating a message text.
type Result struct {
	Flagged bool
	Reason  string // empty when Flagged is false
}

// Evaluate classifies a message text. Leaked session UUIDs take
// precedence over generic error wording. Empty text is never flagged.
func Evaluate(messageText string) Result {
	if messageText == "" {
		return Result{}
	}

	if uuidPattern.MatchString(messageText) {
		return Result{Flagged: true, Reason: ReasonUUID}
	}

	for _, pattern := range errorPatterns {
		if pattern.MatchString(messageText) {
			return Result{Flagged: true, Reason: ReasonErrorText}
		}
	}

	return Result{}
}
