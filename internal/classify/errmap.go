package classify

import (
	"fmt"
	"strings"
)

// ClassificationError reports a failed classification call: a transport
// failure, a non-2xx response, or a malformed structured payload. The kinds
// are distinguished only by message content.
type ClassificationError struct {
	Message string
	Err     error
}

func (e *ClassificationError) Error() string {
	return e.Message
}

func (e *ClassificationError) Unwrap() error { return e.Err }

var errInvalidResponse = &ClassificationError{
	Message: "Invalid response structure or empty result from the API.",
}

// rewriteRule maps a recognized substring of a provider error message to a
// stable user-facing message.
type rewriteRule struct {
	match   string
	message string
}

// rewriteRules is evaluated in order. The vendor's error text may change
// format without notice, so this mapping is best-effort.
var rewriteRules = []rewriteRule{
	{match: "unregistered callers", message: "Authentication Failed: The provided API key may be invalid or restricted."},
	{match: "API key not valid", message: "Authentication Failed: The provided API key may be invalid or restricted."},
}

// RewriteAPIMessage rewrites recognized provider error messages to their
// stable equivalents; unrecognized messages pass through verbatim.
func RewriteAPIMessage(message string) string {
	if message == "" {
		return "API request failed with an unknown status."
	}
	for _, rule := range rewriteRules {
		if strings.Contains(message, rule.match) {
			return rule.message
		}
	}
	return message
}

// httpStatusError builds a ClassificationError from a raw provider HTTP
// failure, preferring the endpoint's nested error message when present.
func httpStatusError(statusCode int, apiMessage string) error {
	if apiMessage == "" {
		apiMessage = fmt.Sprintf("API request failed with status %d.", statusCode)
	}
	return &ClassificationError{Message: RewriteAPIMessage(apiMessage)}
}
