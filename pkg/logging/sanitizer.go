package logging

import "regexp"

// RedactedText replaces sensitive values in log output.
const RedactedText = "[REDACTED]"

// MaxInputLogLength caps how much user-submitted input is logged.
const MaxInputLogLength = 100

// redaction pairs a pattern with its replacement. Applied in order.
type redaction struct {
	pattern *regexp.Regexp
	replace string
}

var redactions = []redaction{
	// password=..., pwd=..., pass=... in connection strings and errors
	{regexp.MustCompile(`(?i)(password|pwd|pass)=[^;&\s]+`), "${1}=" + RedactedText},
	// bearer tokens (three dot-separated base64url segments)
	{regexp.MustCompile(`Bearer\s+[A-Za-z0-9-_]+\.[A-Za-z0-9-_]+\.[A-Za-z0-9-_]*`), "Bearer " + RedactedText},
	// api keys passed as query or kv parameters
	{regexp.MustCompile(`(?i)(api[_-]?key|apikey|key)=[A-Za-z0-9-_]{20,}`), "${1}=" + RedactedText},
	// user:pass@host in URLs
	{regexp.MustCompile(`://[^:]+:[^@]+@[^/\s]+`), "://" + RedactedText + "@" + RedactedText},
}

func redact(s string) string {
	for _, r := range redactions {
		s = r.pattern.ReplaceAllString(s, r.replace)
	}
	return s
}

// SanitizeConnectionString strips credentials from a connection string
// before it is logged.
func SanitizeConnectionString(connStr string) string {
	return redact(connStr)
}

// SanitizeError strips credentials, tokens and API keys from an error
// message. Provider SDK errors can echo request headers.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return redact(err.Error())
}

// SanitizeInput truncates user-submitted input for logging. Generation
// inputs can be up to 100 KB; logs only need a prefix.
func SanitizeInput(input string) string {
	if len(input) > MaxInputLogLength {
		return input[:MaxInputLogLength] + "..."
	}
	return input
}
