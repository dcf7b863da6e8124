// Package prompts builds the prompts and fallback templates used by the
// test-generation pipeline.
package prompts

import (
	"fmt"
	"strings"
)

// Input type constants for generation requests.
const (
	InputUserStory         = "user_story"
	InputCode              = "code"
	InputAPISpec           = "api_spec"
	InputGitRepo           = "git_repo"
	InputPostmanCollection = "postman_collection"
	InputWebURL            = "web_url"
)

// ValidInputTypes contains all accepted input types.
var ValidInputTypes = []string{
	InputUserStory, InputCode, InputAPISpec,
	InputGitRepo, InputPostmanCollection, InputWebURL,
}

// IsValidInputType checks if the given input type is accepted.
func IsValidInputType(t string) bool {
	for _, v := range ValidInputTypes {
		if v == t {
			return true
		}
	}
	return false
}

// AnalysisSystemMessage is the system instruction for the analysis step.
const AnalysisSystemMessage = "You are a senior QA architect. " +
	"Respond with a single compact JSON object and nothing else."

// AnalysisMaxTokens bounds the analysis completion; the summary is small by design.
const AnalysisMaxTokens = 500

// analysisFraming describes what to look for per input type.
var analysisFraming = map[string]string{
	InputUserStory:         "The input is an agile user story with acceptance criteria. Identify the actors, the behaviors described, and the acceptance criteria that must hold.",
	InputCode:              "The input is source code. Identify the classes, functions and branches that need coverage, and any error paths.",
	InputAPISpec:           "The input is an API specification (OpenAPI or similar). Identify the endpoints, methods, request/response schemas and auth requirements.",
	InputGitRepo:           "The input is a git repository URL with an optional description. Infer the likely stack and the modules most in need of tests.",
	InputPostmanCollection: "The input is a Postman collection export. Identify the requests, their parameters and the expected responses.",
	InputWebURL:            "The input is a web page URL with an optional description. Infer the user-facing flows and form interactions worth testing.",
}

// BuildAnalysisPrompt creates the Step 1 prompt asking the model for a
// compact JSON summary of the input.
func BuildAnalysisPrompt(inputType, input string) string {
	var b strings.Builder

	framing, ok := analysisFraming[inputType]
	if !ok {
		framing = analysisFraming[InputUserStory]
	}

	b.WriteString(framing)
	b.WriteString("\n\nInput:\n```\n")
	b.WriteString(Truncate(input, AnalysisExcerptLimit))
	b.WriteString("\n```\n\n")
	b.WriteString(`Respond with JSON of this exact shape:
{
  "complexity": "low" | "medium" | "high",
  "components": ["testable component or class", ...],
  "risk_areas": ["area likely to break", ...],
  "summary": "one-sentence summary of what the input does"
}`)

	return b.String()
}

// AnalysisExcerptLimit caps how much of the input is embedded in the
// analysis prompt.
const AnalysisExcerptLimit = 6000

// Truncate cuts s to at most limit bytes, appending a marker when cut.
func Truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return fmt.Sprintf("%s\n... (truncated, %d bytes total)", s[:limit], len(s))
}
