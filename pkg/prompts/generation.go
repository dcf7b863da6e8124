package prompts

import (
	"fmt"
	"strings"

	"github.com/testforge-ai/testforge-engine/pkg/models"
)

// GenerationExcerptLimit caps how much of the raw input is embedded in a
// per-kind generation prompt.
const GenerationExcerptLimit = 4000

// KindSpec describes how one test kind is generated: the system
// instruction, the completion budget and static artifact metadata.
type KindSpec struct {
	System       string
	MaxTokens    int
	Description  string
	Coverage     []string
	Dependencies map[string][]string // per language; "" is the default
}

var kindSpecs = map[string]KindSpec{
	models.TestTypeBDD: {
		System: "You are a BDD specialist. Write Gherkin feature files with clear " +
			"Given/When/Then scenarios. Output only the feature file content.",
		MaxTokens:   2000,
		Description: "BDD feature file with scenarios derived from the input",
		Coverage:    []string{"happy path", "edge cases", "error handling"},
		Dependencies: map[string][]string{
			"":     {"cucumber"},
			"java": {"cucumber-java", "junit"},
		},
	},
	models.TestTypeUnit: {
		System: "You are a unit-testing specialist. Write focused unit tests with " +
			"arrange/act/assert structure and descriptive names. Output only code.",
		MaxTokens:   3000,
		Description: "Unit test suite covering the identified components",
		Coverage:    []string{"functions", "branches", "error paths"},
		Dependencies: map[string][]string{
			"":           {"jest"},
			"java":       {"junit", "mockito"},
			"python":     {"pytest"},
			"go":         {"testing", "testify"},
			"typescript": {"jest", "ts-jest"},
		},
	},
	models.TestTypeAPI: {
		System: "You are an API-testing specialist. Write request-level tests that " +
			"assert status codes, response schemas and auth behavior. Output only code.",
		MaxTokens:   2500,
		Description: "API test suite for the described endpoints",
		Coverage:    []string{"status codes", "response schemas", "authentication"},
		Dependencies: map[string][]string{
			"":       {"supertest", "jest"},
			"java":   {"rest-assured", "junit"},
			"python": {"requests", "pytest"},
		},
	},
	models.TestTypeUI: {
		System: "You are a UI-automation specialist. Write browser automation tests " +
			"for the main user flows with robust selectors. Output only code.",
		MaxTokens:   2500,
		Description: "UI automation covering the main user flows",
		Coverage:    []string{"navigation", "forms", "validation messages"},
		Dependencies: map[string][]string{
			"":     {"playwright"},
			"java": {"selenium-java", "junit"},
		},
	},
	models.TestTypePerformance: {
		System: "You are a performance-testing specialist. Write a load-test script " +
			"with ramp-up stages and latency thresholds. Output only code.",
		MaxTokens:   2000,
		Description: "Load test script with staged ramp-up and thresholds",
		Coverage:    []string{"throughput", "latency thresholds", "ramp-up"},
		Dependencies: map[string][]string{
			"": {"k6"},
		},
	},
}

// SpecFor returns the generation spec for a test kind. Unknown kinds get
// the unit spec.
func SpecFor(kind string) KindSpec {
	if spec, ok := kindSpecs[kind]; ok {
		return spec
	}
	return kindSpecs[models.TestTypeUnit]
}

// DependenciesFor returns the static dependency list for a kind and language.
func DependenciesFor(kind, language string) []string {
	spec := SpecFor(kind)
	if deps, ok := spec.Dependencies[strings.ToLower(language)]; ok {
		return deps
	}
	return spec.Dependencies[""]
}

// BuildGenerationPrompt creates the Step 2 prompt for one test kind,
// embedding the analysis JSON and a truncated input excerpt.
func BuildGenerationPrompt(kind, language, inputType, analysisJSON, input string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Generate %s tests in %s for the following input (type: %s).\n\n", kind, language, inputType)

	b.WriteString("Analysis of the input:\n")
	b.WriteString(analysisJSON)
	b.WriteString("\n\nInput excerpt:\n```\n")
	b.WriteString(Truncate(input, GenerationExcerptLimit))
	b.WriteString("\n```\n\n")
	b.WriteString("Cover the components and risk areas from the analysis. ")
	b.WriteString("Output only the test file content, no explanations.")

	return b.String()
}
