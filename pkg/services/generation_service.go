// Package services contains the business logic of testforge-engine.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/inflection"
	"go.uber.org/zap"

	"github.com/testforge-ai/testforge-engine/pkg/apperrors"
	"github.com/testforge-ai/testforge-engine/pkg/jsonutil"
	"github.com/testforge-ai/testforge-engine/pkg/llm"
	"github.com/testforge-ai/testforge-engine/pkg/models"
	"github.com/testforge-ai/testforge-engine/pkg/prompts"
	"github.com/testforge-ai/testforge-engine/pkg/repositories"
)

// MaxInputBytes caps the accepted generation input payload.
const MaxInputBytes = 100 * 1024

// Pipeline temperatures: analysis wants determinism, generation wants variety.
const (
	analysisTemperature   = 0.2
	generationTemperature = 0.7
)

// GenerationRequest is the input to the test-generation pipeline.
type GenerationRequest struct {
	InputType string     `json:"input_type"`
	InputData string     `json:"input_data"`
	TestTypes []string   `json:"test_types"`
	Language  string     `json:"language"`
	ProjectID *uuid.UUID `json:"project_id,omitempty"`
}

// Validate checks the request shape. Invalid requests map to 400.
func (r *GenerationRequest) Validate() error {
	if strings.TrimSpace(r.InputData) == "" {
		return fmt.Errorf("input_data is required")
	}
	if len(r.InputData) > MaxInputBytes {
		return fmt.Errorf("input_data exceeds %d bytes", MaxInputBytes)
	}
	if !prompts.IsValidInputType(r.InputType) {
		return fmt.Errorf("invalid input_type %q", r.InputType)
	}
	if len(r.TestTypes) == 0 {
		return fmt.Errorf("at least one test type is required")
	}
	for _, t := range r.TestTypes {
		if !models.IsValidTestType(t) {
			return fmt.Errorf("invalid test type %q", t)
		}
	}
	return nil
}

// Artifact is one generated test file with its metadata.
type Artifact struct {
	TestCaseID   uuid.UUID `json:"test_case_id"`
	TestType     string    `json:"test_type"`
	Filename     string    `json:"filename"`
	Description  string    `json:"description"`
	Content      string    `json:"content"`
	Coverage     []string  `json:"coverage"`
	Dependencies []string  `json:"dependencies"`
	Category     string    `json:"category"`
	FallbackUsed bool      `json:"fallback_used"`
}

// GenerationResult is the pipeline output.
type GenerationResult struct {
	Artifacts    []Artifact          `json:"artifacts"`
	FallbackUsed bool                `json:"fallbackUsed"`
	Usage        models.UsageSummary `json:"usage"`
}

// QuotaError reports a plan quota rejection with the figures the dashboard
// shows. It unwraps to apperrors.ErrQuotaExceeded.
type QuotaError struct {
	Limit   int
	Current int
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("plan quota exceeded: %d/%d", e.Current, e.Limit)
}

func (e *QuotaError) Unwrap() error {
	return apperrors.ErrQuotaExceeded
}

// Analysis is the compact summary the model produces in Step 1.
type Analysis struct {
	Complexity string   `json:"complexity"`
	Components []string `json:"components"`
	RiskAreas  []string `json:"risk_areas"`
	Summary    string   `json:"summary"`
}

// GenerationService turns a generation request into persisted artifacts,
// degrading to templates when the provider fails.
type GenerationService interface {
	GenerateTestCases(ctx context.Context, userID uuid.UUID, req *GenerationRequest) (*GenerationResult, error)
}

type generationService struct {
	client         llm.Client
	testCaseRepo   repositories.TestCaseRepository
	usageRepo      repositories.UsageRepository
	plans          *PlanCatalog
	userRepo       repositories.UserRepository
	requestTimeout time.Duration
	logger         *zap.Logger
}

// NewGenerationService creates a new generation service.
func NewGenerationService(
	client llm.Client,
	testCaseRepo repositories.TestCaseRepository,
	usageRepo repositories.UsageRepository,
	userRepo repositories.UserRepository,
	plans *PlanCatalog,
	requestTimeout time.Duration,
	logger *zap.Logger,
) GenerationService {
	return &generationService{
		client:         client,
		testCaseRepo:   testCaseRepo,
		usageRepo:      usageRepo,
		userRepo:       userRepo,
		plans:          plans,
		requestTimeout: requestTimeout,
		logger:         logger.Named("generation"),
	}
}

var _ GenerationService = (*generationService)(nil)

// GenerateTestCases runs the two-step pipeline: analyze the input, then
// generate one artifact per requested kind. Provider failures never
// surface as errors; each tier substitutes a template instead.
func (s *generationService) GenerateTestCases(ctx context.Context, userID uuid.UUID, req *GenerationRequest) (*GenerationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	language := req.Language
	if language == "" {
		language = "javascript"
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	// Quota check precedes any model call.
	plan := s.plans.Get(user.Plan)
	period := repositories.Period(time.Now())
	used, err := s.usageRepo.Get(ctx, userID, period)
	if err != nil {
		return nil, fmt.Errorf("get usage: %w", err)
	}
	if !plan.Unlimited() && used >= plan.MonthlyTests {
		return nil, &QuotaError{Limit: plan.MonthlyTests, Current: used}
	}

	subject := deriveSubject(req.InputData)
	analysis, analysisJSON, analysisFellBack := s.analyze(ctx, req.InputType, req.InputData)

	result := &GenerationResult{FallbackUsed: analysisFellBack}

	for _, kind := range req.TestTypes {
		artifact := s.generateKind(ctx, kind, language, req, analysisJSON, analysis, subject)
		result.FallbackUsed = result.FallbackUsed || artifact.FallbackUsed
		result.Artifacts = append(result.Artifacts, artifact)
	}

	// Last resort: never return an empty artifact list.
	if len(result.Artifacts) == 0 {
		kind := req.TestTypes[0]
		result.Artifacts = append(result.Artifacts, s.templateArtifact(kind, language, subject, prompts.GenericTemplate(kind, language, subject)))
		result.FallbackUsed = true
	}

	for i := range result.Artifacts {
		if err := s.persistArtifact(ctx, userID, req, language, &result.Artifacts[i]); err != nil {
			return nil, err
		}
	}

	if err := s.usageRepo.Increment(ctx, userID, period, len(result.Artifacts)); err != nil {
		return nil, fmt.Errorf("increment usage: %w", err)
	}

	used += len(result.Artifacts)
	result.Usage = models.UsageSummary{
		Limit:     plan.MonthlyTests,
		Used:      used,
		Remaining: remaining(plan, used),
	}

	s.logger.Info("Generation completed",
		zap.String("user_id", userID.String()),
		zap.Int("artifacts", len(result.Artifacts)),
		zap.Bool("fallback_used", result.FallbackUsed))

	return result, nil
}

// remaining computes what is left of the monthly quota.
func remaining(plan models.Plan, used int) int {
	if plan.Unlimited() {
		return models.UnlimitedQuota
	}
	r := plan.MonthlyTests - used
	if r < 0 {
		r = 0
	}
	return r
}

// analyze runs Step 1. Any model or parse failure yields the deterministic
// fallback analysis; the pipeline proceeds either way.
func (s *generationService) analyze(ctx context.Context, inputType, input string) (Analysis, string, bool) {
	callCtx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	resp, err := s.client.GenerateResponse(callCtx,
		prompts.BuildAnalysisPrompt(inputType, input),
		prompts.AnalysisSystemMessage,
		analysisTemperature,
		prompts.AnalysisMaxTokens,
	)
	if err != nil {
		s.logger.Warn("Analysis call failed, using fallback analysis", zap.Error(err))
		return fallbackAnalysis(inputType)
	}

	analysis, err := parseAnalysis(resp.Content)
	if err != nil {
		s.logger.Warn("Analysis response unparseable, using fallback analysis", zap.Error(err))
		return fallbackAnalysis(inputType)
	}

	encoded, err := json.Marshal(analysis)
	if err != nil {
		return fallbackAnalysis(inputType)
	}

	return analysis, string(encoded), false
}

// parseAnalysis tolerates the loose typing LLMs produce for the analysis
// fields (numbers for complexity, scalars for lists).
func parseAnalysis(response string) (Analysis, error) {
	raw, err := llm.ParseJSONResponse[map[string]json.RawMessage](response)
	if err != nil {
		return Analysis{}, err
	}

	a := Analysis{
		Complexity: jsonutil.FlexibleStringValue(raw["complexity"]),
		Components: jsonutil.FlexibleStringList(raw["components"]),
		RiskAreas:  jsonutil.FlexibleStringList(raw["risk_areas"]),
		Summary:    jsonutil.FlexibleStringValue(raw["summary"]),
	}
	if a.Complexity == "" {
		a.Complexity = "medium"
	}
	return a, nil
}

// fallbackAnalysis is the deterministic substitute used when Step 1 fails.
func fallbackAnalysis(inputType string) (Analysis, string, bool) {
	a := Analysis{
		Complexity: "medium",
		Components: []string{"main flow"},
		RiskAreas:  []string{"input validation", "error handling"},
		Summary:    fmt.Sprintf("Unanalyzed %s input", inputType),
	}
	encoded, _ := json.Marshal(a)
	return a, string(encoded), true
}

// generateKind runs Step 2 for one test kind with the three-tier
// degradation policy.
func (s *generationService) generateKind(ctx context.Context, kind, language string, req *GenerationRequest, analysisJSON string, analysis Analysis, subject string) Artifact {
	spec := prompts.SpecFor(kind)

	callCtx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	resp, err := s.client.GenerateResponse(callCtx,
		prompts.BuildGenerationPrompt(kind, language, req.InputType, analysisJSON, req.InputData),
		spec.System,
		generationTemperature,
		spec.MaxTokens,
	)
	if err != nil {
		if llm.IsQuotaError(err) {
			// Tier (a): provider quota - substitute the kind-specific template.
			s.logger.Warn("Provider quota hit, using kind fallback",
				zap.String("kind", kind), zap.Error(err))
			return s.templateArtifact(kind, language, subject, prompts.FallbackTemplate(kind, language, subject))
		}
		// Tier (b): any other failure - minimal generic template.
		s.logger.Warn("Generation failed, using generic template",
			zap.String("kind", kind), zap.Error(err))
		return s.templateArtifact(kind, language, subject, prompts.GenericTemplate(kind, language, subject))
	}

	content := stripCodeFences(resp.Content)
	if strings.TrimSpace(content) == "" {
		return s.templateArtifact(kind, language, subject, prompts.GenericTemplate(kind, language, subject))
	}

	description := spec.Description
	if analysis.Summary != "" {
		description = fmt.Sprintf("%s: %s", spec.Description, analysis.Summary)
	}

	return Artifact{
		TestType:     kind,
		Filename:     ArtifactFilename(kind, language, subject),
		Description:  description,
		Content:      content,
		Coverage:     spec.Coverage,
		Dependencies: prompts.DependenciesFor(kind, language),
		Category:     "main",
	}
}

// templateArtifact packages a fallback template as an artifact.
func (s *generationService) templateArtifact(kind, language, subject, content string) Artifact {
	spec := prompts.SpecFor(kind)
	return Artifact{
		TestType:     kind,
		Filename:     ArtifactFilename(kind, language, subject),
		Description:  spec.Description + " (template)",
		Content:      content,
		Coverage:     spec.Coverage,
		Dependencies: prompts.DependenciesFor(kind, language),
		Category:     "main",
		FallbackUsed: true,
	}
}

// persistArtifact stores one artifact as a test_cases row.
func (s *generationService) persistArtifact(ctx context.Context, userID uuid.UUID, req *GenerationRequest, language string, artifact *Artifact) error {
	tc := &models.TestCase{
		UserID:    userID,
		ProjectID: req.ProjectID,
		Name:      artifact.Filename,
		TestType:  artifact.TestType,
		Language:  language,
		Content:   artifact.Content,
		Metadata: models.TestCaseMetadata{
			Description:  artifact.Description,
			Coverage:     artifact.Coverage,
			Dependencies: artifact.Dependencies,
			Category:     artifact.Category,
			FallbackUsed: artifact.FallbackUsed,
			InputType:    req.InputType,
		},
	}

	if err := s.testCaseRepo.Create(ctx, tc); err != nil {
		return fmt.Errorf("persist artifact: %w", err)
	}

	artifact.TestCaseID = tc.ID
	return nil
}

var (
	fencePattern   = regexp.MustCompile("(?s)^\\s*```[a-zA-Z]*\\n(.*?)```\\s*$")
	nonSlugPattern = regexp.MustCompile(`[^a-z0-9]+`)
)

// stripCodeFences removes a single wrapping markdown fence, if present.
func stripCodeFences(content string) string {
	if m := fencePattern.FindStringSubmatch(content); len(m) == 2 {
		return m[1]
	}
	return content
}

// deriveSubject extracts a short, stable subject from the input: the first
// few words of the first non-empty line.
func deriveSubject(input string) string {
	for _, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		words := strings.Fields(line)
		if len(words) > 6 {
			words = words[:6]
		}
		return strings.Join(words, " ")
	}
	return "generated"
}

// ArtifactFilename derives a deterministic filename from (kind, language,
// input subject). Same inputs produce the same name.
func ArtifactFilename(kind, language, subject string) string {
	slug := nonSlugPattern.ReplaceAllString(strings.ToLower(subject), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "generated"
	}
	// Singularize the leading noun so "users can log in" and
	// "user can log in" name the same file.
	parts := strings.SplitN(slug, "-", 2)
	parts[0] = inflection.Singular(parts[0])
	slug = strings.Join(parts, "-")

	if kind == models.TestTypeBDD {
		return slug + ".feature"
	}
	return fmt.Sprintf("%s-%s-test%s", slug, kind, fileExtension(language))
}

// fileExtension maps a target language to its source extension.
func fileExtension(language string) string {
	switch strings.ToLower(language) {
	case "java":
		return ".java"
	case "python":
		return ".py"
	case "go":
		return ".go"
	case "typescript":
		return ".ts"
	case "csharp", "c#":
		return ".cs"
	case "ruby":
		return ".rb"
	default:
		return ".js"
	}
}
