package services

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/testforge-ai/testforge-engine/pkg/models"
	"github.com/testforge-ai/testforge-engine/pkg/repositories"
)

// Report type constants.
const (
	ReportTypeSummary  = "summary"
	ReportTypeCoverage = "coverage"
	ReportTypeTrend    = "trend"
)

// CreateReportRequest is the payload for POST /api/reports.
type CreateReportRequest struct {
	Name       string `json:"name"`
	ReportType string `json:"report_type"`
	TimeRange  string `json:"time_range"`
}

// Validate checks the request fields.
func (r *CreateReportRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name is required")
	}
	switch r.ReportType {
	case ReportTypeSummary, ReportTypeCoverage, ReportTypeTrend:
	default:
		return fmt.Errorf("report_type must be one of: summary, coverage, trend")
	}
	switch r.TimeRange {
	case "", "24h", "7d", "30d", "90d":
	default:
		return fmt.Errorf("time_range must be one of: 24h, 7d, 30d, 90d")
	}
	return nil
}

// ReportService creates, generates and renders reports.
type ReportService interface {
	Create(ctx context.Context, userID uuid.UUID, req *CreateReportRequest) (*models.Report, error)
	List(ctx context.Context, userID uuid.UUID) ([]*models.Report, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*models.Report, error)
	Generate(ctx context.Context, userID, id uuid.UUID) (*models.Report, []byte, error)
}

type reportService struct {
	reportRepo    repositories.ReportRepository
	executionRepo repositories.ExecutionRepository
	testCaseRepo  repositories.TestCaseRepository
	logger        *zap.Logger
}

// NewReportService creates a new report service.
func NewReportService(
	reportRepo repositories.ReportRepository,
	executionRepo repositories.ExecutionRepository,
	testCaseRepo repositories.TestCaseRepository,
	logger *zap.Logger,
) ReportService {
	return &reportService{
		reportRepo:    reportRepo,
		executionRepo: executionRepo,
		testCaseRepo:  testCaseRepo,
		logger:        logger.Named("reports"),
	}
}

var _ ReportService = (*reportService)(nil)

// Create records a pending report.
func (s *reportService) Create(ctx context.Context, userID uuid.UUID, req *CreateReportRequest) (*models.Report, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	timeRange := req.TimeRange
	if timeRange == "" {
		timeRange = "30d"
	}

	report := &models.Report{
		UserID:     userID,
		Name:       strings.TrimSpace(req.Name),
		ReportType: req.ReportType,
		TimeRange:  timeRange,
		Status:     models.ReportPending,
	}
	if err := s.reportRepo.Create(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// List returns the user's reports.
func (s *reportService) List(ctx context.Context, userID uuid.UUID) ([]*models.Report, error) {
	return s.reportRepo.ListByUser(ctx, userID)
}

// Get returns one report.
func (s *reportService) Get(ctx context.Context, userID, id uuid.UUID) (*models.Report, error) {
	return s.reportRepo.Get(ctx, userID, id)
}

// Generate computes the report content from execution and test case data,
// persists it, and renders the PDF. Regenerating an already generated
// report recomputes over current data.
func (s *reportService) Generate(ctx context.Context, userID, id uuid.UUID) (*models.Report, []byte, error) {
	report, err := s.reportRepo.Get(ctx, userID, id)
	if err != nil {
		return nil, nil, err
	}

	content, err := s.buildContent(ctx, userID, report)
	if err != nil {
		return nil, nil, err
	}

	if err := s.reportRepo.MarkGenerated(ctx, userID, id, content); err != nil {
		return nil, nil, err
	}

	report.Status = models.ReportGenerated
	report.Content = content
	now := time.Now()
	report.GeneratedAt = &now

	s.logger.Info("Report generated",
		zap.String("report_id", id.String()),
		zap.String("type", report.ReportType))

	return report, renderPDF(report), nil
}

func (s *reportService) buildContent(ctx context.Context, userID uuid.UUID, report *models.Report) (models.JSONBMap, error) {
	since := ParseTimeRange(report.TimeRange, time.Now())
	filter := repositories.ExecutionFilter{Since: since}

	summary, err := s.executionRepo.Summarize(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	content := models.JSONBMap{
		"total_executions": summary.Total,
		"passed":           summary.Passed,
		"failed":           summary.Failed,
		"skipped":          summary.Skipped,
		"pass_rate":        summary.PassRate,
		"avg_duration_ms":  summary.AvgDurationMs,
	}

	switch report.ReportType {
	case ReportTypeCoverage:
		counts, err := s.testCaseRepo.CountByType(ctx, userID)
		if err != nil {
			return nil, err
		}
		content["test_cases_by_type"] = counts
	case ReportTypeTrend:
		daily, err := s.executionRepo.DailyCounts(ctx, userID, since)
		if err != nil {
			return nil, err
		}
		content["daily"] = daily
	}

	return content, nil
}

// renderPDF builds a single-page PDF containing the report content as
// monospaced text lines. The document is assembled object by object so
// the xref offsets stay correct.
func renderPDF(report *models.Report) []byte {
	lines := []string{
		report.Name,
		fmt.Sprintf("Type: %s   Range: %s", report.ReportType, report.TimeRange),
		fmt.Sprintf("Generated: %s", report.GeneratedAt.UTC().Format(time.RFC3339)),
		"",
	}

	keys := make([]string, 0, len(report.Content))
	for k := range report.Content {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s: %v", k, report.Content[k]))
	}

	var stream bytes.Buffer
	stream.WriteString("BT /F1 11 Tf 50 780 Td 16 TL\n")
	for _, line := range lines {
		fmt.Fprintf(&stream, "(%s) Tj T*\n", escapePDFText(line))
	}
	stream.WriteString("ET")

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Courier >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", stream.Len(), stream.String()),
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	return buf.Bytes()
}

func escapePDFText(s string) string {
	r := strings.NewReplacer("\\", "\\\\", "(", "\\(", ")", "\\)")
	return r.Replace(s)
}
