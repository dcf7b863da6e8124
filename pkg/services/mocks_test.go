package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/testforge-ai/testforge-engine/pkg/apperrors"
	"github.com/testforge-ai/testforge-engine/pkg/models"
	"github.com/testforge-ai/testforge-engine/pkg/repositories"
)

// In-memory repository fakes shared by the service tests.

type fakeUserRepo struct {
	users map[uuid.UUID]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uuid.UUID]*models.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	for _, u := range r.users {
		if u.Email == user.Email {
			return apperrors.ErrEmailTaken
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return apperrors.ErrNotFound
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	u, ok := r.users[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (r *fakeUserRepo) UpdatePlan(ctx context.Context, id uuid.UUID, plan string) error {
	u, ok := r.users[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	u.Plan = plan
	return nil
}

func (r *fakeUserRepo) UpdateTOTP(ctx context.Context, id uuid.UUID, encryptedSecret string, enabled bool) error {
	u, ok := r.users[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	u.TOTPSecret = encryptedSecret
	u.TOTPEnabled = enabled
	return nil
}

var _ repositories.UserRepository = (*fakeUserRepo)(nil)

type fakeTestCaseRepo struct {
	created []*models.TestCase
}

func (r *fakeTestCaseRepo) Create(ctx context.Context, tc *models.TestCase) error {
	if tc.ID == uuid.Nil {
		tc.ID = uuid.New()
	}
	tc.CreatedAt = time.Now()
	r.created = append(r.created, tc)
	return nil
}

func (r *fakeTestCaseRepo) Get(ctx context.Context, userID, id uuid.UUID) (*models.TestCase, error) {
	for _, tc := range r.created {
		if tc.ID == id && tc.UserID == userID {
			return tc, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeTestCaseRepo) ListByUser(ctx context.Context, userID uuid.UUID, testType string, limit int) ([]*models.TestCase, error) {
	var out []*models.TestCase
	for _, tc := range r.created {
		if tc.UserID != userID {
			continue
		}
		if testType != "" && tc.TestType != testType {
			continue
		}
		out = append(out, tc)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeTestCaseRepo) CountByType(ctx context.Context, userID uuid.UUID) (map[string]int, error) {
	counts := make(map[string]int)
	for _, tc := range r.created {
		if tc.UserID == userID {
			counts[tc.TestType]++
		}
	}
	return counts, nil
}

var _ repositories.TestCaseRepository = (*fakeTestCaseRepo)(nil)

type fakeUsageRepo struct {
	counts map[string]int
}

func newFakeUsageRepo() *fakeUsageRepo {
	return &fakeUsageRepo{counts: make(map[string]int)}
}

func (r *fakeUsageRepo) key(userID uuid.UUID, period string) string {
	return userID.String() + "/" + period
}

func (r *fakeUsageRepo) Get(ctx context.Context, userID uuid.UUID, period string) (int, error) {
	return r.counts[r.key(userID, period)], nil
}

func (r *fakeUsageRepo) Increment(ctx context.Context, userID uuid.UUID, period string, n int) error {
	r.counts[r.key(userID, period)] += n
	return nil
}

var _ repositories.UsageRepository = (*fakeUsageRepo)(nil)

type fakeTeamRepo struct {
	members map[uuid.UUID]*models.TeamMember
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{members: make(map[uuid.UUID]*models.TeamMember)}
}

func (r *fakeTeamRepo) Create(ctx context.Context, member *models.TeamMember) error {
	for _, m := range r.members {
		if m.OwnerID == member.OwnerID && m.Email == member.Email {
			return apperrors.ErrConflict
		}
	}
	if member.ID == uuid.Nil {
		member.ID = uuid.New()
	}
	member.InvitedAt = time.Now()
	r.members[member.ID] = member
	return nil
}

func (r *fakeTeamRepo) Get(ctx context.Context, ownerID, id uuid.UUID) (*models.TeamMember, error) {
	m, ok := r.members[id]
	if !ok || m.OwnerID != ownerID {
		return nil, apperrors.ErrNotFound
	}
	return m, nil
}

func (r *fakeTeamRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.TeamMember, error) {
	var out []*models.TeamMember
	for _, m := range r.members {
		if m.OwnerID == ownerID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeTeamRepo) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int, error) {
	n := 0
	for _, m := range r.members {
		if m.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

func (r *fakeTeamRepo) Update(ctx context.Context, member *models.TeamMember) error {
	if _, ok := r.members[member.ID]; !ok {
		return apperrors.ErrNotFound
	}
	r.members[member.ID] = member
	return nil
}

func (r *fakeTeamRepo) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	m, ok := r.members[id]
	if !ok || m.OwnerID != ownerID {
		return apperrors.ErrNotFound
	}
	delete(r.members, id)
	return nil
}

var _ repositories.TeamRepository = (*fakeTeamRepo)(nil)

type fakeInvoiceRepo struct {
	invoices []*models.Invoice
}

func (r *fakeInvoiceRepo) Create(ctx context.Context, invoice *models.Invoice) error {
	if invoice.ID == uuid.Nil {
		invoice.ID = uuid.New()
	}
	invoice.IssuedAt = time.Now()
	r.invoices = append(r.invoices, invoice)
	return nil
}

func (r *fakeInvoiceRepo) Get(ctx context.Context, userID, id uuid.UUID) (*models.Invoice, error) {
	for _, inv := range r.invoices {
		if inv.ID == id && inv.UserID == userID {
			return inv, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeInvoiceRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Invoice, error) {
	var out []*models.Invoice
	for _, inv := range r.invoices {
		if inv.UserID == userID {
			out = append(out, inv)
		}
	}
	return out, nil
}

var _ repositories.InvoiceRepository = (*fakeInvoiceRepo)(nil)

type fakeExecutionRepo struct {
	created []*models.TestExecution
	summary repositories.ExecutionSummary
	daily   []repositories.DailyCount
}

func (r *fakeExecutionRepo) Create(ctx context.Context, exec *models.TestExecution) error {
	if exec.ID == uuid.Nil {
		exec.ID = uuid.New()
	}
	exec.ExecutedAt = time.Now()
	r.created = append(r.created, exec)
	return nil
}

func (r *fakeExecutionRepo) List(ctx context.Context, userID uuid.UUID, filter repositories.ExecutionFilter) ([]*models.TestExecution, error) {
	var out []*models.TestExecution
	for _, e := range r.created {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeExecutionRepo) Summarize(ctx context.Context, userID uuid.UUID, filter repositories.ExecutionFilter) (*repositories.ExecutionSummary, error) {
	s := r.summary
	return &s, nil
}

func (r *fakeExecutionRepo) DailyCounts(ctx context.Context, userID uuid.UUID, since time.Time) ([]repositories.DailyCount, error) {
	return r.daily, nil
}

var _ repositories.ExecutionRepository = (*fakeExecutionRepo)(nil)

type fakeReportRepo struct {
	reports map[uuid.UUID]*models.Report
}

func newFakeReportRepo() *fakeReportRepo {
	return &fakeReportRepo{reports: make(map[uuid.UUID]*models.Report)}
}

func (r *fakeReportRepo) Create(ctx context.Context, report *models.Report) error {
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	report.CreatedAt = time.Now()
	if report.Status == "" {
		report.Status = models.ReportPending
	}
	if report.Content == nil {
		report.Content = models.JSONBMap{}
	}
	r.reports[report.ID] = report
	return nil
}

func (r *fakeReportRepo) Get(ctx context.Context, userID, id uuid.UUID) (*models.Report, error) {
	rep, ok := r.reports[id]
	if !ok || rep.UserID != userID {
		return nil, apperrors.ErrNotFound
	}
	return rep, nil
}

func (r *fakeReportRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Report, error) {
	var out []*models.Report
	for _, rep := range r.reports {
		if rep.UserID == userID {
			out = append(out, rep)
		}
	}
	return out, nil
}

func (r *fakeReportRepo) MarkGenerated(ctx context.Context, userID, id uuid.UUID, content models.JSONBMap) error {
	rep, ok := r.reports[id]
	if !ok || rep.UserID != userID {
		return apperrors.ErrNotFound
	}
	now := time.Now()
	rep.Status = models.ReportGenerated
	rep.Content = content
	rep.GeneratedAt = &now
	return nil
}

var _ repositories.ReportRepository = (*fakeReportRepo)(nil)

type fakeSettingsRepo struct {
	settings map[uuid.UUID]*models.UserSettings
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{settings: make(map[uuid.UUID]*models.UserSettings)}
}

func (r *fakeSettingsRepo) Get(ctx context.Context, userID uuid.UUID) (*models.UserSettings, error) {
	if s, ok := r.settings[userID]; ok {
		return s, nil
	}
	return models.DefaultSettings(userID), nil
}

func (r *fakeSettingsRepo) Upsert(ctx context.Context, settings *models.UserSettings) error {
	settings.UpdatedAt = time.Now()
	r.settings[settings.UserID] = settings
	return nil
}

var _ repositories.SettingsRepository = (*fakeSettingsRepo)(nil)
