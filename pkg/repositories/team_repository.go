package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/testforge-ai/testforge-engine/pkg/apperrors"
	"github.com/testforge-ai/testforge-engine/pkg/database"
	"github.com/testforge-ai/testforge-engine/pkg/models"
)

// TeamRepository defines the interface for team member data access.
type TeamRepository interface {
	Create(ctx context.Context, member *models.TeamMember) error
	Get(ctx context.Context, ownerID, id uuid.UUID) (*models.TeamMember, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.TeamMember, error)
	CountByOwner(ctx context.Context, ownerID uuid.UUID) (int, error)
	Update(ctx context.Context, member *models.TeamMember) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

type teamRepository struct {
	db *database.DB
}

// NewTeamRepository creates a new team repository.
func NewTeamRepository(db *database.DB) TeamRepository {
	return &teamRepository{db: db}
}

// Create inserts an invited member. Duplicate (owner, email) maps to ErrConflict.
func (r *teamRepository) Create(ctx context.Context, member *models.TeamMember) error {
	if member.ID == uuid.Nil {
		member.ID = uuid.New()
	}
	if member.InvitedAt.IsZero() {
		member.InvitedAt = time.Now()
	}
	if member.Status == "" {
		member.Status = models.MemberInvited
	}
	if member.Role == "" {
		member.Role = models.RoleUser
	}

	query := `
		INSERT INTO team_members (id, owner_id, email, name, role, status, invited_at, joined_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(ctx, query,
		member.ID,
		member.OwnerID,
		member.Email,
		member.Name,
		member.Role,
		member.Status,
		member.InvitedAt,
		member.JoinedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrConflict
		}
		return fmt.Errorf("failed to create team member: %w", err)
	}

	return nil
}

const memberColumns = `id, owner_id, email, name, role, status, invited_at, joined_at`

func scanMember(row pgx.Row) (*models.TeamMember, error) {
	var m models.TeamMember
	err := row.Scan(
		&m.ID,
		&m.OwnerID,
		&m.Email,
		&m.Name,
		&m.Role,
		&m.Status,
		&m.InvitedAt,
		&m.JoinedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan team member: %w", err)
	}
	return &m, nil
}

// Get retrieves a member by ID, scoped to the owning account.
func (r *teamRepository) Get(ctx context.Context, ownerID, id uuid.UUID) (*models.TeamMember, error) {
	query := `SELECT ` + memberColumns + ` FROM team_members WHERE id = $1 AND owner_id = $2`
	return scanMember(r.db.QueryRow(ctx, query, id, ownerID))
}

// ListByOwner returns the team, invited first then by invite time.
func (r *teamRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.TeamMember, error) {
	query := `SELECT ` + memberColumns + ` FROM team_members WHERE owner_id = $1 ORDER BY invited_at`

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}
	defer rows.Close()

	var members []*models.TeamMember
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}

	return members, rows.Err()
}

// CountByOwner returns the number of seats in use (any status).
func (r *teamRepository) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM team_members WHERE owner_id = $1`, ownerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count team members: %w", err)
	}
	return count, nil
}

// Update saves role, status and join time.
func (r *teamRepository) Update(ctx context.Context, member *models.TeamMember) error {
	query := `
		UPDATE team_members
		SET role = $3, status = $4, joined_at = $5
		WHERE id = $1 AND owner_id = $2`

	tag, err := r.db.Exec(ctx, query, member.ID, member.OwnerID, member.Role, member.Status, member.JoinedAt)
	if err != nil {
		return fmt.Errorf("failed to update team member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Delete removes a member from the team.
func (r *teamRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM team_members WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete team member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
