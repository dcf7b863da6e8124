package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/testforge-ai/testforge-engine/pkg/apperrors"
	"github.com/testforge-ai/testforge-engine/pkg/models"
	"github.com/testforge-ai/testforge-engine/pkg/repositories"
)

// InviteMemberRequest is the payload for POST /api/team/invite.
type InviteMemberRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Validate checks the invite fields.
func (r *InviteMemberRequest) Validate() error {
	if !strings.Contains(r.Email, "@") {
		return fmt.Errorf("email is invalid")
	}
	if r.Role != "" && !models.IsValidRole(r.Role) {
		return apperrors.ErrInvalidRole
	}
	return nil
}

// UpdateMemberRequest is the payload for PATCH /api/team/{id}.
type UpdateMemberRequest struct {
	Name   *string `json:"name,omitempty"`
	Role   *string `json:"role,omitempty"`
	Status *string `json:"status,omitempty"`
}

// Validate checks the updatable fields.
func (r *UpdateMemberRequest) Validate() error {
	if r.Role != nil && !models.IsValidRole(*r.Role) {
		return apperrors.ErrInvalidRole
	}
	if r.Status != nil {
		switch *r.Status {
		case models.MemberInvited, models.MemberActive:
		default:
			return fmt.Errorf("status must be one of: invited, active")
		}
	}
	return nil
}

// TeamService manages the seats on a user's team.
type TeamService interface {
	Invite(ctx context.Context, ownerID uuid.UUID, req *InviteMemberRequest) (*models.TeamMember, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]*models.TeamMember, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, req *UpdateMemberRequest) (*models.TeamMember, error)
	Remove(ctx context.Context, ownerID, id uuid.UUID) error
}

type teamService struct {
	teamRepo repositories.TeamRepository
	userRepo repositories.UserRepository
	plans    *PlanCatalog
	logger   *zap.Logger
}

// NewTeamService creates a new team service.
func NewTeamService(
	teamRepo repositories.TeamRepository,
	userRepo repositories.UserRepository,
	plans *PlanCatalog,
	logger *zap.Logger,
) TeamService {
	return &teamService{
		teamRepo: teamRepo,
		userRepo: userRepo,
		plans:    plans,
		logger:   logger.Named("team"),
	}
}

var _ TeamService = (*teamService)(nil)

// Invite adds a seat, enforcing the owner's plan seat limit. The owner
// occupies one seat, so a plan with N seats allows N-1 invites.
func (s *teamService) Invite(ctx context.Context, ownerID uuid.UUID, req *InviteMemberRequest) (*models.TeamMember, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	owner, err := s.userRepo.GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	plan := s.plans.Get(owner.Plan)
	if plan.TeamSeats != models.UnlimitedQuota {
		count, err := s.teamRepo.CountByOwner(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		if count+1 >= plan.TeamSeats {
			return nil, apperrors.ErrSeatLimitReached
		}
	}

	role := req.Role
	if role == "" {
		role = models.RoleViewer
	}

	member := &models.TeamMember{
		OwnerID: ownerID,
		Email:   strings.ToLower(strings.TrimSpace(req.Email)),
		Name:    strings.TrimSpace(req.Name),
		Role:    role,
		Status:  models.MemberInvited,
	}
	if err := s.teamRepo.Create(ctx, member); err != nil {
		return nil, err
	}

	s.logger.Info("Member invited",
		zap.String("owner_id", ownerID.String()),
		zap.String("member_id", member.ID.String()))

	return member, nil
}

// List returns the owner's team.
func (s *teamService) List(ctx context.Context, ownerID uuid.UUID) ([]*models.TeamMember, error) {
	return s.teamRepo.ListByOwner(ctx, ownerID)
}

// Update applies changes to one member. Activating an invited member
// stamps joined_at.
func (s *teamService) Update(ctx context.Context, ownerID, id uuid.UUID, req *UpdateMemberRequest) (*models.TeamMember, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	member, err := s.teamRepo.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		member.Name = strings.TrimSpace(*req.Name)
	}
	if req.Role != nil {
		member.Role = *req.Role
	}
	if req.Status != nil {
		if *req.Status == models.MemberActive && member.Status == models.MemberInvited {
			now := time.Now()
			member.JoinedAt = &now
		}
		member.Status = *req.Status
	}

	if err := s.teamRepo.Update(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// Remove deletes a seat.
func (s *teamService) Remove(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := s.teamRepo.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	s.logger.Info("Member removed",
		zap.String("owner_id", ownerID.String()),
		zap.String("member_id", id.String()))
	return nil
}
