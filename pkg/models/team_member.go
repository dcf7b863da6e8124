package models

import (
	"time"

	"github.com/google/uuid"
)

// Team member status constants.
const (
	MemberInvited = "invited"
	MemberActive  = "active"
)

// TeamMember is a seat on the owning user's team.
type TeamMember struct {
	ID        uuid.UUID  `json:"id"`
	OwnerID   uuid.UUID  `json:"owner_id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      string     `json:"role"`
	Status    string     `json:"status"`
	InvitedAt time.Time  `json:"invited_at"`
	JoinedAt  *time.Time `json:"joined_at,omitempty"`
}
