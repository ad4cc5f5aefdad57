package memberships

import (
	"time"

	"github.com/google/uuid"
	"github.com/storegrid/storegrid-backend/pkg/enums"
)

// InviteMemberInput adds an existing account to a store by email.
type InviteMemberInput struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,oneof=owner admin cashier"`
}

// UpdateMemberInput changes a member's role.
type UpdateMemberInput struct {
	Role string `json:"role" validate:"required,oneof=owner admin cashier"`
}

// MemberDTO is the public shape of a store member.
type MemberDTO struct {
	UserID   uuid.UUID        `json:"user_id"`
	Email    string           `json:"email"`
	Name     string           `json:"name"`
	Role     enums.MemberRole `json:"role"`
	JoinedAt time.Time        `json:"joined_at"`
}

// memberRow is the scan target for the membership/users join.
type memberRow struct {
	UserID    uuid.UUID        `gorm:"column:user_id"`
	Email     string           `gorm:"column:email"`
	Name      string           `gorm:"column:name"`
	Role      enums.MemberRole `gorm:"column:role"`
	CreatedAt time.Time        `gorm:"column:created_at"`
}

func membersFromRows(rows []memberRow) []MemberDTO {
	members := make([]MemberDTO, 0, len(rows))
	for _, row := range rows {
		members = append(members, MemberDTO{
			UserID:   row.UserID,
			Email:    row.Email,
			Name:     row.Name,
			Role:     row.Role,
			JoinedAt: row.CreatedAt,
		})
	}
	return members
}
