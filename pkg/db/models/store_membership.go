package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/storegrid/storegrid-backend/pkg/enums"
)

// StoreMembership links a user with a store and captures their role. Exactly
// one row exists per (store, user) pair.
type StoreMembership struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID   uuid.UUID        `gorm:"column:store_id;type:uuid;not null;uniqueIndex:idx_store_memberships_store_user"`
	UserID    uuid.UUID        `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_store_memberships_store_user"`
	Role      enums.MemberRole `gorm:"column:role;not null"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
