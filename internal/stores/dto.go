package stores

import (
	"time"

	"github.com/google/uuid"
	"github.com/storegrid/storegrid-backend/pkg/db/models"
	"github.com/storegrid/storegrid-backend/pkg/enums"
)

// CreateStoreInput opens a new store owned by the caller.
type CreateStoreInput struct {
	Name string `json:"name" validate:"required,min=1,max=160"`
}

// UpdateStoreInput renames a store.
type UpdateStoreInput struct {
	Name string `json:"name" validate:"required,min=1,max=160"`
}

// ListFilter narrows the caller's store listing.
type ListFilter struct {
	Name string
}

// StoreDTO is the public shape of a store.
type StoreDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	OwnerID   uuid.UUID `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MemberStoreDTO is a store listed from the caller's memberships, annotated
// with the caller's role there.
type MemberStoreDTO struct {
	StoreDTO
	Role enums.MemberRole `json:"role"`
}

// memberStoreRow is the scan target for the stores/memberships join.
type memberStoreRow struct {
	ID        uuid.UUID        `gorm:"column:id"`
	Name      string           `gorm:"column:name"`
	OwnerID   uuid.UUID        `gorm:"column:owner_id"`
	Role      enums.MemberRole `gorm:"column:role"`
	CreatedAt time.Time        `gorm:"column:created_at"`
	UpdatedAt time.Time        `gorm:"column:updated_at"`
}

func storeDTO(store *models.Store) StoreDTO {
	return StoreDTO{
		ID:        store.ID,
		Name:      store.Name,
		OwnerID:   store.OwnerID,
		CreatedAt: store.CreatedAt,
		UpdatedAt: store.UpdatedAt,
	}
}

func memberStoresFromRows(rows []memberStoreRow) []MemberStoreDTO {
	out := make([]MemberStoreDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, MemberStoreDTO{
			StoreDTO: StoreDTO{
				ID:        row.ID,
				Name:      row.Name,
				OwnerID:   row.OwnerID,
				CreatedAt: row.CreatedAt,
				UpdatedAt: row.UpdatedAt,
			},
			Role: row.Role,
		})
	}
	return out
}
