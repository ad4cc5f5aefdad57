package memberships

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storegrid/storegrid-backend/pkg/db/models"
	"github.com/storegrid/storegrid-backend/pkg/enums"
	"github.com/storegrid/storegrid-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository exposes membership persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Get(ctx context.Context, storeID, userID uuid.UUID) (*models.StoreMembership, error)
	Create(ctx context.Context, membership *models.StoreMembership) (*models.StoreMembership, error)
	UpdateRole(ctx context.Context, storeID, userID uuid.UUID, role enums.MemberRole) (bool, error)
	Delete(ctx context.Context, storeID, userID uuid.UUID) (bool, error)
	ListByStore(ctx context.Context, storeID uuid.UUID, params pagination.Params) ([]MemberDTO, int64, error)
	ResolveRole(ctx context.Context, userID, storeID uuid.UUID) (enums.MemberRole, error)
	UserHasRole(ctx context.Context, userID, storeID uuid.UUID, roles ...enums.MemberRole) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Get(ctx context.Context, storeID, userID uuid.UUID) (*models.StoreMembership, error) {
	var membership models.StoreMembership
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND user_id = ?", storeID, userID).
		First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

func (r *repository) Create(ctx context.Context, membership *models.StoreMembership) (*models.StoreMembership, error) {
	if membership.ID == uuid.Nil {
		membership.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(membership).Error; err != nil {
		return nil, err
	}
	return membership, nil
}

func (r *repository) UpdateRole(ctx context.Context, storeID, userID uuid.UUID, role enums.MemberRole) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.StoreMembership{}).
		Where("store_id = ? AND user_id = ?", storeID, userID).
		Update("role", role)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) Delete(ctx context.Context, storeID, userID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("store_id = ? AND user_id = ?", storeID, userID).
		Delete(&models.StoreMembership{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) ListByStore(ctx context.Context, storeID uuid.UUID, params pagination.Params) ([]MemberDTO, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.StoreMembership{}).
		Where("store_id = ?", storeID).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var rows []memberRow
	err = r.db.WithContext(ctx).
		Model(&models.StoreMembership{}).
		Where("store_memberships.store_id = ?", storeID).
		Select("store_memberships.user_id, users.email, users.name, store_memberships.role, store_memberships.created_at").
		Joins("JOIN users ON users.id = store_memberships.user_id").
		Order("store_memberships.created_at").
		Offset(params.Offset()).
		Limit(params.Limit()).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	return membersFromRows(rows), total, nil
}

// ResolveRole returns the user's role for a live store, or the empty role when
// the user is not a member or the store is gone.
func (r *repository) ResolveRole(ctx context.Context, userID, storeID uuid.UUID) (enums.MemberRole, error) {
	var membership models.StoreMembership
	err := r.db.WithContext(ctx).
		Model(&models.StoreMembership{}).
		Select("store_memberships.*").
		Joins("JOIN stores ON stores.id = store_memberships.store_id AND stores.is_deleted = ?", false).
		Where("store_memberships.user_id = ? AND store_memberships.store_id = ?", userID, storeID).
		First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return membership.Role, nil
}

// UserHasRole reports whether the user holds one of the provided roles for the store.
func (r *repository) UserHasRole(ctx context.Context, userID, storeID uuid.UUID, roles ...enums.MemberRole) (bool, error) {
	if len(roles) == 0 {
		return false, nil
	}

	role, err := r.ResolveRole(ctx, userID, storeID)
	if err != nil {
		return false, err
	}
	if role == "" {
		return false, nil
	}
	for _, allowed := range roles {
		if role == allowed {
			return true, nil
		}
	}
	return false, nil
}
