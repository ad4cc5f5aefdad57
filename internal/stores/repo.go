package stores

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storegrid/storegrid-backend/pkg/db"
	"github.com/storegrid/storegrid-backend/pkg/db/models"
	pkgerrors "github.com/storegrid/storegrid-backend/pkg/errors"
	"github.com/storegrid/storegrid-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository exposes store persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, store *models.Store) (*models.Store, error)
	GetLive(ctx context.Context, storeID uuid.UUID) (*models.Store, error)
	ListForUser(ctx context.Context, userID uuid.UUID, filter ListFilter, params pagination.Params) ([]MemberStoreDTO, int64, error)
	UpdateName(ctx context.Context, storeID uuid.UUID, name string) error
	MarkDeleted(ctx context.Context, storeID uuid.UUID) error
	MarkCategoriesDeleted(ctx context.Context, storeID uuid.UUID) error
	MarkProductsDeleted(ctx context.Context, storeID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a stores repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, store *models.Store) (*models.Store, error) {
	if store.ID == uuid.Nil {
		store.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(store).Error; err != nil {
		return nil, err
	}
	return store, nil
}

// GetLive returns the store unless it has been soft-deleted.
func (r *repository) GetLive(ctx context.Context, storeID uuid.UUID) (*models.Store, error) {
	var store models.Store
	err := r.db.WithContext(ctx).
		Scopes(db.NotDeleted).
		First(&store, "id = ?", storeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, err
	}
	return &store, nil
}

func (r *repository) ListForUser(ctx context.Context, userID uuid.UUID, filter ListFilter, params pagination.Params) ([]MemberStoreDTO, int64, error) {
	query := func() *gorm.DB {
		q := r.db.WithContext(ctx).
			Model(&models.Store{}).
			Joins("JOIN store_memberships ON store_memberships.store_id = stores.id").
			Where("store_memberships.user_id = ? AND stores.is_deleted = ?", userID, false)
		if filter.Name != "" {
			q = q.Where("stores.name LIKE ?", "%"+filter.Name+"%")
		}
		return q
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []memberStoreRow
	err := query().
		Select("stores.id, stores.name, stores.owner_id, store_memberships.role, stores.created_at, stores.updated_at").
		Order("stores.name").
		Offset(params.Offset()).
		Limit(params.Limit()).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	return memberStoresFromRows(rows), total, nil
}

func (r *repository) UpdateName(ctx context.Context, storeID uuid.UUID, name string) error {
	return r.db.WithContext(ctx).
		Model(&models.Store{}).
		Where("id = ?", storeID).
		Update("name", name).Error
}

func (r *repository) MarkDeleted(ctx context.Context, storeID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Store{}).
		Where("id = ?", storeID).
		Update("is_deleted", true).Error
}

func (r *repository) MarkCategoriesDeleted(ctx context.Context, storeID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("store_id = ?", storeID).
		Update("is_deleted", true).Error
}

func (r *repository) MarkProductsDeleted(ctx context.Context, storeID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("store_id = ?", storeID).
		Update("is_deleted", true).Error
}
