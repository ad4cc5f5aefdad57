package cart

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storegrid/storegrid-backend/internal/products"
	"github.com/storegrid/storegrid-backend/pkg/db/models"
	pkgerrors "github.com/storegrid/storegrid-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	ddl := []string{`
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  store_id TEXT NOT NULL,
  sku TEXT NOT NULL,
  name TEXT NOT NULL,
  price TEXT NOT NULL,
  stock INTEGER NOT NULL DEFAULT 0,
  is_deleted INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  store_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  qty INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (store_id, user_id, product_id)
);`}
	for _, stmt := range ddl {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

type cartFixture struct {
	db      *gorm.DB
	svc     Service
	storeID uuid.UUID
	userID  uuid.UUID
}

func newCartFixture(t *testing.T) *cartFixture {
	t.Helper()

	db := setupCartTestDB(t)
	svc, err := NewService(NewRepository(db), products.NewRepository(db))
	require.NoError(t, err)

	return &cartFixture{
		db:      db,
		svc:     svc,
		storeID: uuid.New(),
		userID:  uuid.New(),
	}
}

func (f *cartFixture) newProduct(t *testing.T, name string, priceStr string, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:      uuid.New(),
		StoreID: f.storeID,
		SKU:     "SKU-" + name,
		Name:    name,
		Price:   decimal.RequireFromString(priceStr),
		Stock:   stock,
	}
	require.NoError(t, f.db.Create(product).Error)
	return product
}

func TestAddItemMergesQuantities(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()
	product := f.newProduct(t, "Chips", "9.99", 10)

	first, err := f.svc.AddItem(ctx, f.storeID, f.userID, AddItemInput{ProductID: product.ID, Qty: 4})
	require.NoError(t, err)
	assert.Equal(t, 4, first.Qty)

	second, err := f.svc.AddItem(ctx, f.storeID, f.userID, AddItemInput{ProductID: product.ID, Qty: 3})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 7, second.Qty)

	cart, err := f.svc.List(ctx, f.storeID, f.userID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 7, cart.Items[0].Qty)
}

func TestAddItemRejectsExcessQuantity(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()
	product := f.newProduct(t, "Chips", "9.99", 10)

	_, err := f.svc.AddItem(ctx, f.storeID, f.userID, AddItemInput{ProductID: product.ID, Qty: 4})
	require.NoError(t, err)

	// merged quantity 11 exceeds the stock of 10
	_, err = f.svc.AddItem(ctx, f.storeID, f.userID, AddItemInput{ProductID: product.ID, Qty: 7})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInsufficientStock, typed.Code())
	assert.Contains(t, typed.Message(), "Chips")

	// the existing line is untouched
	cart, err := f.svc.List(ctx, f.storeID, f.userID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 4, cart.Items[0].Qty)
}

func TestAddItemUnknownProductIsNotFound(t *testing.T) {
	f := newCartFixture(t)

	_, err := f.svc.AddItem(context.Background(), f.storeID, f.userID, AddItemInput{ProductID: uuid.New(), Qty: 1})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestAddItemDeletedOrForeignProductIsNotFound(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	deleted := f.newProduct(t, "Gone", "1.00", 5)
	require.NoError(t, f.db.Model(&models.Product{}).Where("id = ?", deleted.ID).Update("is_deleted", true).Error)

	_, err := f.svc.AddItem(ctx, f.storeID, f.userID, AddItemInput{ProductID: deleted.ID, Qty: 1})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	foreign := &models.Product{
		ID:      uuid.New(),
		StoreID: uuid.New(),
		SKU:     "SKU-F",
		Name:    "Foreign",
		Price:   decimal.RequireFromString("2.00"),
		Stock:   5,
	}
	require.NoError(t, f.db.Create(foreign).Error)

	_, err = f.svc.AddItem(ctx, f.storeID, f.userID, AddItemInput{ProductID: foreign.ID, Qty: 1})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestListComputesTotalsAndSkipsDeletedProducts(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	chips := f.newProduct(t, "Chips", "9.99", 10)
	cola := f.newProduct(t, "Cola", "2.50", 10)

	_, err := f.svc.AddItem(ctx, f.storeID, f.userID, AddItemInput{ProductID: chips.ID, Qty: 2})
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, f.storeID, f.userID, AddItemInput{ProductID: cola.ID, Qty: 4})
	require.NoError(t, err)

	cart, err := f.svc.List(ctx, f.storeID, f.userID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	assert.True(t, cart.Total.Equal(decimal.RequireFromString("29.98")), "got total %s", cart.Total)

	require.NoError(t, f.db.Model(&models.Product{}).Where("id = ?", cola.ID).Update("is_deleted", true).Error)

	cart, err = f.svc.List(ctx, f.storeID, f.userID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, chips.ID, cart.Items[0].ProductID)
	assert.True(t, cart.Total.Equal(decimal.RequireFromString("19.98")))
}

func TestUpdateItemOverwritesQty(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()
	product := f.newProduct(t, "Chips", "9.99", 10)

	line, err := f.svc.AddItem(ctx, f.storeID, f.userID, AddItemInput{ProductID: product.ID, Qty: 2})
	require.NoError(t, err)

	updated, err := f.svc.UpdateItem(ctx, f.storeID, f.userID, line.ID, UpdateItemInput{Qty: 9})
	require.NoError(t, err)
	assert.Equal(t, 9, updated.Qty)

	_, err = f.svc.UpdateItem(ctx, f.storeID, f.userID, line.ID, UpdateItemInput{Qty: 11})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeInsufficientStock, pkgerrors.As(err).Code())
}

func TestRemoveItemReturnsRemovedLine(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()
	product := f.newProduct(t, "Chips", "9.99", 10)

	line, err := f.svc.AddItem(ctx, f.storeID, f.userID, AddItemInput{ProductID: product.ID, Qty: 2})
	require.NoError(t, err)

	removed, err := f.svc.RemoveItem(ctx, f.storeID, f.userID, line.ID)
	require.NoError(t, err)
	assert.Equal(t, line.ID, removed.ID)
	assert.Equal(t, "Chips", removed.Name)

	cart, err := f.svc.List(ctx, f.storeID, f.userID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	_, err = f.svc.RemoveItem(ctx, f.storeID, f.userID, line.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}
