package orders

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storegrid/storegrid-backend/internal/cart"
	"github.com/storegrid/storegrid-backend/pkg/db/models"
	pkgerrors "github.com/storegrid/storegrid-backend/pkg/errors"
	"github.com/storegrid/storegrid-backend/pkg/logger"
	"github.com/storegrid/storegrid-backend/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testTxRunner struct {
	db *gorm.DB
}

func (r testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	ddl := []string{`
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS stores (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  owner_id TEXT NOT NULL,
  is_deleted INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`, `
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
);`, `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  store_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  total TEXT NOT NULL,
  created_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  sku TEXT NOT NULL,
  price TEXT NOT NULL,
  qty INTEGER NOT NULL,
  total_price TEXT NOT NULL,
  created_at DATETIME
);`}
	for _, stmt := range ddl {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

type ordersFixture struct {
	db      *gorm.DB
	svc     Service
	storeID uuid.UUID
	userID  uuid.UUID
}

func newOrdersFixture(t *testing.T) *ordersFixture {
	t.Helper()

	db := setupOrdersTestDB(t)

	user := &models.User{ID: uuid.New(), Email: "cashier@example.com", Name: "Dana Cashier", PasswordHash: "x"}
	require.NoError(t, db.Create(user).Error)
	store := &models.Store{ID: uuid.New(), Name: "Main Street", OwnerID: user.ID}
	require.NoError(t, db.Create(store).Error)

	logg := logger.New(logger.Options{ServiceName: "orders-test", Output: io.Discard})
	svc, err := NewService(testTxRunner{db: db}, NewRepository(db), cart.NewRepository(db), logg)
	require.NoError(t, err)

	return &ordersFixture{db: db, svc: svc, storeID: store.ID, userID: user.ID}
}

func (f *ordersFixture) newProduct(t *testing.T, name, priceStr string, stock int) *models.Product {
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

func (f *ordersFixture) addCartLine(t *testing.T, productID uuid.UUID, qty int) {
	t.Helper()
	require.NoError(t, f.db.Create(&models.CartItem{
		ID:        uuid.New(),
		StoreID:   f.storeID,
		UserID:    f.userID,
		ProductID: productID,
		Qty:       qty,
	}).Error)
}

func (f *ordersFixture) stockOf(t *testing.T, productID uuid.UUID) int {
	t.Helper()
	var stock int
	require.NoError(t, f.db.Raw("SELECT stock FROM products WHERE id = ?", productID).Scan(&stock).Error)
	return stock
}

func (f *ordersFixture) cartSize(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(&models.CartItem{}).
		Where("store_id = ? AND user_id = ?", f.storeID, f.userID).
		Count(&count).Error)
	return count
}

func (f *ordersFixture) orderCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&count).Error)
	return count
}

func TestCreateOrderFromCart(t *testing.T) {
	f := newOrdersFixture(t)
	ctx := context.Background()

	chips := f.newProduct(t, "Chips", "9.99", 10)
	f.addCartLine(t, chips.ID, 4)

	order, err := f.svc.Create(ctx, f.storeID, f.userID)
	require.NoError(t, err)

	assert.True(t, order.Total.Equal(decimal.RequireFromString("39.96")), "got total %s", order.Total)
	assert.Equal(t, "Dana Cashier", order.CashierName)
	assert.Equal(t, "Main Street", order.StoreName)
	require.Len(t, order.Items, 1)
	assert.Equal(t, chips.ID, order.Items[0].ProductID)
	assert.Equal(t, "Chips", order.Items[0].Name)
	assert.Equal(t, 4, order.Items[0].Qty)
	assert.True(t, order.Items[0].Price.Equal(decimal.RequireFromString("9.99")))
	assert.True(t, order.Items[0].TotalPrice.Equal(decimal.RequireFromString("39.96")))

	assert.Equal(t, 6, f.stockOf(t, chips.ID))
	assert.Equal(t, int64(0), f.cartSize(t))
}

func TestCreateOrderEmptyCart(t *testing.T) {
	f := newOrdersFixture(t)

	_, err := f.svc.Create(context.Background(), f.storeID, f.userID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeEmptyCart, pkgerrors.As(err).Code())
	assert.Equal(t, int64(0), f.orderCount(t))
}

func TestCreateOrderInsufficientStockRollsBackEverything(t *testing.T) {
	f := newOrdersFixture(t)
	ctx := context.Background()

	chips := f.newProduct(t, "Chips", "9.99", 10)
	cola := f.newProduct(t, "Cola", "2.50", 3)

	f.addCartLine(t, chips.ID, 4)
	f.addCartLine(t, cola.ID, 5) // exceeds cola's stock of 3

	_, err := f.svc.Create(ctx, f.storeID, f.userID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInsufficientStock, typed.Code())
	assert.Contains(t, typed.Message(), "Cola")

	// both decrements rolled back, cart intact, no order rows
	assert.Equal(t, 10, f.stockOf(t, chips.ID))
	assert.Equal(t, 3, f.stockOf(t, cola.ID))
	assert.Equal(t, int64(2), f.cartSize(t))
	assert.Equal(t, int64(0), f.orderCount(t))
}

func TestCreateOrderLastUnitGoesToOneBuyer(t *testing.T) {
	f := newOrdersFixture(t)
	ctx := context.Background()

	rival := &models.User{ID: uuid.New(), Email: "rival@example.com", Name: "Riley Rival", PasswordHash: "x"}
	require.NoError(t, f.db.Create(rival).Error)

	chips := f.newProduct(t, "Chips", "9.99", 1)
	f.addCartLine(t, chips.ID, 1)
	require.NoError(t, f.db.Create(&models.CartItem{
		ID:        uuid.New(),
		StoreID:   f.storeID,
		UserID:    rival.ID,
		ProductID: chips.ID,
		Qty:       1,
	}).Error)

	_, err := f.svc.Create(ctx, f.storeID, f.userID)
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, f.storeID, rival.ID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInsufficientStock, typed.Code())
	assert.Contains(t, typed.Message(), "Chips")

	// the loser's decrement rolled back and their cart line survived
	assert.Equal(t, 0, f.stockOf(t, chips.ID))
	assert.Equal(t, int64(1), f.orderCount(t))

	var rivalLines int64
	require.NoError(t, f.db.Model(&models.CartItem{}).
		Where("store_id = ? AND user_id = ?", f.storeID, rival.ID).
		Count(&rivalLines).Error)
	assert.Equal(t, int64(1), rivalLines)
}

func TestCreateOrderMultiLineTotals(t *testing.T) {
	f := newOrdersFixture(t)
	ctx := context.Background()

	chips := f.newProduct(t, "Chips", "9.99", 10)
	cola := f.newProduct(t, "Cola", "2.50", 10)

	f.addCartLine(t, chips.ID, 2)
	f.addCartLine(t, cola.ID, 4)

	order, err := f.svc.Create(ctx, f.storeID, f.userID)
	require.NoError(t, err)

	// 2*9.99 + 4*2.50 = 29.98
	assert.True(t, order.Total.Equal(decimal.RequireFromString("29.98")), "got total %s", order.Total)
	require.Len(t, order.Items, 2)
	assert.Equal(t, 8, f.stockOf(t, chips.ID))
	assert.Equal(t, 6, f.stockOf(t, cola.ID))
}

func TestSnapshotsSurviveProductEdits(t *testing.T) {
	f := newOrdersFixture(t)
	ctx := context.Background()

	chips := f.newProduct(t, "Chips", "9.99", 10)
	f.addCartLine(t, chips.ID, 1)

	order, err := f.svc.Create(ctx, f.storeID, f.userID)
	require.NoError(t, err)

	require.NoError(t, f.db.Model(&models.Product{}).
		Where("id = ?", chips.ID).
		Updates(map[string]any{"name": "Rebranded", "price": "19.99"}).Error)

	got, err := f.svc.FindOne(ctx, f.storeID, order.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Chips", got.Items[0].Name)
	assert.True(t, got.Items[0].Price.Equal(decimal.RequireFromString("9.99")))
}

func TestFindOneWrongStoreIsNotFound(t *testing.T) {
	f := newOrdersFixture(t)
	ctx := context.Background()

	chips := f.newProduct(t, "Chips", "9.99", 10)
	f.addCartLine(t, chips.ID, 1)

	order, err := f.svc.Create(ctx, f.storeID, f.userID)
	require.NoError(t, err)

	_, err = f.svc.FindOne(ctx, uuid.New(), order.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestFindAllPaginatesNewestFirst(t *testing.T) {
	f := newOrdersFixture(t)
	ctx := context.Background()

	chips := f.newProduct(t, "Chips", "1.00", 100)
	for i := 0; i < 3; i++ {
		f.addCartLine(t, chips.ID, 1)
		_, err := f.svc.Create(ctx, f.storeID, f.userID)
		require.NoError(t, err)
	}

	rows, paging, err := f.svc.FindAll(ctx, f.storeID, pagination.Params{Page: 1, Size: 2})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(2), paging.TotalPage)
	assert.Equal(t, "Dana Cashier", rows[0].CashierName)

	rows, _, err = f.svc.FindAll(ctx, f.storeID, pagination.Params{Page: 2, Size: 2})
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
