package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is an immutable record of a completed purchase. Total equals the sum
// of its items' totals at the moment the order was placed.
type Order struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID   uuid.UUID       `gorm:"column:store_id;type:uuid;not null"`
	UserID    uuid.UUID       `gorm:"column:user_id;type:uuid;not null"`
	Total     decimal.Decimal `gorm:"column:total;type:numeric(14,2);not null"`
	Items     []OrderItem     `gorm:"foreignKey:OrderID"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
