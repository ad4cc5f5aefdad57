package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storegrid/storegrid-backend/pkg/db/models"
)

// OrderItemDTO is an immutable purchase line snapshot.
type OrderItemDTO struct {
	ID         uuid.UUID       `json:"id"`
	ProductID  uuid.UUID       `json:"product_id"`
	Name       string          `json:"name"`
	SKU        string          `json:"sku"`
	Price      decimal.Decimal `json:"price"`
	Qty        int             `json:"qty"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// OrderDTO is an order decorated with the purchaser and store names.
type OrderDTO struct {
	ID          uuid.UUID       `json:"id"`
	StoreID     uuid.UUID       `json:"store_id"`
	StoreName   string          `json:"store_name"`
	UserID      uuid.UUID       `json:"user_id"`
	CashierName string          `json:"cashier_name"`
	Total       decimal.Decimal `json:"total"`
	Items       []OrderItemDTO  `json:"items"`
	CreatedAt   time.Time       `json:"created_at"`
}

// orderNamesRow is the scan target for the users/stores decoration join.
type orderNamesRow struct {
	ID          uuid.UUID `gorm:"column:id"`
	CashierName string    `gorm:"column:cashier_name"`
	StoreName   string    `gorm:"column:store_name"`
}

func itemDTO(item *models.OrderItem) OrderItemDTO {
	return OrderItemDTO{
		ID:         item.ID,
		ProductID:  item.ProductID,
		Name:       item.Name,
		SKU:        item.SKU,
		Price:      item.Price,
		Qty:        item.Qty,
		TotalPrice: item.TotalPrice,
	}
}

func orderDTO(order *models.Order, names orderNamesRow) OrderDTO {
	dto := OrderDTO{
		ID:          order.ID,
		StoreID:     order.StoreID,
		StoreName:   names.StoreName,
		UserID:      order.UserID,
		CashierName: names.CashierName,
		Total:       order.Total,
		Items:       make([]OrderItemDTO, 0, len(order.Items)),
		CreatedAt:   order.CreatedAt,
	}
	for i := range order.Items {
		dto.Items = append(dto.Items, itemDTO(&order.Items[i]))
	}
	return dto
}
