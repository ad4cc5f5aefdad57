package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storegrid/storegrid-backend/pkg/db/models"
)

// AddItemInput puts a quantity of a product into the caller's cart.
type AddItemInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Qty       int       `json:"qty" validate:"required,gte=1"`
}

// UpdateItemInput overwrites a line's quantity.
type UpdateItemInput struct {
	Qty int `json:"qty" validate:"required,gte=1"`
}

// CartItemDTO is a cart line decorated with the live product.
type CartItemDTO struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Qty       int             `json:"qty"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// CartDTO is the caller's cart for one store.
type CartDTO struct {
	Items []CartItemDTO   `json:"items"`
	Total decimal.Decimal `json:"total"`
}

func lineDTO(line *models.CartItem) CartItemDTO {
	dto := CartItemDTO{
		ID:        line.ID,
		ProductID: line.ProductID,
		Qty:       line.Qty,
	}
	if line.Product != nil {
		dto.SKU = line.Product.SKU
		dto.Name = line.Product.Name
		dto.Price = line.Product.Price
		dto.LineTotal = line.Product.Price.Mul(decimal.NewFromInt(int64(line.Qty)))
	}
	return dto
}

func cartDTO(lines []models.CartItem) CartDTO {
	cart := CartDTO{Items: make([]CartItemDTO, 0, len(lines)), Total: decimal.Zero}
	for i := range lines {
		item := lineDTO(&lines[i])
		cart.Items = append(cart.Items, item)
		cart.Total = cart.Total.Add(item.LineTotal)
	}
	return cart
}
