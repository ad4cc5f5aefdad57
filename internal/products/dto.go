package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storegrid/storegrid-backend/pkg/db/models"
)

// CreateProductInput adds a listing to a store.
type CreateProductInput struct {
	SKU   string          `json:"sku" validate:"required,min=1,max=64"`
	Name  string          `json:"name" validate:"required,min=1,max=160"`
	Price decimal.Decimal `json:"price" validate:"required"`
	Stock int             `json:"stock" validate:"gte=0"`
}

// UpdateProductInput overwrites the mutable fields of a listing.
type UpdateProductInput struct {
	Name  *string          `json:"name,omitempty" validate:"omitempty,min=1,max=160"`
	Price *decimal.Decimal `json:"price,omitempty"`
	Stock *int             `json:"stock,omitempty" validate:"omitempty,gte=0"`
}

// ListFilter narrows the product listing.
type ListFilter struct {
	Name string
	SKU  string
}

// ProductDTO is the public shape of a product.
type ProductDTO struct {
	ID        uuid.UUID       `json:"id"`
	StoreID   uuid.UUID       `json:"store_id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func productDTO(product *models.Product) ProductDTO {
	return ProductDTO{
		ID:        product.ID,
		StoreID:   product.StoreID,
		SKU:       product.SKU,
		Name:      product.Name,
		Price:     product.Price,
		Stock:     product.Stock,
		CreatedAt: product.CreatedAt,
		UpdatedAt: product.UpdatedAt,
	}
}

func productsToDTO(rows []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, productDTO(&rows[i]))
	}
	return out
}
