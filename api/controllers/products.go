package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/storegrid/storegrid-backend/api/responses"
	"github.com/storegrid/storegrid-backend/api/validators"
	"github.com/storegrid/storegrid-backend/internal/products"
	"github.com/storegrid/storegrid-backend/pkg/logger"
)

// ProductsController exposes catalog CRUD under a store.
type ProductsController struct {
	svc  products.Service
	logg *logger.Logger
}

func NewProductsController(svc products.Service, logg *logger.Logger) *ProductsController {
	return &ProductsController{svc: svc, logg: logg}
}

func (c *ProductsController) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	storeID, err := requireStoreID(ctx)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	var input products.CreateProductInput
	if err := validators.DecodeJSONBody(r, &input); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	product, err := c.svc.Create(ctx, storeID, input)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccessStatus(w, http.StatusCreated, product)
}

func (c *ProductsController) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	storeID, err := requireStoreID(ctx)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	params, err := validators.ParsePagination(r)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	filter := products.ListFilter{
		Name: strings.TrimSpace(r.URL.Query().Get("name")),
		SKU:  strings.TrimSpace(r.URL.Query().Get("sku")),
	}

	rows, paging, err := c.svc.List(ctx, storeID, filter, params)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccessPaged(w, rows, paging)
}

func (c *ProductsController) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	storeID, err := requireStoreID(ctx)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	productID, err := uuidParam(r, "productID")
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	product, err := c.svc.Get(ctx, storeID, productID)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, product)
}

func (c *ProductsController) GetBySKU(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	storeID, err := requireStoreID(ctx)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	product, err := c.svc.GetBySKU(ctx, storeID, chi.URLParam(r, "sku"))
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, product)
}

func (c *ProductsController) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	storeID, err := requireStoreID(ctx)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	productID, err := uuidParam(r, "productID")
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	var input products.UpdateProductInput
	if err := validators.DecodeJSONBody(r, &input); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	product, err := c.svc.Update(ctx, storeID, productID, input)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, product)
}

func (c *ProductsController) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	storeID, err := requireStoreID(ctx)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	productID, err := uuidParam(r, "productID")
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	if err := c.svc.Remove(ctx, storeID, productID); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, map[string]string{"status": "deleted"})
}
