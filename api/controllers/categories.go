package controllers

import (
	"net/http"
	"strings"

	"github.com/storegrid/storegrid-backend/api/responses"
	"github.com/storegrid/storegrid-backend/api/validators"
	"github.com/storegrid/storegrid-backend/internal/categories"
	"github.com/storegrid/storegrid-backend/pkg/logger"
)

// CategoriesController exposes category CRUD under a store.
type CategoriesController struct {
	svc  categories.Service
	logg *logger.Logger
}

func NewCategoriesController(svc categories.Service, logg *logger.Logger) *CategoriesController {
	return &CategoriesController{svc: svc, logg: logg}
}

func (c *CategoriesController) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	storeID, err := requireStoreID(ctx)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	var input categories.CreateCategoryInput
	if err := validators.DecodeJSONBody(r, &input); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	category, err := c.svc.Create(ctx, storeID, input)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccessStatus(w, http.StatusCreated, category)
}

func (c *CategoriesController) List(w http.ResponseWriter, r *http.Request) {
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
	filter := categories.ListFilter{Name: strings.TrimSpace(r.URL.Query().Get("name"))}

	rows, paging, err := c.svc.List(ctx, storeID, filter, params)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccessPaged(w, rows, paging)
}

func (c *CategoriesController) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	storeID, err := requireStoreID(ctx)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	categoryID, err := uuidParam(r, "categoryID")
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	category, err := c.svc.Get(ctx, storeID, categoryID)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, category)
}

func (c *CategoriesController) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	storeID, err := requireStoreID(ctx)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	categoryID, err := uuidParam(r, "categoryID")
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	var input categories.UpdateCategoryInput
	if err := validators.DecodeJSONBody(r, &input); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	category, err := c.svc.Update(ctx, storeID, categoryID, input)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, category)
}

func (c *CategoriesController) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	storeID, err := requireStoreID(ctx)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	categoryID, err := uuidParam(r, "categoryID")
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	if err := c.svc.Remove(ctx, storeID, categoryID); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, map[string]string{"status": "deleted"})
}
