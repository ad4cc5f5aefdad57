package controllers

import (
	"net/http"
	"strings"

	"github.com/storegrid/storegrid-backend/api/responses"
	"github.com/storegrid/storegrid-backend/api/validators"
	"github.com/storegrid/storegrid-backend/internal/stores"
	"github.com/storegrid/storegrid-backend/pkg/logger"
)

// StoresController exposes store lifecycle endpoints.
type StoresController struct {
	svc  stores.Service
	logg *logger.Logger
}

func NewStoresController(svc stores.Service, logg *logger.Logger) *StoresController {
	return &StoresController{svc: svc, logg: logg}
}

func (c *StoresController) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := requireUserID(ctx)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	var input stores.CreateStoreInput
	if err := validators.DecodeJSONBody(r, &input); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	store, err := c.svc.Create(ctx, userID, input)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccessStatus(w, http.StatusCreated, store)
}

func (c *StoresController) ListMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := requireUserID(ctx)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	params, err := validators.ParsePagination(r)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	filter := stores.ListFilter{Name: strings.TrimSpace(r.URL.Query().Get("name"))}

	rows, paging, err := c.svc.ListMine(ctx, userID, filter, params)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccessPaged(w, rows, paging)
}

func (c *StoresController) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	storeID, err := requireStoreID(ctx)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	store, err := c.svc.Get(ctx, storeID)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, store)
}

func (c *StoresController) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	storeID, err := requireStoreID(ctx)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	var input stores.UpdateStoreInput
	if err := validators.DecodeJSONBody(r, &input); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	store, err := c.svc.Update(ctx, storeID, input)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, store)
}

func (c *StoresController) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	storeID, err := requireStoreID(ctx)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	if err := c.svc.Remove(ctx, storeID); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, map[string]string{"status": "deleted"})
}
