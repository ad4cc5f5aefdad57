package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/storegrid/storegrid-backend/api/responses"
	"github.com/storegrid/storegrid-backend/api/validators"
	"github.com/storegrid/storegrid-backend/internal/cart"
	"github.com/storegrid/storegrid-backend/pkg/logger"
)

// CartController exposes the caller's per-store cart.
type CartController struct {
	svc  cart.Service
	logg *logger.Logger
}

func NewCartController(svc cart.Service, logg *logger.Logger) *CartController {
	return &CartController{svc: svc, logg: logg}
}

func (c *CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	storeID, userID, err := c.scope(ctx)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	var input cart.AddItemInput
	if err := validators.DecodeJSONBody(r, &input); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	line, err := c.svc.AddItem(ctx, storeID, userID, input)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccessStatus(w, http.StatusCreated, line)
}

func (c *CartController) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	storeID, userID, err := c.scope(ctx)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	view, err := c.svc.List(ctx, storeID, userID)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, view)
}

func (c *CartController) UpdateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	storeID, userID, err := c.scope(ctx)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	lineID, err := uuidParam(r, "itemID")
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	var input cart.UpdateItemInput
	if err := validators.DecodeJSONBody(r, &input); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	line, err := c.svc.UpdateItem(ctx, storeID, userID, lineID, input)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, line)
}

func (c *CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	storeID, userID, err := c.scope(ctx)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	lineID, err := uuidParam(r, "itemID")
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	line, err := c.svc.RemoveItem(ctx, storeID, userID, lineID)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, line)
}

func (c *CartController) scope(ctx context.Context) (storeID, userID uuid.UUID, err error) {
	storeID, err = requireStoreID(ctx)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	userID, err = requireUserID(ctx)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return storeID, userID, nil
}
