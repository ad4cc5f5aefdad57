package controllers

import (
	"net/http"

	"github.com/storegrid/storegrid-backend/api/responses"
	"github.com/storegrid/storegrid-backend/api/validators"
	"github.com/storegrid/storegrid-backend/internal/orders"
	"github.com/storegrid/storegrid-backend/pkg/logger"
)

// OrdersController exposes order placement and history.
type OrdersController struct {
	svc  orders.Service
	logg *logger.Logger
}

func NewOrdersController(svc orders.Service, logg *logger.Logger) *OrdersController {
	return &OrdersController{svc: svc, logg: logg}
}

// Create converts the caller's cart into an order. The request has no body;
// the cart is the input.
func (c *OrdersController) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	storeID, err := requireStoreID(ctx)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	userID, err := requireUserID(ctx)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	order, err := c.svc.Create(ctx, storeID, userID)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccessStatus(w, http.StatusCreated, order)
}

func (c *OrdersController) List(w http.ResponseWriter, r *http.Request) {
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

	rows, paging, err := c.svc.FindAll(ctx, storeID, params)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccessPaged(w, rows, paging)
}

func (c *OrdersController) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	storeID, err := requireStoreID(ctx)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	orderID, err := uuidParam(r, "orderID")
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	order, err := c.svc.FindOne(ctx, storeID, orderID)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, order)
}
