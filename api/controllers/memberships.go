package controllers

import (
	"net/http"

	"github.com/storegrid/storegrid-backend/api/responses"
	"github.com/storegrid/storegrid-backend/api/validators"
	"github.com/storegrid/storegrid-backend/internal/memberships"
	"github.com/storegrid/storegrid-backend/pkg/logger"
)

// MembershipsController exposes a store's member roster.
type MembershipsController struct {
	svc  memberships.Service
	logg *logger.Logger
}

func NewMembershipsController(svc memberships.Service, logg *logger.Logger) *MembershipsController {
	return &MembershipsController{svc: svc, logg: logg}
}

func (c *MembershipsController) List(w http.ResponseWriter, r *http.Request) {
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

	rows, paging, err := c.svc.List(ctx, storeID, params)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccessPaged(w, rows, paging)
}

func (c *MembershipsController) Invite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	storeID, err := requireStoreID(ctx)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	var input memberships.InviteMemberInput
	if err := validators.DecodeJSONBody(r, &input); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	member, err := c.svc.Invite(ctx, storeID, input)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccessStatus(w, http.StatusCreated, member)
}

func (c *MembershipsController) UpdateRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	storeID, err := requireStoreID(ctx)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	memberUserID, err := uuidParam(r, "userID")
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	var input memberships.UpdateMemberInput
	if err := validators.DecodeJSONBody(r, &input); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	member, err := c.svc.UpdateRole(ctx, storeID, memberUserID, input)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, member)
}

func (c *MembershipsController) Remove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	storeID, err := requireStoreID(ctx)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	memberUserID, err := uuidParam(r, "userID")
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	if err := c.svc.Remove(ctx, storeID, memberUserID); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, map[string]string{"status": "removed"})
}
