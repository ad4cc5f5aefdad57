package controllers

import (
	"net/http"

	"github.com/storegrid/storegrid-backend/api/middleware"
	"github.com/storegrid/storegrid-backend/api/responses"
	"github.com/storegrid/storegrid-backend/api/validators"
	"github.com/storegrid/storegrid-backend/internal/auth"
	"github.com/storegrid/storegrid-backend/pkg/logger"
)

// AuthController exposes registration and the session lifecycle.
type AuthController struct {
	svc  auth.Service
	logg *logger.Logger
}

func NewAuthController(svc auth.Service, logg *logger.Logger) *AuthController {
	return &AuthController{svc: svc, logg: logg}
}

func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var input auth.RegisterInput
	if err := validators.DecodeJSONBody(r, &input); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	user, err := c.svc.Register(ctx, input)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccessStatus(w, http.StatusCreated, user)
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var input auth.LoginInput
	if err := validators.DecodeJSONBody(r, &input); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	pair, err := c.svc.Login(ctx, input)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, pair)
}

func (c *AuthController) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var input auth.RefreshInput
	if err := validators.DecodeJSONBody(r, &input); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	pair, err := c.svc.Refresh(ctx, input)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, pair)
}

func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// refresh token is optional on logout; revoking the access session alone
	// still invalidates the JWT
	var input struct {
		RefreshToken string `json:"refresh_token"`
	}
	if r.ContentLength > 0 {
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(ctx, c.logg, w, err)
			return
		}
	}

	accessID, _ := middleware.AccessIDFromContext(ctx)
	if err := c.svc.Logout(ctx, accessID, input.RefreshToken); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, map[string]string{"status": "logged out"})
}
