package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/trimly/trimly/internal/accounts"
	"github.com/trimly/trimly/internal/gate"
)

// UserHandler handles the signed-in account's self-service operations.
type UserHandler struct {
	accounts *accounts.Service
}

// NewUserHandler creates a new user handler.
func NewUserHandler(accountsSvc *accounts.Service) *UserHandler {
	return &UserHandler{accounts: accountsSvc}
}

func (h *UserHandler) CurrentUser(ctx context.Context, _ *CurrentUserRequest) (*CurrentUserResponse, error) {
	caller := gate.AccountFromContext(ctx)
	if caller == nil {
		return nil, huma.Error401Unauthorized("access token is missing")
	}

	resp := &CurrentUserResponse{}
	resp.Body.ID = caller.ID.String()
	resp.Body.Email = caller.Email
	resp.Body.FullName = caller.FullName
	resp.Body.Role = string(caller.Role)
	resp.Body.Status = string(caller.Status)

	return resp, nil
}

func (h *UserHandler) UpdateDetails(ctx context.Context, req *UpdateDetailsRequest) (*UpdateDetailsResponse, error) {
	caller := gate.AccountFromContext(ctx)
	if caller == nil {
		return nil, huma.Error401Unauthorized("access token is missing")
	}

	account, err := h.accounts.UpdateDetails(ctx, caller.ID, req.Body.FullName, req.Body.Email)
	if err != nil {
		return nil, mapDomainError(err)
	}

	resp := &UpdateDetailsResponse{}
	resp.Body.ID = account.ID.String()
	resp.Body.Email = account.Email
	resp.Body.FullName = account.FullName
	resp.Body.Message = "Account details updated successfully"

	return resp, nil
}

func (h *UserHandler) UpdatePassword(ctx context.Context, req *UpdatePasswordRequest) (*UpdatePasswordResponse, error) {
	caller := gate.AccountFromContext(ctx)
	if caller == nil {
		return nil, huma.Error401Unauthorized("access token is missing")
	}

	if err := h.accounts.UpdatePassword(ctx, caller.ID, req.Body.CurrentPassword, req.Body.NewPassword); err != nil {
		return nil, mapDomainError(err)
	}

	resp := &UpdatePasswordResponse{}
	resp.Body.Message = "Password changed successfully"

	return resp, nil
}
