package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/trimly/trimly/internal/accounts"
	"github.com/trimly/trimly/internal/gate"
)

// AuthHandler handles registration and the session lifecycle.
type AuthHandler struct {
	accounts *accounts.Service
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(accountsSvc *accounts.Service) *AuthHandler {
	return &AuthHandler{accounts: accountsSvc}
}

func (h *AuthHandler) Register(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error) {
	account, err := h.accounts.Register(ctx, req.Body.FullName, req.Body.Email, req.Body.Password)
	if err != nil {
		return nil, mapDomainError(err)
	}

	resp := &RegisterResponse{Status: http.StatusCreated}
	resp.Body.ID = account.ID.String()
	resp.Body.Email = account.Email
	resp.Body.FullName = account.FullName
	resp.Body.Role = string(account.Role)

	return resp, nil
}

func (h *AuthHandler) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	_, pair, err := h.accounts.Login(ctx, req.Body.Email, req.Body.Password)
	if err != nil {
		return nil, mapDomainError(err)
	}

	resp := &LoginResponse{}
	resp.Headers.SetCookie = fmt.Sprintf("accessToken=%s; Path=/; HttpOnly; SameSite=Lax", pair.AccessToken)
	resp.Body.AccessToken = pair.AccessToken
	resp.Body.RefreshToken = pair.RefreshToken

	return resp, nil
}

func (h *AuthHandler) Logout(ctx context.Context, _ *LogoutRequest) (*LogoutResponse, error) {
	caller := gate.AccountFromContext(ctx)
	if caller == nil {
		return nil, huma.Error401Unauthorized("access token is missing")
	}

	if err := h.accounts.Logout(ctx, caller.ID); err != nil {
		return nil, mapDomainError(err)
	}

	resp := &LogoutResponse{}
	resp.Body.Message = "Logged out successfully"

	return resp, nil
}

func (h *AuthHandler) Refresh(ctx context.Context, req *RefreshRequest) (*RefreshResponse, error) {
	pair, err := h.accounts.Refresh(ctx, req.Body.RefreshToken)
	if err != nil {
		return nil, mapDomainError(err)
	}

	resp := &RefreshResponse{}
	resp.Body.AccessToken = pair.AccessToken
	resp.Body.RefreshToken = pair.RefreshToken

	return resp, nil
}
