package handlers

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/trimly/trimly/internal/accounts"
	"github.com/trimly/trimly/internal/auth"
	"github.com/trimly/trimly/internal/gate"
	"github.com/trimly/trimly/internal/moderation"
	"github.com/trimly/trimly/internal/registry"
	"github.com/trimly/trimly/internal/stats"
)

// mapDomainError translates domain sentinel errors into huma status errors.
// Anything unrecognized becomes an opaque 500 so no internals leak.
func mapDomainError(err error) error {
	switch {
	case errors.Is(err, registry.ErrInvalidTarget):
		return huma.Error400BadRequest("provide a valid url")
	case errors.Is(err, accounts.ErrInvalidInput),
		errors.Is(err, moderation.ErrInvalidInput):
		return huma.Error400BadRequest("invalid request")
	case errors.Is(err, moderation.ErrRoleUnchanged):
		return huma.Error400BadRequest("user already has that role")
	case errors.Is(err, moderation.ErrStateUnchanged):
		return huma.Error400BadRequest("user already has that status")
	case errors.Is(err, accounts.ErrEmailTaken):
		return huma.Error400BadRequest("user with this email already exists")
	case errors.Is(err, accounts.ErrInvalidCredentials):
		return huma.Error401Unauthorized("invalid credentials")
	case errors.Is(err, auth.ErrInvalidToken):
		return huma.Error401Unauthorized("invalid token")
	case errors.Is(err, accounts.ErrSessionRefused):
		return huma.Error403Forbidden("account is blocked or suspended")
	case errors.Is(err, registry.ErrNotFound):
		return huma.Error404NotFound("url not found")
	case errors.Is(err, accounts.ErrNotFound):
		return huma.Error404NotFound("user not found")
	case errors.Is(err, stats.ErrNoResults):
		return huma.Error404NotFound("no urls found for the specified criteria")
	case errors.Is(err, registry.ErrCodeSpaceExhausted):
		return huma.Error500InternalServerError("failed to generate a short code")
	default:
		return huma.Error500InternalServerError("internal server error")
	}
}

// mapDenial translates a gate denial into a huma status error.
func mapDenial(decision gate.Decision) error {
	if decision.Reason == gate.ReasonForbidden {
		return huma.Error403Forbidden("this URL is private, and you are not authorized to view it")
	}

	return huma.Error401Unauthorized("you are not authorized for this action")
}
