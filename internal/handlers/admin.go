package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/trimly/trimly/internal/accounts"
	"github.com/trimly/trimly/internal/audit"
	"github.com/trimly/trimly/internal/gate"
	"github.com/trimly/trimly/internal/moderation"
	"github.com/trimly/trimly/internal/registry"
	"github.com/trimly/trimly/internal/stats"
)

// AdminHandler handles the moderation surface. Every operation here is
// registered with an admin-only auth policy; the handler still re-reads the
// actor from context for auditing.
type AdminHandler struct {
	moderation *moderation.Service
	engine     *stats.Engine
	activity   *audit.Log
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(moderationSvc *moderation.Service, engine *stats.Engine, activity *audit.Log) *AdminHandler {
	return &AdminHandler{
		moderation: moderationSvc,
		engine:     engine,
		activity:   activity,
	}
}

func (h *AdminHandler) SetRole(ctx context.Context, req *SetRoleRequest) (*SetRoleResponse, error) {
	actor := gate.AccountFromContext(ctx)
	if actor == nil {
		return nil, huma.Error401Unauthorized("access token is missing")
	}

	role, ok := accounts.ParseRole(req.Body.Role)
	if !ok {
		return nil, huma.Error400BadRequest("invalid input: user role")
	}

	targetID, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid user id")
	}

	target, err := h.moderation.SetRole(ctx, actor, targetID, role)
	if err != nil {
		return nil, mapDomainError(err)
	}

	resp := &SetRoleResponse{}
	resp.Body.ID = target.ID.String()
	resp.Body.Email = target.Email
	resp.Body.Role = string(target.Role)
	resp.Body.Message = "User's role updated successfully"

	return resp, nil
}

func (h *AdminHandler) SetStatus(ctx context.Context, req *SetStatusRequest) (*SetStatusResponse, error) {
	actor := gate.AccountFromContext(ctx)
	if actor == nil {
		return nil, huma.Error401Unauthorized("access token is missing")
	}

	state, ok := accounts.ParseModerationState(req.Body.Status)
	if !ok {
		return nil, huma.Error400BadRequest("invalid input: user status type")
	}

	targetID, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid user id")
	}

	target, err := h.moderation.SetModerationState(ctx, actor, targetID, state)
	if err != nil {
		return nil, mapDomainError(err)
	}

	resp := &SetStatusResponse{}
	resp.Body.ID = target.ID.String()
	resp.Body.Email = target.Email
	resp.Body.Status = string(target.ModerationState)
	resp.Body.Message = "User status updated successfully"

	return resp, nil
}

func (h *AdminHandler) Activity(ctx context.Context, req *ActivityRequest) (*ActivityResponse, error) {
	actor := gate.AccountFromContext(ctx)
	if actor == nil {
		return nil, huma.Error401Unauthorized("access token is missing")
	}

	targetID, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid user id")
	}

	entries, err := h.moderation.ListActivity(ctx, actor, targetID, req.Page, req.Limit)
	if err != nil {
		return nil, mapDomainError(err)
	}

	resp := &ActivityResponse{}
	resp.Body.Logs = make([]ActivityEntryPayload, len(entries))

	for i, entry := range entries {
		resp.Body.Logs[i] = ActivityEntryPayload{
			Timestamp: entry.CreatedAt,
			Text:      entry.Text,
		}
	}

	return resp, nil
}

func (h *AdminHandler) BatchDelete(ctx context.Context, req *BatchDeleteRequest) (*BatchDeleteResponse, error) {
	actor := gate.AccountFromContext(ctx)
	if actor == nil {
		return nil, huma.Error401Unauthorized("access token is missing")
	}

	if len(req.Body.URLIDs) == 0 {
		return nil, huma.Error400BadRequest("provide an array of url ids to delete")
	}

	ids := make([]uuid.UUID, 0, len(req.Body.URLIDs))

	var invalid []string

	for _, raw := range req.Body.URLIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			invalid = append(invalid, raw)

			continue
		}

		ids = append(ids, id)
	}

	if len(invalid) > 0 {
		return nil, huma.Error400BadRequest(fmt.Sprintf("invalid URL ids: %s", strings.Join(invalid, ", ")))
	}

	deleted, err := h.moderation.BatchDeleteEntries(ctx, actor, ids)
	if err != nil {
		return nil, mapDomainError(err)
	}

	resp := &BatchDeleteResponse{}
	resp.Body.DeletedCount = deleted
	resp.Body.Message = "URLs deleted successfully"

	return resp, nil
}

func (h *AdminHandler) ListURLs(ctx context.Context, req *AdminListRequest) (*AdminListResponse, error) {
	actor := gate.AccountFromContext(ctx)
	if actor == nil {
		return nil, huma.Error401Unauthorized("access token is missing")
	}

	var filter stats.Filter

	if req.UserID != "" {
		ownerID, err := uuid.Parse(req.UserID)
		if err != nil {
			return nil, huma.Error400BadRequest("invalid user id format")
		}

		filter.OwnerID = &ownerID
	}

	if req.Visibility != "" {
		visibility, ok := registry.ParseVisibility(req.Visibility)
		if !ok {
			return nil, huma.Error400BadRequest("invalid visibility value")
		}

		filter.Visibility = &visibility
	}

	rows, pagination, err := h.engine.Aggregate(ctx, filter, req.Page, req.Limit)
	if err != nil {
		return nil, mapDomainError(err)
	}

	h.activity.Record(ctx, actor.ID,
		fmt.Sprintf("Admin with email: %s fetched URL statistics, page: %d, limit: %d",
			actor.Email, pagination.CurrentPage, pagination.Limit))

	resp := &AdminListResponse{}
	resp.Body.URLStats = statsPayloads(rows)
	resp.Body.Pagination = paginationPayload(pagination)

	return resp, nil
}
