package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trimly/trimly/internal/audit"
	"github.com/trimly/trimly/internal/gate"
	"github.com/trimly/trimly/internal/ledger"
	"github.com/trimly/trimly/internal/messaging"
	"github.com/trimly/trimly/internal/registry"
	"github.com/trimly/trimly/internal/stats"
)

// URLHandler handles entry creation, resolution and statistics.
type URLHandler struct {
	registry     *registry.Service
	engine       *stats.Engine
	activity     *audit.Log
	publishVisit messaging.Publish[ledger.EntryVisitedEvent]
	baseURL      string
	logger       *zap.Logger
}

// NewURLHandler creates a new URL handler.
func NewURLHandler(
	registrySvc *registry.Service,
	engine *stats.Engine,
	activity *audit.Log,
	publishVisit messaging.Publish[ledger.EntryVisitedEvent],
	baseURL string,
	logger *zap.Logger,
) *URLHandler {
	return &URLHandler{
		registry:     registrySvc,
		engine:       engine,
		activity:     activity,
		publishVisit: publishVisit,
		baseURL:      baseURL,
		logger:       logger,
	}
}

func (h *URLHandler) CreateEntry(ctx context.Context, req *CreateEntryRequest) (*CreateEntryResponse, error) {
	caller := gate.AccountFromContext(ctx)
	if caller == nil {
		return nil, huma.Error401Unauthorized("access token is missing")
	}

	entry, created, err := h.registry.Create(ctx, req.Body.OriginalURL, caller.ID)
	if err != nil {
		return nil, mapDomainError(err)
	}

	resp := &CreateEntryResponse{}
	resp.Body.Entry = h.entryPayload(entry)

	if created {
		resp.Status = http.StatusCreated
		resp.Body.Message = "Short URL generated successfully"

		h.activity.Record(ctx, caller.ID,
			fmt.Sprintf("User with email: %s generated a short URL for %s", caller.Email, entry.Target))
	} else {
		resp.Status = http.StatusOK
		resp.Body.Message = "Short URL already exists"
	}

	return resp, nil
}

func (h *URLHandler) ListEntries(ctx context.Context, req *ListEntriesRequest) (*ListEntriesResponse, error) {
	caller := gate.AccountFromContext(ctx)
	if caller == nil {
		return nil, huma.Error401Unauthorized("access token is missing")
	}

	filter := stats.Filter{OwnerID: &caller.ID}

	rows, pagination, err := h.engine.Aggregate(ctx, filter, req.Page, req.Limit)
	if err != nil {
		return nil, mapDomainError(err)
	}

	h.activity.Record(ctx, caller.ID,
		fmt.Sprintf("User with email: %s fetched their URLs. Page: %d, Limit: %d, URLs retrieved: %d",
			caller.Email, pagination.CurrentPage, pagination.Limit, len(rows)))

	resp := &ListEntriesResponse{}
	resp.Body.Urls = statsPayloads(rows)
	resp.Body.Pagination = paginationPayload(pagination)

	return resp, nil
}

func (h *URLHandler) EntryStats(ctx context.Context, req *EntryStatsRequest) (*EntryStatsResponse, error) {
	caller := gate.AccountFromContext(ctx)
	if caller == nil {
		return nil, huma.Error401Unauthorized("access token is missing")
	}

	id, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid URL id provided")
	}

	entry, err := h.registry.GetByID(ctx, id)
	if err != nil {
		return nil, mapDomainError(err)
	}

	if decision := gate.Authorize(gate.CallerFromContext(ctx), entry, gate.ActionRead); !decision.Allowed {
		return nil, mapDenial(decision)
	}

	row, err := h.engine.EntryStats(ctx, id)
	if err != nil {
		return nil, mapDomainError(err)
	}

	h.activity.Record(ctx, caller.ID,
		fmt.Sprintf("User with email: %s viewed details of URL with ID: %s", caller.Email, id))

	resp := &EntryStatsResponse{}
	resp.Body.Stats = statsPayload(*row)

	return resp, nil
}

func (h *URLHandler) ToggleVisibility(ctx context.Context, req *ToggleVisibilityRequest) (*ToggleVisibilityResponse, error) {
	caller := gate.AccountFromContext(ctx)
	if caller == nil {
		return nil, huma.Error401Unauthorized("access token is missing")
	}

	id, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid URL id provided")
	}

	entry, err := h.registry.GetByID(ctx, id)
	if err != nil {
		return nil, mapDomainError(err)
	}

	if decision := gate.Authorize(gate.CallerFromContext(ctx), entry, gate.ActionToggleVisibility); !decision.Allowed {
		return nil, mapDenial(decision)
	}

	visibility, err := h.registry.ToggleVisibility(ctx, id)
	if err != nil {
		return nil, mapDomainError(err)
	}

	h.activity.Record(ctx, caller.ID,
		fmt.Sprintf("User with email: %s changed visibility of URL %s to %s", caller.Email, id, visibility))

	resp := &ToggleVisibilityResponse{}
	resp.Body.URLStatus = string(visibility)
	resp.Body.Message = fmt.Sprintf("URL status changed to %s successfully", visibility)

	return resp, nil
}

func (h *URLHandler) DeleteEntry(ctx context.Context, req *DeleteEntryRequest) (*DeleteEntryResponse, error) {
	caller := gate.AccountFromContext(ctx)
	if caller == nil {
		return nil, huma.Error401Unauthorized("access token is missing")
	}

	id, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid URL id provided")
	}

	entry, err := h.registry.GetByID(ctx, id)
	if err != nil {
		return nil, mapDomainError(err)
	}

	if decision := gate.Authorize(gate.CallerFromContext(ctx), entry, gate.ActionDelete); !decision.Allowed {
		return nil, mapDenial(decision)
	}

	if err := h.registry.Delete(ctx, id); err != nil {
		return nil, mapDomainError(err)
	}

	h.activity.Record(ctx, caller.ID,
		fmt.Sprintf("User with email: %s deleted URL with ID: %s", caller.Email, id))

	resp := &DeleteEntryResponse{}
	resp.Body.Message = "URL deleted successfully"

	return resp, nil
}

// Redirect resolves a short code and sends the visitor to the target. The
// gate is consulted with whatever identity the request carries; the visit is
// published to the ledger pipeline and must not block the redirect.
func (h *URLHandler) Redirect(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	entry, err := h.registry.Get(ctx, req.Code)
	if err != nil {
		return nil, mapDomainError(err)
	}

	if decision := gate.Authorize(gate.CallerFromContext(ctx), entry, gate.ActionRead); !decision.Allowed {
		return nil, mapDenial(decision)
	}

	meta := RequestMetaFromContext(ctx)
	event := &ledger.EntryVisitedEvent{
		EntryID:   entry.ID,
		VisitedAt: time.Now(),
		ClientIP:  meta.ClientIP,
		UserAgent: meta.UserAgent,
		Referrer:  meta.Referrer,
	}

	caller := gate.AccountFromContext(ctx)
	if caller != nil {
		event.VisitorID = &caller.ID
	}

	if err := h.publishVisit(event); err != nil {
		h.logger.Error("failed to publish visit event",
			zap.String("entry_id", entry.ID.String()),
			zap.Error(err),
		)
	}

	if caller != nil {
		h.activity.Record(ctx, caller.ID,
			fmt.Sprintf("User with email: %s accessed short URL: %s, redirected to: %s",
				caller.Email, entry.ShortCode, entry.Target))
	}

	resp := &RedirectResponse{Status: http.StatusFound}
	resp.Headers.Location = entry.Target

	return resp, nil
}

func (h *URLHandler) entryPayload(entry *registry.Entry) EntryPayload {
	return EntryPayload{
		ID:         entry.ID.String(),
		ShortCode:  entry.ShortCode,
		ShortURL:   fmt.Sprintf("%s/%s", h.baseURL, entry.ShortCode),
		Target:     entry.Target,
		Visibility: string(entry.Visibility),
		CreatedAt:  entry.CreatedAt,
	}
}

func statsPayload(row stats.Row) StatsPayload {
	return StatsPayload{
		ID:             row.EntryID.String(),
		ShortCode:      row.ShortCode,
		Target:         row.Target,
		OwnerID:        row.OwnerID.String(),
		Visibility:     string(row.Visibility),
		TotalClicks:    row.TotalClicks,
		UniqueVisitors: row.UniqueVisitors,
	}
}

func statsPayloads(rows []stats.Row) []StatsPayload {
	payloads := make([]StatsPayload, len(rows))
	for i, row := range rows {
		payloads[i] = statsPayload(row)
	}

	return payloads
}

func paginationPayload(p stats.Pagination) PaginationPayload {
	return PaginationPayload{
		CurrentPage:  p.CurrentPage,
		TotalPages:   p.TotalPages,
		TotalRecords: p.TotalRecords,
		Limit:        p.Limit,
	}
}
