package handlers

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/trimly/trimly/internal/auth"
	"github.com/trimly/trimly/internal/ratelimit"
)

// RegisterRoutes registers the public URL, session and user operations.
func RegisterRoutes(api huma.API, urls *URLHandler, sessions *AuthHandler, users *UserHandler) {
	huma.Register(api, huma.Operation{
		Method:  http.MethodPost,
		Path:    "/auth/register",
		Summary: "Register an account",
		Tags:    []string{"Auth"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Hour, Max: 20},
				},
			},
		},
	}, sessions.Register)

	huma.Register(api, huma.Operation{
		Method:      http.MethodPost,
		Path:        "/auth/login",
		Summary:     "Log in",
		Description: "Verifies credentials and issues an access/refresh token pair.",
		Tags:        []string{"Auth"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 10},
					{Window: time.Hour, Max: 50},
				},
			},
		},
	}, sessions.Login)

	huma.Register(api, huma.Operation{
		Method:  http.MethodPost,
		Path:    "/auth/logout",
		Summary: "Log out",
		Tags:    []string{"Auth"},
		Metadata: map[string]any{
			auth.MetadataKey: auth.Policy{Required: true},
		},
	}, sessions.Logout)

	huma.Register(api, huma.Operation{
		Method:  http.MethodPost,
		Path:    "/auth/refresh",
		Summary: "Refresh the token pair",
		Tags:    []string{"Auth"},
	}, sessions.Refresh)

	huma.Register(api, huma.Operation{
		Method:  http.MethodGet,
		Path:    "/users/current-user",
		Summary: "Get the signed-in account",
		Tags:    []string{"Users"},
		Metadata: map[string]any{
			auth.MetadataKey: auth.Policy{Required: true},
		},
	}, users.CurrentUser)

	huma.Register(api, huma.Operation{
		Method:  http.MethodPatch,
		Path:    "/users/update-details",
		Summary: "Update name and email",
		Tags:    []string{"Users"},
		Metadata: map[string]any{
			auth.MetadataKey: auth.Policy{Required: true},
		},
	}, users.UpdateDetails)

	huma.Register(api, huma.Operation{
		Method:  http.MethodPatch,
		Path:    "/users/update-password",
		Summary: "Change the password",
		Tags:    []string{"Users"},
		Metadata: map[string]any{
			auth.MetadataKey: auth.Policy{Required: true},
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Hour, Max: 10},
				},
			},
		},
	}, users.UpdatePassword)

	huma.Register(api, huma.Operation{
		Method:      http.MethodPost,
		Path:        "/urls",
		Summary:     "Create short URL",
		Description: "Shortens a URL. Shortening the same target twice returns the existing entry.",
		Tags:        []string{"URLs"},
		Metadata: map[string]any{
			auth.MetadataKey: auth.Policy{Required: true},
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 10},
					{Window: time.Hour, Max: 100},
				},
			},
		},
	}, urls.CreateEntry)

	huma.Register(api, huma.Operation{
		Method:  http.MethodGet,
		Path:    "/urls",
		Summary: "List own URLs with usage statistics",
		Tags:    []string{"URLs"},
		Metadata: map[string]any{
			auth.MetadataKey: auth.Policy{Required: true},
		},
	}, urls.ListEntries)

	huma.Register(api, huma.Operation{
		Method:  http.MethodGet,
		Path:    "/urls/{id}",
		Summary: "Get one URL's usage statistics",
		Tags:    []string{"URLs"},
		Metadata: map[string]any{
			auth.MetadataKey: auth.Policy{Required: true},
		},
	}, urls.EntryStats)

	huma.Register(api, huma.Operation{
		Method:  http.MethodPatch,
		Path:    "/urls/{id}",
		Summary: "Toggle URL visibility",
		Tags:    []string{"URLs"},
		Metadata: map[string]any{
			auth.MetadataKey: auth.Policy{Required: true},
		},
	}, urls.ToggleVisibility)

	huma.Register(api, huma.Operation{
		Method:  http.MethodDelete,
		Path:    "/urls/{id}",
		Summary: "Delete a URL",
		Tags:    []string{"URLs"},
		Metadata: map[string]any{
			auth.MetadataKey: auth.Policy{Required: true},
		},
	}, urls.DeleteEntry)

	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/{code}",
		Summary:     "Resolve a short code",
		Description: "Redirects to the target URL and records a visit. Private entries require an authorized session.",
		Tags:        []string{"URLs"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 1000},
				},
			},
		},
	}, urls.Redirect)
}

// RegisterAdminRoutes registers the moderation surface. All operations
// require an admin session.
func RegisterAdminRoutes(api huma.API, admin *AdminHandler) {
	adminOnly := map[string]any{
		auth.MetadataKey: auth.Policy{Required: true, AdminOnly: true},
	}

	huma.Register(api, huma.Operation{
		Method:   http.MethodPost,
		Path:     "/admin/users/{id}/role",
		Summary:  "Update a user's role",
		Tags:     []string{"Admin"},
		Metadata: adminOnly,
	}, admin.SetRole)

	huma.Register(api, huma.Operation{
		Method:   http.MethodPost,
		Path:     "/admin/users/{id}/status",
		Summary:  "Update a user's moderation state",
		Tags:     []string{"Admin"},
		Metadata: adminOnly,
	}, admin.SetStatus)

	huma.Register(api, huma.Operation{
		Method:   http.MethodGet,
		Path:     "/admin/users/{id}/activity",
		Summary:  "View a user's activity log",
		Tags:     []string{"Admin"},
		Metadata: adminOnly,
	}, admin.Activity)

	huma.Register(api, huma.Operation{
		Method:   http.MethodDelete,
		Path:     "/admin/urls/batch",
		Summary:  "Delete several URLs at once",
		Tags:     []string{"Admin"},
		Metadata: adminOnly,
	}, admin.BatchDelete)

	huma.Register(api, huma.Operation{
		Method:   http.MethodGet,
		Path:     "/admin/urls",
		Summary:  "Global URL usage statistics",
		Tags:     []string{"Admin"},
		Metadata: adminOnly,
	}, admin.ListURLs)
}
