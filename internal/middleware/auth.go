package middleware

import (
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	"github.com/trimly/trimly/internal/accounts"
	"github.com/trimly/trimly/internal/auth"
	"github.com/trimly/trimly/internal/gate"
)

// accessTokenCookie mirrors the header-based token for browser clients.
const accessTokenCookie = "accessToken"

// Authenticate returns a huma middleware that resolves the caller behind the
// request. The token is taken from the Authorization header or the access
// cookie; the operation's auth.Policy decides whether a missing or invalid
// session is fatal.
func Authenticate(
	api huma.API,
	authority *auth.Authority,
	repo accounts.Repository,
	logger *zap.Logger,
) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		policy := auth.GetPolicy(ctx)
		required := policy != nil && (policy.Required || policy.AdminOnly)

		token := extractToken(ctx)
		if token == "" {
			if required {
				_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "access token is missing")

				return
			}

			next(ctx)

			return
		}

		accountID, _, err := authority.VerifyAccess(token)
		if err != nil {
			if required {
				_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "invalid access token")

				return
			}

			next(ctx)

			return
		}

		account, err := repo.GetByID(ctx.Context(), accountID)
		if err != nil {
			logger.Warn("token resolved to unknown account",
				zap.String("account_id", accountID.String()),
				zap.Error(err),
			)

			if required {
				_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "invalid access token")

				return
			}

			next(ctx)

			return
		}

		if policy != nil && policy.AdminOnly && account.Role != accounts.RoleAdmin {
			_ = huma.WriteErr(api, ctx, http.StatusForbidden, "admin role required")

			return
		}

		ctx = huma.WithContext(ctx, gate.ContextWithAccount(ctx.Context(), account))

		next(ctx)
	}
}

func extractToken(ctx huma.Context) string {
	if header := ctx.Header("Authorization"); header != "" {
		if token, found := strings.CutPrefix(header, "Bearer "); found {
			return strings.TrimSpace(token)
		}
	}

	if cookie := ctx.Header("Cookie"); cookie != "" {
		return cookieValue(cookie, accessTokenCookie)
	}

	return ""
}

func cookieValue(header, name string) string {
	for _, part := range strings.Split(header, ";") {
		part = strings.TrimSpace(part)
		if value, found := strings.CutPrefix(part, name+"="); found {
			return value
		}
	}

	return ""
}
