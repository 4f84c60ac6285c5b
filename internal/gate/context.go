package gate

import (
	"context"

	"github.com/trimly/trimly/internal/accounts"
)

type accountKey struct{}

// ContextWithAccount attaches the resolved caller account to the context.
func ContextWithAccount(ctx context.Context, account *accounts.Account) context.Context {
	return context.WithValue(ctx, accountKey{}, account)
}

// AccountFromContext returns the resolved caller account, or nil for an
// anonymous request.
func AccountFromContext(ctx context.Context) *accounts.Account {
	if account, ok := ctx.Value(accountKey{}).(*accounts.Account); ok {
		return account
	}

	return nil
}

// CallerFromContext converts the resolved account into a gate caller. The
// identity is always an explicit value, never ambient state inside Authorize.
func CallerFromContext(ctx context.Context) Caller {
	account := AccountFromContext(ctx)
	if account == nil {
		return Anonymous()
	}

	return Caller{ID: account.ID, Role: account.Role, Authenticated: true}
}
