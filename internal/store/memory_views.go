package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/trimly/trimly/internal/accounts"
	"github.com/trimly/trimly/internal/audit"
)

// Accounts returns the accounts.Repository view of the memory store.
// Needed because registry and accounts both name their insert "Insert".
func (m *Memory) Accounts() accounts.Repository {
	return memoryAccounts{m}
}

// Audit returns the audit.Repository view of the memory store.
func (m *Memory) Audit() audit.Repository {
	return memoryAudit{m}
}

type memoryAccounts struct{ m *Memory }

func (a memoryAccounts) Insert(ctx context.Context, account *accounts.Account) error {
	return a.m.InsertAccount(ctx, account)
}

func (a memoryAccounts) GetByID(ctx context.Context, id uuid.UUID) (*accounts.Account, error) {
	return a.m.GetAccountByID(ctx, id)
}

func (a memoryAccounts) GetByEmail(ctx context.Context, email string) (*accounts.Account, error) {
	return a.m.GetAccountByEmail(ctx, email)
}

func (a memoryAccounts) UpdateSession(ctx context.Context, id uuid.UUID, status accounts.Status, refreshTokenHash *string) error {
	return a.m.UpdateSession(ctx, id, status, refreshTokenHash)
}

func (a memoryAccounts) UpdateProfile(ctx context.Context, id uuid.UUID, fullName, email string) error {
	return a.m.UpdateProfile(ctx, id, fullName, email)
}

func (a memoryAccounts) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return a.m.UpdatePassword(ctx, id, passwordHash)
}

type memoryAudit struct{ m *Memory }

func (a memoryAudit) Append(ctx context.Context, draft audit.Draft) error {
	return a.m.AppendActivity(ctx, draft)
}

func (a memoryAudit) List(ctx context.Context, accountID uuid.UUID, offset, limit int) ([]audit.Entry, error) {
	return a.m.ListActivity(ctx, accountID, offset, limit)
}
