package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trimly/trimly/internal/accounts"
	"github.com/trimly/trimly/internal/audit"
)

// AccountStore is the PostgreSQL implementation of accounts.Repository and
// moderation.Store.
type AccountStore struct {
	pool *pgxpool.Pool
}

// NewAccountStore creates a new PostgreSQL-backed account store.
func NewAccountStore(pool *pgxpool.Pool) *AccountStore {
	return &AccountStore{pool: pool}
}

func (s *AccountStore) Insert(ctx context.Context, account *accounts.Account) error {
	query := `
		INSERT INTO accounts
			(id, email, password_hash, full_name, role, status, moderation_state, refresh_token_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		RETURNING created_at, updated_at
	`

	err := s.pool.QueryRow(ctx, query,
		account.ID,
		account.Email,
		account.PasswordHash,
		account.FullName,
		string(account.Role),
		string(account.Status),
		string(account.ModerationState),
		account.RefreshTokenHash,
	).Scan(&account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if violatedConstraint(err) == "accounts_email_key" {
			return accounts.ErrEmailTaken
		}

		return err
	}

	return nil
}

func (s *AccountStore) GetByID(ctx context.Context, id uuid.UUID) (*accounts.Account, error) {
	return s.getBy(ctx, "id = $1", id)
}

func (s *AccountStore) GetByEmail(ctx context.Context, email string) (*accounts.Account, error) {
	return s.getBy(ctx, "email = $1", email)
}

func (s *AccountStore) getBy(ctx context.Context, cond string, arg any) (*accounts.Account, error) {
	query := `
		SELECT id, email, password_hash, full_name, role, status, moderation_state, refresh_token_hash, created_at, updated_at
		FROM accounts
		WHERE ` + cond

	var (
		account accounts.Account
		role    string
		status  string
		state   string
	)

	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&account.ID,
		&account.Email,
		&account.PasswordHash,
		&account.FullName,
		&role,
		&status,
		&state,
		&account.RefreshTokenHash,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, accounts.ErrNotFound
		}

		return nil, err
	}

	account.Role = accounts.Role(role)
	account.Status = accounts.Status(status)
	account.ModerationState = accounts.ModerationState(state)

	return &account, nil
}

func (s *AccountStore) UpdateSession(ctx context.Context, id uuid.UUID, status accounts.Status, refreshTokenHash *string) error {
	query := `
		UPDATE accounts
		SET status = $2, refresh_token_hash = $3, updated_at = now()
		WHERE id = $1
	`

	tag, err := s.pool.Exec(ctx, query, id, string(status), refreshTokenHash)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return accounts.ErrNotFound
	}

	return nil
}

func (s *AccountStore) UpdateProfile(ctx context.Context, id uuid.UUID, fullName, email string) error {
	query := `
		UPDATE accounts
		SET full_name = $2, email = $3, updated_at = now()
		WHERE id = $1
	`

	tag, err := s.pool.Exec(ctx, query, id, fullName, email)
	if err != nil {
		if violatedConstraint(err) == "accounts_email_key" {
			return accounts.ErrEmailTaken
		}

		return err
	}

	if tag.RowsAffected() == 0 {
		return accounts.ErrNotFound
	}

	return nil
}

func (s *AccountStore) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := `
		UPDATE accounts
		SET password_hash = $2, updated_at = now()
		WHERE id = $1
	`

	tag, err := s.pool.Exec(ctx, query, id, passwordHash)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return accounts.ErrNotFound
	}

	return nil
}

// GetAccount implements moderation.Store.
func (s *AccountStore) GetAccount(ctx context.Context, id uuid.UUID) (*accounts.Account, error) {
	return s.GetByID(ctx, id)
}

// UpdateRole updates the role and writes the audit drafts in one transaction.
func (s *AccountStore) UpdateRole(ctx context.Context, id uuid.UUID, role accounts.Role, logs []audit.Draft) error {
	return s.updateLogged(ctx, id, "role", string(role), logs)
}

// UpdateModerationState updates the moderation state and writes the audit
// drafts in one transaction.
func (s *AccountStore) UpdateModerationState(ctx context.Context, id uuid.UUID, state accounts.ModerationState, logs []audit.Draft) error {
	return s.updateLogged(ctx, id, "moderation_state", string(state), logs)
}

func (s *AccountStore) updateLogged(ctx context.Context, id uuid.UUID, column string, value any, logs []audit.Draft) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := fmt.Sprintf(`UPDATE accounts SET %s = $2, updated_at = now() WHERE id = $1`, column)

	tag, err := tx.Exec(ctx, query, id, value)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return accounts.ErrNotFound
	}

	for _, draft := range logs {
		_, err = tx.Exec(ctx,
			`INSERT INTO activity_log (account_id, entry_text, created_at) VALUES ($1, $2, now())`,
			draft.AccountID, draft.Text)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
