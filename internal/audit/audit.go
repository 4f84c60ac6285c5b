// Package audit keeps the append-only per-account activity log.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Entry is one recorded activity line.
type Entry struct {
	AccountID uuid.UUID
	Text      string
	CreatedAt time.Time
}

// Draft is an entry about to be written, used where several entries must be
// persisted atomically with another mutation.
type Draft struct {
	AccountID uuid.UUID
	Text      string
}

// Repository defines the storage operations for the activity log.
type Repository interface {
	Append(ctx context.Context, draft Draft) error

	// List returns entries in insertion order, oldest first.
	List(ctx context.Context, accountID uuid.UUID, offset, limit int) ([]Entry, error)
}

// Log records account activity. Record is best-effort: an append failure is
// logged and swallowed so it never fails the operation being audited.
// Moderation mutations bypass Record and write their drafts inside the
// mutation's own transaction.
type Log struct {
	repo   Repository
	logger *zap.Logger
}

// NewLog creates a new activity log.
func NewLog(repo Repository, logger *zap.Logger) *Log {
	return &Log{
		repo:   repo,
		logger: logger,
	}
}

// Record appends an activity entry for the account, best-effort.
func (l *Log) Record(ctx context.Context, accountID uuid.UUID, text string) {
	if err := l.repo.Append(ctx, Draft{AccountID: accountID, Text: text}); err != nil {
		l.logger.Error("failed to append activity entry",
			zap.String("account_id", accountID.String()),
			zap.Error(err),
		)
	}
}

// List returns one page of the account's activity, oldest first. Page and
// limit are 1-based and clamped to 1.
func (l *Log) List(ctx context.Context, accountID uuid.UUID, page, limit int) ([]Entry, error) {
	page = max(page, 1)
	limit = max(limit, 1)

	return l.repo.List(ctx, accountID, (page-1)*limit, limit)
}
