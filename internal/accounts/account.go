package accounts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("account not found")
	ErrEmailTaken = errors.New("email already registered")
)

// Role distinguishes regular accounts from administrators.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole validates a role received from the outside.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleUser, RoleAdmin:
		return Role(s), true
	}

	return "", false
}

// Status tracks whether the account currently holds a session.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// ModerationState is the account's standing, independent of its role.
type ModerationState string

const (
	ModerationNormal    ModerationState = "normal"
	ModerationBlocked   ModerationState = "blocked"
	ModerationSuspended ModerationState = "suspended"
)

// ParseModerationState validates a moderation state received from the outside.
func ParseModerationState(s string) (ModerationState, bool) {
	switch ModerationState(s) {
	case ModerationNormal, ModerationBlocked, ModerationSuspended:
		return ModerationState(s), true
	}

	return "", false
}

// CanStartSession reports whether the state permits issuing new tokens.
func (m ModerationState) CanStartSession() bool {
	return m == ModerationNormal
}

// Account is a registered user of the service.
type Account struct {
	ID               uuid.UUID
	Email            string
	PasswordHash     string
	FullName         string
	Role             Role
	Status           Status
	ModerationState  ModerationState
	RefreshTokenHash *string // nil when no session is open
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Repository defines the storage operations for accounts.
type Repository interface {
	// Insert persists a new account. Returns ErrEmailTaken if the email
	// unique constraint is violated.
	Insert(ctx context.Context, account *Account) error

	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)

	// UpdateSession stores the session status and refresh-token hash
	// together (nil hash clears the session).
	UpdateSession(ctx context.Context, id uuid.UUID, status Status, refreshTokenHash *string) error

	// UpdateProfile stores a new full name and email. Returns ErrEmailTaken
	// if the email unique constraint is violated.
	UpdateProfile(ctx context.Context, id uuid.UUID, fullName, email string) error

	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}
