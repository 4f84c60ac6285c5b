package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/trimly/trimly/internal/audit"
	"github.com/trimly/trimly/internal/auth"
)

var (
	ErrInvalidInput       = errors.New("invalid account input")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrSessionRefused means the account's moderation state forbids
	// issuing new tokens.
	ErrSessionRefused = errors.New("account is not allowed to start a session")
)

// Service implements registration and the session lifecycle.
type Service struct {
	repo      Repository
	authority *auth.Authority
	activity  *audit.Log
}

// NewService creates a new accounts service.
func NewService(repo Repository, authority *auth.Authority, activity *audit.Log) *Service {
	return &Service{
		repo:      repo,
		authority: authority,
		activity:  activity,
	}
}

// Register creates a new account with the user role.
func (s *Service) Register(ctx context.Context, fullName, email, password string) (*Account, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.ToLower(strings.TrimSpace(email))

	if fullName == "" || email == "" || password == "" {
		return nil, ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := &Account{
		ID:              uuid.New(),
		Email:           email,
		PasswordHash:    string(hash),
		FullName:        fullName,
		Role:            RoleUser,
		Status:          StatusInactive,
		ModerationState: ModerationNormal,
	}

	if err := s.repo.Insert(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

// Login verifies the credentials and opens a session. Blocked and suspended
// accounts are refused before any credential check result is revealed.
func (s *Service) Login(ctx context.Context, email, password string) (*Account, auth.TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	account, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, auth.TokenPair{}, ErrInvalidCredentials
		}

		return nil, auth.TokenPair{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, auth.TokenPair{}, ErrInvalidCredentials
	}

	if !account.ModerationState.CanStartSession() {
		return nil, auth.TokenPair{}, ErrSessionRefused
	}

	pair, err := s.authority.IssuePair(account.ID, string(account.Role))
	if err != nil {
		return nil, auth.TokenPair{}, err
	}

	refreshHash, err := hashToken(pair.RefreshToken)
	if err != nil {
		return nil, auth.TokenPair{}, err
	}

	if err := s.repo.UpdateSession(ctx, account.ID, StatusActive, &refreshHash); err != nil {
		return nil, auth.TokenPair{}, err
	}

	account.Status = StatusActive
	account.RefreshTokenHash = &refreshHash

	s.activity.Record(ctx, account.ID, fmt.Sprintf("User with email: %s logged in", account.Email))

	return account, pair, nil
}

// Logout closes the account's session.
func (s *Service) Logout(ctx context.Context, accountID uuid.UUID) error {
	account, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateSession(ctx, accountID, StatusInactive, nil); err != nil {
		return err
	}

	s.activity.Record(ctx, accountID, fmt.Sprintf("User with email: %s logged out", account.Email))

	return nil
}

// Refresh rotates the token pair. The presented refresh token must verify and
// match the stored hash, and the moderation state is re-checked so a blocked
// account cannot renew its session.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (auth.TokenPair, error) {
	accountID, err := s.authority.VerifyRefresh(refreshToken)
	if err != nil {
		return auth.TokenPair{}, err
	}

	account, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		return auth.TokenPair{}, err
	}

	if account.RefreshTokenHash == nil {
		return auth.TokenPair{}, auth.ErrInvalidToken
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*account.RefreshTokenHash), tokenDigest(refreshToken)); err != nil {
		return auth.TokenPair{}, auth.ErrInvalidToken
	}

	if !account.ModerationState.CanStartSession() {
		return auth.TokenPair{}, ErrSessionRefused
	}

	pair, err := s.authority.IssuePair(account.ID, string(account.Role))
	if err != nil {
		return auth.TokenPair{}, err
	}

	refreshHash, err := hashToken(pair.RefreshToken)
	if err != nil {
		return auth.TokenPair{}, err
	}

	if err := s.repo.UpdateSession(ctx, account.ID, StatusActive, &refreshHash); err != nil {
		return auth.TokenPair{}, err
	}

	return pair, nil
}

// Get fetches an account by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Account, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateDetails changes the account's full name and email.
func (s *Service) UpdateDetails(ctx context.Context, accountID uuid.UUID, fullName, email string) (*Account, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.ToLower(strings.TrimSpace(email))

	if fullName == "" || email == "" {
		return nil, ErrInvalidInput
	}

	if err := s.repo.UpdateProfile(ctx, accountID, fullName, email); err != nil {
		return nil, err
	}

	account, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, accountID, fmt.Sprintf("User with email: %s updated their account details", account.Email))

	return account, nil
}

// UpdatePassword verifies the current password and replaces it.
func (s *Service) UpdatePassword(ctx context.Context, accountID uuid.UUID, currentPassword, newPassword string) error {
	if newPassword == "" {
		return ErrInvalidInput
	}

	account, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.repo.UpdatePassword(ctx, accountID, string(hash)); err != nil {
		return err
	}

	s.activity.Record(ctx, accountID, fmt.Sprintf("User with email: %s changed their password", account.Email))

	return nil
}
