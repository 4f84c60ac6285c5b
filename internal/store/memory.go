package store

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trimly/trimly/internal/accounts"
	"github.com/trimly/trimly/internal/audit"
	"github.com/trimly/trimly/internal/ledger"
	"github.com/trimly/trimly/internal/registry"
	"github.com/trimly/trimly/internal/stats"
)

// Memory is an in-memory implementation of every repository interface. It
// mirrors the PostgreSQL store's semantics, including the unique-constraint
// errors, so services can be tested without a database.
type Memory struct {
	mu sync.RWMutex

	entries  map[uuid.UUID]*registry.Entry
	byCode   map[string]uuid.UUID
	byTarget map[string]uuid.UUID
	entrySeq map[uuid.UUID]int64
	seq      int64

	visits map[uuid.UUID][]ledger.VisitEvent

	accounts map[uuid.UUID]*accounts.Account
	byEmail  map[string]uuid.UUID

	activity map[uuid.UUID][]audit.Entry
}

// NewMemory creates a new in-memory store.
func NewMemory() *Memory {
	return &Memory{
		entries:  make(map[uuid.UUID]*registry.Entry),
		byCode:   make(map[string]uuid.UUID),
		byTarget: make(map[string]uuid.UUID),
		entrySeq: make(map[uuid.UUID]int64),
		visits:   make(map[uuid.UUID][]ledger.VisitEvent),
		accounts: make(map[uuid.UUID]*accounts.Account),
		byEmail:  make(map[string]uuid.UUID),
		activity: make(map[uuid.UUID][]audit.Entry),
	}
}

// --- registry.Repository ---

func (m *Memory) Insert(_ context.Context, entry *registry.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.byCode[entry.ShortCode]; taken {
		return registry.ErrCodeTaken
	}

	if _, exists := m.byTarget[entry.Target]; exists {
		return registry.ErrTargetExists
	}

	now := time.Now()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	copied := *entry
	m.entries[entry.ID] = &copied
	m.byCode[entry.ShortCode] = entry.ID
	m.byTarget[entry.Target] = entry.ID
	m.seq++
	m.entrySeq[entry.ID] = m.seq

	return nil
}

func (m *Memory) GetByCode(_ context.Context, code string) (*registry.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byCode[code]
	if !ok {
		return nil, registry.ErrNotFound
	}

	return m.copyEntry(id)
}

func (m *Memory) GetByID(_ context.Context, id uuid.UUID) (*registry.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.copyEntry(id)
}

func (m *Memory) GetByTarget(_ context.Context, target string) (*registry.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byTarget[target]
	if !ok {
		return nil, registry.ErrNotFound
	}

	return m.copyEntry(id)
}

func (m *Memory) copyEntry(id uuid.UUID) (*registry.Entry, error) {
	entry, ok := m.entries[id]
	if !ok {
		return nil, registry.ErrNotFound
	}

	copied := *entry

	return &copied, nil
}

func (m *Memory) SetVisibility(_ context.Context, id uuid.UUID, visibility registry.Visibility) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[id]
	if !ok {
		return registry.ErrNotFound
	}

	entry.Visibility = visibility
	entry.UpdatedAt = time.Now()

	return nil
}

func (m *Memory) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.deleteEntry(id)
}

func (m *Memory) deleteEntry(id uuid.UUID) error {
	entry, ok := m.entries[id]
	if !ok {
		return registry.ErrNotFound
	}

	delete(m.byCode, entry.ShortCode)
	delete(m.byTarget, entry.Target)
	delete(m.entries, id)
	delete(m.entrySeq, id)
	delete(m.visits, id) // cascade

	return nil
}

func (m *Memory) DeleteBatch(_ context.Context, ids []uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64

	for _, id := range ids {
		if err := m.deleteEntry(id); err == nil {
			deleted++
		}
	}

	return deleted, nil
}

func (m *Memory) ListByOwner(_ context.Context, owner uuid.UUID, offset, limit int) ([]registry.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	owned := m.ownedEntries(owner)

	// newest first, insertion order as tie-breaker
	sort.Slice(owned, func(i, j int) bool {
		return m.entrySeq[owned[i].ID] > m.entrySeq[owned[j].ID]
	})

	return pageOf(owned, offset, limit), nil
}

func (m *Memory) CountByOwner(_ context.Context, owner uuid.UUID) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return int64(len(m.ownedEntries(owner))), nil
}

func (m *Memory) ownedEntries(owner uuid.UUID) []registry.Entry {
	var owned []registry.Entry

	for _, entry := range m.entries {
		if entry.OwnerID == owner {
			owned = append(owned, *entry)
		}
	}

	return owned
}

// --- ledger.Repository ---

func (m *Memory) Append(_ context.Context, event *ledger.VisitEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.visits[event.EntryID] = append(m.visits[event.EntryID], *event)

	return nil
}

func (m *Memory) CountFor(_ context.Context, entryID uuid.UUID) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return int64(len(m.visits[entryID])), nil
}

func (m *Memory) UniqueVisitorsFor(_ context.Context, entryID uuid.UUID) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.uniqueVisitors(entryID), nil
}

func (m *Memory) uniqueVisitors(entryID uuid.UUID) int64 {
	seen := make(map[uuid.UUID]struct{})

	for _, event := range m.visits[entryID] {
		if event.VisitorID != nil {
			seen[*event.VisitorID] = struct{}{}
		}
	}

	return int64(len(seen))
}

// --- accounts.Repository ---

func (m *Memory) InsertAccount(_ context.Context, account *accounts.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.byEmail[account.Email]; taken {
		return accounts.ErrEmailTaken
	}

	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now

	copied := *account
	m.accounts[account.ID] = &copied
	m.byEmail[account.Email] = account.ID

	return nil
}

func (m *Memory) GetAccountByID(_ context.Context, id uuid.UUID) (*accounts.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.copyAccount(id)
}

func (m *Memory) GetAccountByEmail(_ context.Context, email string) (*accounts.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byEmail[email]
	if !ok {
		return nil, accounts.ErrNotFound
	}

	return m.copyAccount(id)
}

func (m *Memory) copyAccount(id uuid.UUID) (*accounts.Account, error) {
	account, ok := m.accounts[id]
	if !ok {
		return nil, accounts.ErrNotFound
	}

	copied := *account

	return &copied, nil
}

func (m *Memory) UpdateSession(_ context.Context, id uuid.UUID, status accounts.Status, refreshTokenHash *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, ok := m.accounts[id]
	if !ok {
		return accounts.ErrNotFound
	}

	account.Status = status
	account.RefreshTokenHash = refreshTokenHash
	account.UpdatedAt = time.Now()

	return nil
}

func (m *Memory) UpdateProfile(_ context.Context, id uuid.UUID, fullName, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, ok := m.accounts[id]
	if !ok {
		return accounts.ErrNotFound
	}

	if existing, taken := m.byEmail[email]; taken && existing != id {
		return accounts.ErrEmailTaken
	}

	delete(m.byEmail, account.Email)
	m.byEmail[email] = id

	account.FullName = fullName
	account.Email = email
	account.UpdatedAt = time.Now()

	return nil
}

func (m *Memory) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, ok := m.accounts[id]
	if !ok {
		return accounts.ErrNotFound
	}

	account.PasswordHash = passwordHash
	account.UpdatedAt = time.Now()

	return nil
}

// --- moderation.Store ---

func (m *Memory) GetAccount(ctx context.Context, id uuid.UUID) (*accounts.Account, error) {
	return m.GetAccountByID(ctx, id)
}

func (m *Memory) UpdateRole(_ context.Context, id uuid.UUID, role accounts.Role, logs []audit.Draft) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, ok := m.accounts[id]
	if !ok {
		return accounts.ErrNotFound
	}

	account.Role = role
	account.UpdatedAt = time.Now()
	m.appendDrafts(logs)

	return nil
}

func (m *Memory) UpdateModerationState(_ context.Context, id uuid.UUID, state accounts.ModerationState, logs []audit.Draft) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, ok := m.accounts[id]
	if !ok {
		return accounts.ErrNotFound
	}

	account.ModerationState = state
	account.UpdatedAt = time.Now()
	m.appendDrafts(logs)

	return nil
}

// --- audit.Repository ---

func (m *Memory) AppendActivity(_ context.Context, draft audit.Draft) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.appendDrafts([]audit.Draft{draft})

	return nil
}

func (m *Memory) appendDrafts(drafts []audit.Draft) {
	for _, draft := range drafts {
		m.activity[draft.AccountID] = append(m.activity[draft.AccountID], audit.Entry{
			AccountID: draft.AccountID,
			Text:      draft.Text,
			CreatedAt: time.Now(),
		})
	}
}

func (m *Memory) ListActivity(_ context.Context, accountID uuid.UUID, offset, limit int) ([]audit.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return pageOf(m.activity[accountID], offset, limit), nil
}

// --- stats.Repository ---

func (m *Memory) AggregateEntries(_ context.Context, filter stats.Filter, offset, limit int) ([]stats.Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var rows []stats.Row

	for _, entry := range m.entries {
		if !matchesFilter(entry, filter) {
			continue
		}

		rows = append(rows, m.statsRow(entry))
	}

	sort.Slice(rows, func(i, j int) bool {
		return bytes.Compare(rows[i].EntryID[:], rows[j].EntryID[:]) < 0
	})

	return pageOf(rows, offset, limit), nil
}

func (m *Memory) CountEntries(_ context.Context, filter stats.Filter) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var count int64

	for _, entry := range m.entries {
		if matchesFilter(entry, filter) {
			count++
		}
	}

	return count, nil
}

func (m *Memory) AggregateEntry(_ context.Context, id uuid.UUID) (*stats.Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[id]
	if !ok {
		return nil, registry.ErrNotFound
	}

	row := m.statsRow(entry)

	return &row, nil
}

func (m *Memory) statsRow(entry *registry.Entry) stats.Row {
	return stats.Row{
		EntryID:        entry.ID,
		ShortCode:      entry.ShortCode,
		Target:         entry.Target,
		OwnerID:        entry.OwnerID,
		Visibility:     entry.Visibility,
		TotalClicks:    int64(len(m.visits[entry.ID])),
		UniqueVisitors: m.uniqueVisitors(entry.ID),
	}
}

func matchesFilter(entry *registry.Entry, filter stats.Filter) bool {
	if filter.OwnerID != nil && entry.OwnerID != *filter.OwnerID {
		return false
	}

	if filter.Visibility != nil && entry.Visibility != *filter.Visibility {
		return false
	}

	return true
}

func pageOf[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}

	end := min(offset+limit, len(items))

	return items[offset:end]
}
