package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/grindstone/internal/domain/model"
)

// MemLedger is an in-memory Ledger. The check and the insert happen under
// one lock, which is what makes Grant an atomic insert-if-absent rather
// than a racy read-then-write.
type MemLedger struct {
	mu     sync.RWMutex
	byKey  map[ledgerKey]model.UnlockRecord
	byUser map[string][]model.UnlockRecord // grant order per user
	now    func() time.Time
}

type ledgerKey struct {
	userID     string
	kind       model.UnlockKind
	identifier string
}

// MemLedgerOption applies a configuration option to the MemLedger.
type MemLedgerOption func(*MemLedger)

// WithLedgerClock overrides the grant timestamp source.
func WithLedgerClock(now func() time.Time) MemLedgerOption {
	return func(l *MemLedger) {
		if now != nil {
			l.now = now
		}
	}
}

// NewMemLedger creates an in-memory unlock ledger.
func NewMemLedger(opts ...MemLedgerOption) *MemLedger {
	l := &MemLedger{
		byKey:  make(map[ledgerKey]model.UnlockRecord),
		byUser: make(map[string][]model.UnlockRecord),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Grant inserts the record if absent and returns the stored record either
// way. Exactly one of N racing calls for the same tuple observes
// Granted=true.
func (l *MemLedger) Grant(ctx context.Context, userID string, kind model.UnlockKind, identifier, source string) (Grant, error) {
	if err := ctx.Err(); err != nil {
		return Grant{}, err
	}
	if userID == "" || kind == "" || identifier == "" {
		return Grant{}, ErrInvalidGrant
	}

	key := ledgerKey{userID: userID, kind: kind, identifier: identifier}

	l.mu.Lock()
	defer l.mu.Unlock()

	if existing, ok := l.byKey[key]; ok {
		return Grant{Granted: false, Record: existing}, nil
	}
	rec := model.UnlockRecord{
		ID:         uuid.NewString(),
		UserID:     userID,
		Kind:       kind,
		Identifier: identifier,
		GrantedAt:  l.now().UTC(),
		Source:     source,
	}
	l.byKey[key] = rec
	l.byUser[userID] = append(l.byUser[userID], rec)
	return Grant{Granted: true, Record: rec}, nil
}

// Unlocks returns every record for the user in grant order.
func (l *MemLedger) Unlocks(ctx context.Context, userID string) ([]model.UnlockRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()

	list := l.byUser[userID]
	out := make([]model.UnlockRecord, len(list))
	copy(out, list)
	return out, nil
}
