package repository

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // database/sql driver

	"github.com/okian/grindstone/internal/domain/model"
)

// SQLiteLedger is a durable Ledger backed by SQLite. Idempotency is
// enforced by the unique index on (user_id, kind, identifier): the insert
// uses ON CONFLICT DO NOTHING, so a lost race reads back as
// already-granted instead of surfacing a constraint error.
type SQLiteLedger struct {
	db  *sql.DB
	now func() time.Time
}

const ledgerSchema = `
CREATE TABLE IF NOT EXISTS unlocks (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	kind       TEXT NOT NULL,
	identifier TEXT NOT NULL,
	granted_at INTEGER NOT NULL,
	source     TEXT NOT NULL DEFAULT ''
);
CREATE UNIQUE INDEX IF NOT EXISTS unlocks_identity
	ON unlocks(user_id, kind, identifier);
`

// OpenSQLiteLedger opens (creating if needed) a SQLite unlock ledger.
func OpenSQLiteLedger(ctx context.Context, path string) (*SQLiteLedger, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("ledger path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite ledger: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite ledger: %w", err)
	}
	if _, err := db.ExecContext(ctx, ledgerSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create ledger schema: %w", err)
	}
	return &SQLiteLedger{db: db, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (l *SQLiteLedger) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}

// Grant performs the conditional insert and reads the stored record back.
// RowsAffected distinguishes a fresh grant from a conflict with an
// existing record.
func (l *SQLiteLedger) Grant(ctx context.Context, userID string, kind model.UnlockKind, identifier, source string) (Grant, error) {
	if userID == "" || kind == "" || identifier == "" {
		return Grant{}, ErrInvalidGrant
	}

	id := uuid.NewString()
	grantedAt := l.now().UTC()
	res, err := l.db.ExecContext(ctx, `
INSERT INTO unlocks (id, user_id, kind, identifier, granted_at, source)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id, kind, identifier) DO NOTHING
`, id, userID, string(kind), identifier, grantedAt.UnixMilli(), source)
	if err != nil {
		return Grant{}, fmt.Errorf("insert unlock: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return Grant{}, fmt.Errorf("insert unlock result: %w", err)
	}

	row := l.db.QueryRowContext(ctx, `
SELECT id, user_id, kind, identifier, granted_at, source
FROM unlocks
WHERE user_id = ? AND kind = ? AND identifier = ?
`, userID, string(kind), identifier)
	rec, err := scanUnlock(row)
	if err != nil {
		return Grant{}, fmt.Errorf("read unlock back: %w", err)
	}
	return Grant{Granted: inserted > 0, Record: rec}, nil
}

// Unlocks returns every record for the user, oldest grant first.
func (l *SQLiteLedger) Unlocks(ctx context.Context, userID string) ([]model.UnlockRecord, error) {
	rows, err := l.db.QueryContext(ctx, `
SELECT id, user_id, kind, identifier, granted_at, source
FROM unlocks
WHERE user_id = ?
ORDER BY granted_at ASC, id ASC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list unlocks: %w", err)
	}
	defer rows.Close()

	var out []model.UnlockRecord
	for rows.Next() {
		rec, err := scanUnlock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan unlock: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate unlocks: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUnlock(row rowScanner) (model.UnlockRecord, error) {
	var rec model.UnlockRecord
	var kind string
	var grantedAt int64
	if err := row.Scan(&rec.ID, &rec.UserID, &kind, &rec.Identifier, &grantedAt, &rec.Source); err != nil {
		return model.UnlockRecord{}, err
	}
	rec.Kind = model.UnlockKind(kind)
	rec.GrantedAt = time.UnixMilli(grantedAt).UTC()
	return rec, nil
}
