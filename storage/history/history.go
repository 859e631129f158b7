// Package history persists a queryable log of EBSL evidence events,
// supplementing the key-value trust store with a table that can be queried
// by participant or by height. No RPC method reads it.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"tourneychain/core/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS evidence_events (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	participant TEXT NOT NULL,
	kind        TEXT NOT NULL,
	height      INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_evidence_participant ON evidence_events(participant);
CREATE INDEX IF NOT EXISTS idx_evidence_height ON evidence_events(height);
`

// Store is the sqlite-backed evidence history table.
type Store struct {
	db *sql.DB
}

// Open initializes the backing store at path. An empty path opens an
// in-memory database, useful for tests.
func Open(path string) (*Store, error) {
	dsn := strings.TrimSpace(path)
	if dsn == "" {
		dsn = ":memory:"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("history: open: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record appends one evidence event to the history table.
func (s *Store) Record(ctx context.Context, evt types.EvidenceEvent) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO evidence_events(participant, kind, height) VALUES (?, ?, ?)`,
		participantHex(evt.Participant), evt.Kind.String(), evt.Height,
	)
	if err != nil {
		return fmt.Errorf("history: insert: %w", err)
	}
	return nil
}

// Record is a typed record returned from a query, carrying the
// auto-incrementing row id callers can use for cursor-based paging.
type Record struct {
	ID          int64
	Participant string
	Kind        string
	Height      uint64
}

// ListByParticipant returns evidence events for one participant, most
// recent first, bounded by limit.
func (s *Store) ListByParticipant(ctx context.Context, participant types.ParticipantID, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, participant, kind, height FROM evidence_events WHERE participant = ? ORDER BY id DESC LIMIT ?`,
		participantHex(participant), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("history: query: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// ListByHeight returns evidence events recorded at height, most recent
// first, bounded by limit.
func (s *Store) ListByHeight(ctx context.Context, height uint64, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, participant, kind, height FROM evidence_events WHERE height = ? ORDER BY id DESC LIMIT ?`,
		height, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("history: query: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Participant, &r.Kind, &r.Height); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func participantHex(p types.ParticipantID) string {
	const hexDigits = "0123456789abcdef"
	buf := make([]byte, len(p)*2)
	for i, b := range p {
		buf[i*2] = hexDigits[b>>4]
		buf[i*2+1] = hexDigits[b&0x0f]
	}
	return string(buf)
}
