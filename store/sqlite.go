package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/nathoo/worldnav/engine/save"
	"github.com/nathoo/worldnav/types"
)

// SQLite stores session snapshots in a SQLite database.
type SQLite struct {
	conn *sqlx.DB
	log  *zap.Logger
}

type sessionRow struct {
	ID        string `db:"id"`
	Snapshot  string `db:"snapshot"`
	UpdatedAt string `db:"updated_at"`
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(path string, log *zap.Logger) (*SQLite, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating store dir: %w", err)
		}
	}

	conn, err := sqlx.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	conn.SetMaxOpenConns(1)

	s := &SQLite{conn: conn, log: log}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.conn.Close()
}

func (s *SQLite) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		snapshot TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// Load returns the stored session, or false when none exists.
func (s *SQLite) Load(sessionID string) (types.SessionState, bool, error) {
	var row sessionRow
	err := s.conn.Get(&row, "SELECT id, snapshot, updated_at FROM sessions WHERE id = ?", sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return types.SessionState{}, false, nil
	}
	if err != nil {
		return types.SessionState{}, false, fmt.Errorf("loading session %s: %w", sessionID, err)
	}
	rec, err := row.record()
	if err != nil {
		return types.SessionState{}, false, err
	}
	return rec.State, true, nil
}

// Save writes a snapshot of st under sessionID inside a transaction.
func (s *SQLite) Save(sessionID string, st types.SessionState) error {
	data, err := save.Save(sessionID, st)
	if err != nil {
		return fmt.Errorf("encoding session %s: %w", sessionID, err)
	}

	tx, err := s.conn.Beginx()
	if err != nil {
		return fmt.Errorf("saving session %s: %w", sessionID, err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO sessions (id, snapshot, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET snapshot = excluded.snapshot, updated_at = excluded.updated_at`,
		sessionID, string(data), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("saving session %s: %w", sessionID, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing session %s: %w", sessionID, err)
	}
	s.log.Debug("session saved", zap.String("session", sessionID))
	return nil
}

// List returns every stored session ordered by id.
func (s *SQLite) List() ([]Record, error) {
	var rows []sessionRow
	if err := s.conn.Select(&rows, "SELECT id, snapshot, updated_at FROM sessions ORDER BY id"); err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	records := make([]Record, 0, len(rows))
	for _, r := range rows {
		rec, err := r.record()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// ClearAll removes every session.
func (s *SQLite) ClearAll() error {
	res, err := s.conn.Exec("DELETE FROM sessions")
	if err != nil {
		return fmt.Errorf("clearing sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	s.log.Info("sessions cleared", zap.Int64("count", n))
	return nil
}

func (r sessionRow) record() (Record, error) {
	sd, err := save.Load([]byte(r.Snapshot))
	if err != nil {
		return Record{}, fmt.Errorf("decoding session %s: %w", r.ID, err)
	}
	updated, err := time.Parse(time.RFC3339Nano, r.UpdatedAt)
	if err != nil {
		return Record{}, fmt.Errorf("decoding session %s timestamp: %w", r.ID, err)
	}
	return Record{ID: r.ID, State: sd.State(), UpdatedAt: updated}, nil
}
