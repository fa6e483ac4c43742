package report

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps reports in SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// Listing is the short form of a stored report.
type Listing struct {
	SessionID         string
	PrimarySkill      string
	Phase             string
	Final             float64
	Recommendation    string
	TerminationReason string
	CreatedAt         time.Time
}

// NewSQLiteStore opens the database at dsn and applies migrations.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection to ":memory:" opens a separate database.
	db.SetMaxOpenConns(1)

	store, err := NewSQLiteStoreFromDB(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLiteStoreFromDB uses an already opened database.
func NewSQLiteStoreFromDB(db *sql.DB) (*SQLiteStore, error) {
	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS reports (
			session_id TEXT PRIMARY KEY,
			report_id TEXT NOT NULL,
			phase TEXT NOT NULL,
			primary_skill TEXT,
			final_score REAL NOT NULL,
			recommendation TEXT NOT NULL,
			termination_reason TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			payload TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_created ON reports(created_at)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save stores r, replacing an earlier report of the same session.
func (s *SQLiteStore) Save(ctx context.Context, r *Report) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	var reason sql.NullString
	if r.Termination != nil {
		reason = sql.NullString{String: string(r.Termination.Reason), Valid: true}
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO reports
			(session_id, report_id, phase, primary_skill, final_score, recommendation, termination_reason, created_at, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.SessionID, r.ID, string(r.Phase), r.PrimarySkill(), r.Final, string(r.Recommendation), reason, r.CreatedAt, string(payload))
	if err != nil {
		return fmt.Errorf("save report %s: %w", r.SessionID, err)
	}
	return nil
}

// Get returns the report of a session, or nil when there is none.
func (s *SQLiteStore) Get(ctx context.Context, sessionID string) (*Report, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM reports WHERE session_id = ?`, sessionID).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var r Report
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", sessionID, err)
	}
	return &r, nil
}

// List returns the newest reports first.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]Listing, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, primary_skill, phase, final_score, recommendation, termination_reason, created_at
		FROM reports ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Listing
	for rows.Next() {
		var (
			l      Listing
			skill  sql.NullString
			reason sql.NullString
		)
		if err := rows.Scan(&l.SessionID, &skill, &l.Phase, &l.Final, &l.Recommendation, &reason, &l.CreatedAt); err != nil {
			return nil, err
		}
		l.PrimarySkill = skill.String
		l.TerminationReason = reason.String
		out = append(out, l)
	}
	return out, rows.Err()
}
