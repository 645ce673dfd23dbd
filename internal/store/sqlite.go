package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/leadgen-my/leadgen-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	// SQLite allows one writer, and the pragmas below are per-connection.
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id           TEXT PRIMARY KEY,
	organization TEXT NOT NULL,
	email        TEXT NOT NULL DEFAULT '',
	source       TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'new',
	score        REAL NOT NULL DEFAULT 0,
	data         TEXT NOT NULL,
	created_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS lead_status_history (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	lead_id    TEXT NOT NULL REFERENCES leads(id),
	old_status TEXT NOT NULL DEFAULT '',
	new_status TEXT NOT NULL,
	note       TEXT NOT NULL DEFAULT '',
	changed_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS email_generations (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	lead_id    TEXT NOT NULL REFERENCES leads(id),
	template   TEXT NOT NULL,
	subject    TEXT NOT NULL,
	body       TEXT NOT NULL,
	recipient  TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	sent_at    DATETIME
);

CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status);
CREATE INDEX IF NOT EXISTS idx_leads_source ON leads(source);
CREATE INDEX IF NOT EXISTS idx_leads_score ON leads(score);
CREATE INDEX IF NOT EXISTS idx_leads_organization ON leads(organization);
CREATE INDEX IF NOT EXISTS idx_status_history_lead_id ON lead_status_history(lead_id);
CREATE INDEX IF NOT EXISTS idx_generations_lead_created ON email_generations(lead_id, created_at DESC);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveLeads(ctx context.Context, leads []model.Lead) (int, error) {
	if len(leads) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin save leads")
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	for _, l := range leads {
		if l.ID == "" {
			l.ID = uuid.New().String()
		}
		if l.Status == "" {
			l.Status = model.StatusNew
		}
		if l.CreatedAt.IsZero() {
			l.CreatedAt = now
		}
		l.UpdatedAt = now

		dataJSON, err := json.Marshal(l)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: marshal lead %s", l.ID)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO leads (id, organization, email, source, status, score, data, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
			   organization = excluded.organization,
			   email        = excluded.email,
			   source       = excluded.source,
			   status       = excluded.status,
			   score        = excluded.score,
			   data         = excluded.data,
			   updated_at   = excluded.updated_at`,
			l.ID, l.Organization, l.Email, string(l.Source), string(l.Status),
			l.CompletenessScore, string(dataJSON), l.CreatedAt, l.UpdatedAt,
		)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: save lead %s", l.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit save leads")
	}
	return len(leads), nil
}

func (s *SQLiteStore) GetLead(ctx context.Context, id string) (*model.Lead, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, status, score, data, created_at, updated_at FROM leads WHERE id = ?`,
		id,
	)
	return scanLead(row)
}

func (s *SQLiteStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error) {
	query := `SELECT id, status, score, data, created_at, updated_at FROM leads WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.Source != "" {
		query += ` AND source = ?`
		args = append(args, string(filter.Source))
	}
	if filter.Search != "" {
		query += ` AND (organization LIKE ? OR email LIKE ?)`
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}
	if filter.MinScore > 0 {
		query += ` AND score >= ?`
		args = append(args, filter.MinScore)
	}
	query += ` ORDER BY score DESC, created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list leads")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *l)
	}
	return leads, eris.Wrap(rows.Err(), "sqlite: list leads iterate")
}

func (s *SQLiteStore) UpdateLeadStatus(ctx context.Context, id string, status model.LeadStatus, note string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin status update")
	}
	defer func() { _ = tx.Rollback() }()

	var current string
	err = tx.QueryRowContext(ctx, `SELECT status FROM leads WHERE id = ?`, id).Scan(&current)
	if err == sql.ErrNoRows {
		return eris.Errorf("lead not found: %s", id)
	}
	if err != nil {
		return eris.Wrapf(err, "sqlite: read status for lead %s", id)
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx,
		`UPDATE leads SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), now, id,
	); err != nil {
		return eris.Wrapf(err, "sqlite: update status for lead %s", id)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO lead_status_history (lead_id, old_status, new_status, note, changed_at) VALUES (?, ?, ?, ?, ?)`,
		id, current, string(status), note, now,
	); err != nil {
		return eris.Wrapf(err, "sqlite: record status change for lead %s", id)
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit status update")
}

func (s *SQLiteStore) StatusHistory(ctx context.Context, leadID string) ([]model.StatusChange, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, lead_id, old_status, new_status, note, changed_at
		 FROM lead_status_history WHERE lead_id = ? ORDER BY id`,
		leadID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: status history")
	}
	defer rows.Close()

	var changes []model.StatusChange
	for rows.Next() {
		var c model.StatusChange
		if err := rows.Scan(&c.ID, &c.LeadID, &c.From, &c.To, &c.Note, &c.ChangedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan status change")
		}
		changes = append(changes, c)
	}
	return changes, eris.Wrap(rows.Err(), "sqlite: status history iterate")
}

func (s *SQLiteStore) RecordGeneration(ctx context.Context, gen model.EmailGeneration) (int64, error) {
	createdAt := gen.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO email_generations (lead_id, template, subject, body, recipient, created_at, sent_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		gen.LeadID, gen.Template, gen.Subject, gen.Body, gen.Recipient, createdAt, gen.SentAt,
	)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: record generation for lead %s", gen.LeadID)
	}
	id, err := res.LastInsertId()
	return id, eris.Wrap(err, "sqlite: generation id")
}

func (s *SQLiteStore) GetGeneration(ctx context.Context, id int64) (*model.EmailGeneration, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, lead_id, template, subject, body, recipient, created_at, sent_at
		 FROM email_generations WHERE id = ?`,
		id,
	)
	return scanGeneration(row)
}

func (s *SQLiteStore) ListGenerations(ctx context.Context, leadID, template string) ([]model.EmailGeneration, error) {
	query := `SELECT id, lead_id, template, subject, body, recipient, created_at, sent_at
	          FROM email_generations WHERE lead_id = ?`
	args := []any{leadID}

	if template != "" {
		query += ` AND template = ?`
		args = append(args, template)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list generations")
	}
	defer rows.Close()

	var gens []model.EmailGeneration
	for rows.Next() {
		g, err := scanGeneration(rows)
		if err != nil {
			return nil, err
		}
		gens = append(gens, *g)
	}
	return gens, eris.Wrap(rows.Err(), "sqlite: list generations iterate")
}

func (s *SQLiteStore) MarkGenerationSent(ctx context.Context, id int64, sentAt time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE email_generations SET sent_at = ? WHERE id = ?`,
		sentAt.UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: mark generation %d sent", id)
	}
	return checkRowsAffected(res, "generation", id)
}

func (s *SQLiteStore) DashboardStats(ctx context.Context) (*model.DashboardStats, error) {
	stats := &model.DashboardStats{
		ByStatus: make(map[model.LeadStatus]int),
		BySource: make(map[model.SourceType]int),
	}

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(AVG(score), 0) FROM leads`,
	).Scan(&stats.TotalLeads, &stats.AverageScore)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: lead totals")
	}

	byStatus, err := s.countLeadsBy(ctx, "status")
	if err != nil {
		return nil, err
	}
	for k, n := range byStatus {
		stats.ByStatus[model.LeadStatus(k)] = n
	}

	bySource, err := s.countLeadsBy(ctx, "source")
	if err != nil {
		return nil, err
	}
	for k, n := range bySource {
		stats.BySource[model.SourceType(k)] = n
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(sent_at) FROM email_generations`,
	).Scan(&stats.EmailsGenerated, &stats.EmailsSent)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: generation totals")
	}

	return stats, nil
}

func (s *SQLiteStore) countLeadsBy(ctx context.Context, column string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT %s, COUNT(*) FROM leads GROUP BY %s`, column, column),
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: leads by %s", column)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, eris.Wrapf(err, "sqlite: scan %s count", column)
		}
		counts[key] = n
	}
	return counts, eris.Wrapf(rows.Err(), "sqlite: leads by %s iterate", column)
}

// helpers

func checkRowsAffected(res sql.Result, entity string, id any) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %v", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

// scanLead decodes a lead row. The status, score, and timestamp columns are
// authoritative over the values captured in the data JSON at save time.
func scanLead(row scannable) (*model.Lead, error) {
	var (
		id, status, dataJSON string
		score                float64
		createdAt, updatedAt time.Time
	)
	err := row.Scan(&id, &status, &score, &dataJSON, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan lead")
	}

	var l model.Lead
	if err := json.Unmarshal([]byte(dataJSON), &l); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal lead")
	}
	l.ID = id
	l.Status = model.LeadStatus(status)
	l.CompletenessScore = score
	l.CreatedAt = createdAt
	l.UpdatedAt = updatedAt
	return &l, nil
}

func scanGeneration(row scannable) (*model.EmailGeneration, error) {
	var g model.EmailGeneration
	var sentAt sql.NullTime

	err := row.Scan(&g.ID, &g.LeadID, &g.Template, &g.Subject, &g.Body, &g.Recipient, &g.CreatedAt, &sentAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan generation")
	}
	if sentAt.Valid {
		t := sentAt.Time
		g.SentAt = &t
	}
	return &g, nil
}
