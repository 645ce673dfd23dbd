package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/leadgen-my/leadgen-cli/internal/db"
	"github.com/leadgen-my/leadgen-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"get_lead":             `SELECT id, status, score, data, created_at, updated_at FROM leads WHERE id = $1`,
	"get_lead_status":      `SELECT status FROM leads WHERE id = $1`,
	"update_lead_status":   `UPDATE leads SET status = $1, updated_at = $2 WHERE id = $3`,
	"insert_status_change": `INSERT INTO lead_status_history (lead_id, old_status, new_status, note, changed_at) VALUES ($1, $2, $3, $4, $5)`,
	"insert_generation":    `INSERT INTO email_generations (lead_id, template, subject, body, recipient, created_at, sent_at) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
	"get_generation":       `SELECT id, lead_id, template, subject, body, recipient, created_at, sent_at FROM email_generations WHERE id = $1`,
	"mark_generation_sent": `UPDATE email_generations SET sent_at = $1 WHERE id = $2`,
}

// leadColumns is the column order used by the bulk lead upsert.
var leadColumns = []string{"id", "organization", "email", "source", "status", "score", "data", "created_at", "updated_at"}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// Pool returns the underlying database pool for subsystems that need direct
// query access.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id           TEXT PRIMARY KEY,
	organization TEXT NOT NULL,
	email        TEXT NOT NULL DEFAULT '',
	source       TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'new',
	score        DOUBLE PRECISION NOT NULL DEFAULT 0,
	data         JSONB NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS lead_status_history (
	id         BIGSERIAL PRIMARY KEY,
	lead_id    TEXT NOT NULL REFERENCES leads(id),
	old_status TEXT NOT NULL DEFAULT '',
	new_status TEXT NOT NULL,
	note       TEXT NOT NULL DEFAULT '',
	changed_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS email_generations (
	id         BIGSERIAL PRIMARY KEY,
	lead_id    TEXT NOT NULL REFERENCES leads(id),
	template   TEXT NOT NULL,
	subject    TEXT NOT NULL,
	body       TEXT NOT NULL,
	recipient  TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	sent_at    TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status);
CREATE INDEX IF NOT EXISTS idx_leads_source ON leads(source);
CREATE INDEX IF NOT EXISTS idx_leads_score ON leads(score DESC);
CREATE INDEX IF NOT EXISTS idx_leads_organization ON leads(organization);
CREATE INDEX IF NOT EXISTS idx_status_history_lead_id ON lead_status_history(lead_id);
CREATE INDEX IF NOT EXISTS idx_generations_lead_created ON email_generations(lead_id, created_at DESC);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveLeads(ctx context.Context, leads []model.Lead) (int, error) {
	if len(leads) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	rows := make([][]any, 0, len(leads))
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
			return 0, eris.Wrapf(err, "postgres: marshal lead %s", l.ID)
		}
		rows = append(rows, []any{
			l.ID, l.Organization, l.Email, string(l.Source), string(l.Status),
			l.CompletenessScore, dataJSON, l.CreatedAt, l.UpdatedAt,
		})
	}

	// created_at is excluded from the conflict update so re-imports keep the
	// original insertion time.
	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "leads",
		Columns:      leadColumns,
		ConflictKeys: []string{"id"},
		UpdateCols:   []string{"organization", "email", "source", "status", "score", "data", "updated_at"},
	}, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: save leads")
	}
	return int(n), nil
}

func (s *PostgresStore) GetLead(ctx context.Context, id string) (*model.Lead, error) {
	var (
		leadID, status       string
		score                float64
		dataJSON             []byte
		createdAt, updatedAt time.Time
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, status, score, data, created_at, updated_at FROM leads WHERE id = $1`,
		id,
	).Scan(&leadID, &status, &score, &dataJSON, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get lead %s", id)
	}
	return decodeLead(leadID, status, score, dataJSON, createdAt, updatedAt)
}

func (s *PostgresStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error) {
	query := `SELECT id, status, score, data, created_at, updated_at FROM leads WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	if filter.Source != "" {
		query += fmt.Sprintf(` AND source = $%d`, argIdx)
		args = append(args, string(filter.Source))
		argIdx++
	}
	if filter.Search != "" {
		query += fmt.Sprintf(` AND (organization ILIKE $%d OR email ILIKE $%d)`, argIdx, argIdx+1)
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
		argIdx += 2
	}
	if filter.MinScore > 0 {
		query += fmt.Sprintf(` AND score >= $%d`, argIdx)
		args = append(args, filter.MinScore)
		argIdx++
	}
	query += ` ORDER BY score DESC, created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
		argIdx++
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list leads")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		var (
			leadID, status       string
			score                float64
			dataJSON             []byte
			createdAt, updatedAt time.Time
		)
		if err := rows.Scan(&leadID, &status, &score, &dataJSON, &createdAt, &updatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan lead")
		}
		l, err := decodeLead(leadID, status, score, dataJSON, createdAt, updatedAt)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *l)
	}
	return leads, eris.Wrap(rows.Err(), "postgres: list leads iterate")
}

func (s *PostgresStore) UpdateLeadStatus(ctx context.Context, id string, status model.LeadStatus, note string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin status update")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var current string
	err = tx.QueryRow(ctx, `SELECT status FROM leads WHERE id = $1`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return eris.Errorf("lead not found: %s", id)
		}
		return eris.Wrapf(err, "postgres: read status for lead %s", id)
	}

	now := time.Now().UTC()
	if _, err := tx.Exec(ctx,
		`UPDATE leads SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), now, id,
	); err != nil {
		return eris.Wrapf(err, "postgres: update status for lead %s", id)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO lead_status_history (lead_id, old_status, new_status, note, changed_at) VALUES ($1, $2, $3, $4, $5)`,
		id, current, string(status), note, now,
	); err != nil {
		return eris.Wrapf(err, "postgres: record status change for lead %s", id)
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit status update")
}

func (s *PostgresStore) StatusHistory(ctx context.Context, leadID string) ([]model.StatusChange, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, lead_id, old_status, new_status, note, changed_at
		 FROM lead_status_history WHERE lead_id = $1 ORDER BY id`,
		leadID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: status history")
	}
	defer rows.Close()

	var changes []model.StatusChange
	for rows.Next() {
		var c model.StatusChange
		var from, to string
		if err := rows.Scan(&c.ID, &c.LeadID, &from, &to, &c.Note, &c.ChangedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan status change")
		}
		c.From = model.LeadStatus(from)
		c.To = model.LeadStatus(to)
		changes = append(changes, c)
	}
	return changes, eris.Wrap(rows.Err(), "postgres: status history iterate")
}

func (s *PostgresStore) RecordGeneration(ctx context.Context, gen model.EmailGeneration) (int64, error) {
	createdAt := gen.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO email_generations (lead_id, template, subject, body, recipient, created_at, sent_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		gen.LeadID, gen.Template, gen.Subject, gen.Body, gen.Recipient, createdAt, gen.SentAt,
	).Scan(&id)
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: record generation for lead %s", gen.LeadID)
	}
	return id, nil
}

func (s *PostgresStore) GetGeneration(ctx context.Context, id int64) (*model.EmailGeneration, error) {
	var g model.EmailGeneration
	var sentAt *time.Time

	err := s.pool.QueryRow(ctx,
		`SELECT id, lead_id, template, subject, body, recipient, created_at, sent_at
		 FROM email_generations WHERE id = $1`,
		id,
	).Scan(&g.ID, &g.LeadID, &g.Template, &g.Subject, &g.Body, &g.Recipient, &g.CreatedAt, &sentAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get generation %d", id)
	}
	g.SentAt = sentAt
	return &g, nil
}

func (s *PostgresStore) ListGenerations(ctx context.Context, leadID, template string) ([]model.EmailGeneration, error) {
	query := `SELECT id, lead_id, template, subject, body, recipient, created_at, sent_at
	          FROM email_generations WHERE lead_id = $1`
	args := []any{leadID}
	argIdx := 2

	if template != "" {
		query += fmt.Sprintf(` AND template = $%d`, argIdx)
		args = append(args, template)
		argIdx++
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list generations")
	}
	defer rows.Close()

	var gens []model.EmailGeneration
	for rows.Next() {
		var g model.EmailGeneration
		var sentAt *time.Time
		if err := rows.Scan(&g.ID, &g.LeadID, &g.Template, &g.Subject, &g.Body, &g.Recipient, &g.CreatedAt, &sentAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan generation")
		}
		g.SentAt = sentAt
		gens = append(gens, g)
	}
	return gens, eris.Wrap(rows.Err(), "postgres: list generations iterate")
}

func (s *PostgresStore) MarkGenerationSent(ctx context.Context, id int64, sentAt time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE email_generations SET sent_at = $1 WHERE id = $2`,
		sentAt.UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: mark generation %d sent", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("generation not found: %d", id)
	}
	return nil
}

func (s *PostgresStore) DashboardStats(ctx context.Context) (*model.DashboardStats, error) {
	stats := &model.DashboardStats{
		ByStatus: make(map[model.LeadStatus]int),
		BySource: make(map[model.SourceType]int),
	}

	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(AVG(score), 0) FROM leads`,
	).Scan(&stats.TotalLeads, &stats.AverageScore)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: lead totals")
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

	err = s.pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(sent_at) FROM email_generations`,
	).Scan(&stats.EmailsGenerated, &stats.EmailsSent)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: generation totals")
	}

	return stats, nil
}

func (s *PostgresStore) countLeadsBy(ctx context.Context, column string) (map[string]int, error) {
	rows, err := s.pool.Query(ctx,
		fmt.Sprintf(`SELECT %s, COUNT(*) FROM leads GROUP BY %s`, column, column),
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: leads by %s", column)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, eris.Wrapf(err, "postgres: scan %s count", column)
		}
		counts[key] = n
	}
	return counts, eris.Wrapf(rows.Err(), "postgres: leads by %s iterate", column)
}

func decodeLead(id, status string, score float64, dataJSON []byte, createdAt, updatedAt time.Time) (*model.Lead, error) {
	var l model.Lead
	if err := json.Unmarshal(dataJSON, &l); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal lead")
	}
	l.ID = id
	l.Status = model.LeadStatus(status)
	l.CompletenessScore = score
	l.CreatedAt = createdAt
	l.UpdatedAt = updatedAt
	return &l, nil
}
