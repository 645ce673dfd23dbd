package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadgen-my/leadgen-cli/internal/model"
)

func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return &PostgresStore{pool: mock}, mock
}

func mustMarshalLead(t *testing.T, l model.Lead) []byte {
	t.Helper()
	data, err := json.Marshal(l)
	require.NoError(t, err)
	return data
}

// --- Leads ---

func TestPostgres_GetLead_NotFound(t *testing.T) {
	st, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, status, score, data, created_at, updated_at FROM leads WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	got, err := st.GetLead(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetLead_ColumnsOverrideData(t *testing.T) {
	st, mock := newMockPostgresStore(t)

	// The data JSON carries the state at save time; the columns hold the
	// current status and score.
	dataJSON := mustMarshalLead(t, model.Lead{
		ID:                "lead-1",
		Organization:      "Tech Solutions Sdn Bhd",
		Email:             "info@techsolutions.my",
		Source:            model.SourceMapListing,
		Status:            model.StatusNew,
		CompletenessScore: 0.1,
	})
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	updated := created.Add(48 * time.Hour)

	mock.ExpectQuery(`SELECT id, status, score, data, created_at, updated_at FROM leads WHERE id = \$1`).
		WithArgs("lead-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "status", "score", "data", "created_at", "updated_at"}).
			AddRow("lead-1", "contacted", 0.75, dataJSON, created, updated))

	got, err := st.GetLead(context.Background(), "lead-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Tech Solutions Sdn Bhd", got.Organization)
	assert.Equal(t, model.StatusContacted, got.Status)
	assert.InDelta(t, 0.75, got.CompletenessScore, 1e-9)
	assert.Equal(t, created, got.CreatedAt)
	assert.Equal(t, updated, got.UpdatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_SaveLeads_BulkUpsert(t *testing.T) {
	st, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE "_upsert_leads"`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_upsert_leads"}, leadColumns).
		WillReturnResult(2)
	mock.ExpectExec(`INSERT INTO "leads" .+ ON CONFLICT \("id"\) DO UPDATE SET`).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectCommit()

	n, err := st.SaveLeads(context.Background(), []model.Lead{
		{Organization: "Tech Solutions Sdn Bhd", Source: model.SourceMapListing},
		{Organization: "Nusantara Catering", Source: model.SourceWebPage},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_SaveLeads_Empty(t *testing.T) {
	st, mock := newMockPostgresStore(t)

	n, err := st.SaveLeads(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ListLeads_Filters(t *testing.T) {
	st, mock := newMockPostgresStore(t)

	dataJSON := mustMarshalLead(t, model.Lead{
		ID:           "l1",
		Organization: "Tech Solutions Sdn Bhd",
		Source:       model.SourceMapListing,
	})
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT id, status, score, data, created_at, updated_at FROM leads WHERE true`+
		` AND status = \$1 AND source = \$2 AND \(organization ILIKE \$3 OR email ILIKE \$4\)`+
		` AND score >= \$5 ORDER BY score DESC, created_at DESC LIMIT \$6`).
		WithArgs("new", "map-listing", "%tech%", "%tech%", 0.5, 100).
		WillReturnRows(pgxmock.NewRows([]string{"id", "status", "score", "data", "created_at", "updated_at"}).
			AddRow("l1", "new", 0.7, dataJSON, now, now))

	got, err := st.ListLeads(context.Background(), LeadFilter{
		Status:   model.StatusNew,
		Source:   model.SourceMapListing,
		Search:   "tech",
		MinScore: 0.5,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "l1", got[0].ID)
	assert.InDelta(t, 0.7, got[0].CompletenessScore, 1e-9)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ListLeads_Offset(t *testing.T) {
	st, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM leads WHERE true ORDER BY score DESC, created_at DESC LIMIT \$1 OFFSET \$2`).
		WithArgs(20, 40).
		WillReturnRows(pgxmock.NewRows([]string{"id", "status", "score", "data", "created_at", "updated_at"}))

	got, err := st.ListLeads(context.Background(), LeadFilter{Limit: 20, Offset: 40})
	require.NoError(t, err)
	assert.Empty(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

// --- Status history ---

func TestPostgres_UpdateLeadStatus(t *testing.T) {
	st, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status FROM leads WHERE id = \$1`).
		WithArgs("lead-1").
		WillReturnRows(pgxmock.NewRows([]string{"status"}).AddRow("new"))
	mock.ExpectExec(`UPDATE leads SET status = \$1, updated_at = \$2 WHERE id = \$3`).
		WithArgs("contacted", pgxmock.AnyArg(), "lead-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`INSERT INTO lead_status_history`).
		WithArgs("lead-1", "new", "contacted", "sent intro email", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := st.UpdateLeadStatus(context.Background(), "lead-1", model.StatusContacted, "sent intro email")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_UpdateLeadStatus_NotFound(t *testing.T) {
	st, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status FROM leads WHERE id = \$1`).
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	err := st.UpdateLeadStatus(context.Background(), "ghost", model.StatusContacted, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lead not found")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_StatusHistory(t *testing.T) {
	st, mock := newMockPostgresStore(t)

	changedAt := time.Date(2025, 4, 2, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM lead_status_history WHERE lead_id = \$1 ORDER BY id`).
		WithArgs("lead-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "lead_id", "old_status", "new_status", "note", "changed_at"}).
			AddRow(int64(1), "lead-1", "new", "contacted", "sent intro email", changedAt).
			AddRow(int64(2), "lead-1", "contacted", "responded", "", changedAt.Add(time.Hour)))

	history, err := st.StatusHistory(context.Background(), "lead-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, model.StatusNew, history[0].From)
	assert.Equal(t, model.StatusContacted, history[0].To)
	assert.Equal(t, "sent intro email", history[0].Note)
	assert.Equal(t, model.StatusResponded, history[1].To)
	require.NoError(t, mock.ExpectationsWereMet())
}

// --- Email generations ---

func TestPostgres_RecordGeneration(t *testing.T) {
	st, mock := newMockPostgresStore(t)

	createdAt := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7\) RETURNING id`).
		WithArgs("lead-1", "default", "Exploring Potential Collaboration with Alpha Trading", "Hello", "info@alpha.my", createdAt, (*time.Time)(nil)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))

	id, err := st.RecordGeneration(context.Background(), model.EmailGeneration{
		LeadID:    "lead-1",
		Template:  "default",
		Subject:   "Exploring Potential Collaboration with Alpha Trading",
		Body:      "Hello",
		Recipient: "info@alpha.my",
		CreatedAt: createdAt,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetGeneration(t *testing.T) {
	st, mock := newMockPostgresStore(t)

	createdAt := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	sentAt := createdAt.Add(10 * time.Minute)
	mock.ExpectQuery(`FROM email_generations WHERE id = \$1`).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "lead_id", "template", "subject", "body", "recipient", "created_at", "sent_at"}).
			AddRow(int64(7), "lead-1", "default", "s", "b", "info@alpha.my", createdAt, &sentAt))

	got, err := st.GetGeneration(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "default", got.Template)
	require.True(t, got.Sent())
	assert.Equal(t, sentAt, *got.SentAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetGeneration_NotFound(t *testing.T) {
	st, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM email_generations WHERE id = \$1`).
		WithArgs(int64(99)).
		WillReturnError(pgx.ErrNoRows)

	got, err := st.GetGeneration(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ListGenerations_TemplateFilter(t *testing.T) {
	st, mock := newMockPostgresStore(t)

	createdAt := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM email_generations WHERE lead_id = \$1 AND template = \$2 ORDER BY created_at DESC, id DESC`).
		WithArgs("lead-1", "lead_followup").
		WillReturnRows(pgxmock.NewRows([]string{"id", "lead_id", "template", "subject", "body", "recipient", "created_at", "sent_at"}).
			AddRow(int64(2), "lead-1", "lead_followup", "s2", "b2", "info@alpha.my", createdAt.Add(time.Hour), nil).
			AddRow(int64(1), "lead-1", "lead_followup", "s1", "b1", "info@alpha.my", createdAt, nil))

	got, err := st.ListGenerations(context.Background(), "lead-1", "lead_followup")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].ID)
	assert.False(t, got[0].Sent())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_MarkGenerationSent(t *testing.T) {
	st, mock := newMockPostgresStore(t)

	sentAt := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectExec(`UPDATE email_generations SET sent_at = \$1 WHERE id = \$2`).
		WithArgs(sentAt, int64(7)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, st.MarkGenerationSent(context.Background(), 7, sentAt))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_MarkGenerationSent_NotFound(t *testing.T) {
	st, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE email_generations SET sent_at = \$1 WHERE id = \$2`).
		WithArgs(pgxmock.AnyArg(), int64(42)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := st.MarkGenerationSent(context.Background(), 42, time.Now().UTC())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generation not found")
	require.NoError(t, mock.ExpectationsWereMet())
}

// --- Dashboard stats ---

func TestPostgres_DashboardStats(t *testing.T) {
	st, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\), COALESCE\(AVG\(score\), 0\) FROM leads`).
		WillReturnRows(pgxmock.NewRows([]string{"count", "avg"}).AddRow(3, 0.4))
	mock.ExpectQuery(`SELECT status, COUNT\(\*\) FROM leads GROUP BY status`).
		WillReturnRows(pgxmock.NewRows([]string{"status", "count"}).
			AddRow("new", 2).
			AddRow("contacted", 1))
	mock.ExpectQuery(`SELECT source, COUNT\(\*\) FROM leads GROUP BY source`).
		WillReturnRows(pgxmock.NewRows([]string{"source", "count"}).
			AddRow("map-listing", 2).
			AddRow("web-page", 1))
	mock.ExpectQuery(`SELECT COUNT\(\*\), COUNT\(sent_at\) FROM email_generations`).
		WillReturnRows(pgxmock.NewRows([]string{"generated", "sent"}).AddRow(2, 1))

	stats, err := st.DashboardStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalLeads)
	assert.Equal(t, 2, stats.ByStatus[model.StatusNew])
	assert.Equal(t, 1, stats.ByStatus[model.StatusContacted])
	assert.Equal(t, 2, stats.BySource[model.SourceMapListing])
	assert.Equal(t, 1, stats.BySource[model.SourceWebPage])
	assert.Equal(t, 2, stats.EmailsGenerated)
	assert.Equal(t, 1, stats.EmailsSent)
	assert.InDelta(t, 0.4, stats.AverageScore, 1e-9)
	require.NoError(t, mock.ExpectationsWereMet())
}

// --- Lifecycle ---

func TestPostgres_Ping(t *testing.T) {
	st, mock := newMockPostgresStore(t)

	mock.ExpectExec(`SELECT 1`).WillReturnResult(pgxmock.NewResult("SELECT", 1))

	require.NoError(t, st.Ping(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Migrate(t *testing.T) {
	st, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS leads`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, st.Migrate(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
