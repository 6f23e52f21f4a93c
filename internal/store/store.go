// Package store persists profiling reports to PostgreSQL.
//
// Each upload produces one row in the reports table. Successful runs
// carry the full report as JSONB plus a scalar summary for cheap
// listing; failed reads produce a degraded row that records the
// filename and the read error so the upload still shows in history.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/csvqc/csvqc/internal/profile"
)

// Report statuses.
const (
	StatusCompleted = "completed"
	StatusReadError = "read_error"
)

// ErrNotFound is returned when a report ID does not exist.
var ErrNotFound = errors.New("report not found")

// Store provides report persistence backed by a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a store using the given pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Record is a persisted profiling run. Report is nil for degraded rows
// and for listings, which only load the summary and the worst null
// columns.
type Record struct {
	ID          uuid.UUID           `json:"id"`
	Filename    string              `json:"filename"`
	SavedTo     string              `json:"saved_to"`
	Status      string              `json:"status"`
	ReadError   string              `json:"read_error,omitempty"`
	RowCount    int                 `json:"row_count"`
	ColumnCount int                 `json:"column_count"`
	Summary     profile.Summary     `json:"summary"`
	TopNulls    profile.NullProfile `json:"top_nulls,omitempty"`
	Report      *profile.Report     `json:"report,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}

// topNullCount caps how many null columns listings carry.
const topNullCount = 3

// EnsureSchema creates the reports table if it does not exist.
// Safe to call on every startup.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS reports (
			id           UUID PRIMARY KEY,
			filename     TEXT NOT NULL,
			saved_to     TEXT NOT NULL,
			status       TEXT NOT NULL,
			read_error   TEXT,
			row_count    INTEGER,
			column_count INTEGER,
			report       JSONB,
			summary      JSONB,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports (created_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// InsertReport persists a completed profiling run and returns the
// stored record.
func (s *Store) InsertReport(ctx context.Context, filename, savedTo string, rep *profile.Report) (*Record, error) {
	reportJSON, err := json.Marshal(rep)
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	summaryJSON, err := json.Marshal(rep.Summary)
	if err != nil {
		return nil, fmt.Errorf("marshal summary: %w", err)
	}

	rec := &Record{
		ID:          uuid.New(),
		Filename:    filename,
		SavedTo:     savedTo,
		Status:      StatusCompleted,
		RowCount:    rep.RowCount,
		ColumnCount: rep.ColumnCount,
		Summary:     rep.Summary,
		Report:      rep,
	}

	err = s.pool.QueryRow(ctx, `
		INSERT INTO reports (id, filename, saved_to, status, row_count, column_count, report, summary)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`, rec.ID, rec.Filename, rec.SavedTo, rec.Status, rec.RowCount, rec.ColumnCount, reportJSON, summaryJSON).
		Scan(&rec.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert report: %w", err)
	}

	return rec, nil
}

// InsertFailure persists a degraded row for an upload whose CSV could
// not be read. The file is kept on disk; only metadata is stored.
func (s *Store) InsertFailure(ctx context.Context, filename, savedTo, readErr string) (*Record, error) {
	rec := &Record{
		ID:        uuid.New(),
		Filename:  filename,
		SavedTo:   savedTo,
		Status:    StatusReadError,
		ReadError: readErr,
	}

	err := s.pool.QueryRow(ctx, `
		INSERT INTO reports (id, filename, saved_to, status, read_error)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, rec.ID, rec.Filename, rec.SavedTo, rec.Status, rec.ReadError).
		Scan(&rec.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert failure record: %w", err)
	}

	return rec, nil
}

// ListRecent returns the most recent records, newest first. Summaries
// are loaded; full reports are not.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, filename, saved_to, status, read_error, row_count, column_count, summary, created_at,
		       report->'nulls'
		FROM reports
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows, false)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}

	return records, nil
}

// GetByID returns a single record including its full report.
// Returns ErrNotFound when the ID does not exist.
func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, filename, saved_to, status, read_error, row_count, column_count, summary, created_at, report
		FROM reports
		WHERE id = $1
	`, id)
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("get report: %w", err)
		}
		return nil, ErrNotFound
	}

	return scanRecord(rows, true)
}

// scanRecord maps a reports row onto a Record. Column order must match
// the SELECT lists above. The tenth column is the full report for
// GetByID and the report's nulls section for listings.
func scanRecord(row pgx.Rows, withReport bool) (*Record, error) {
	var (
		rec         Record
		readError   pgtype.Text
		rowCount    pgtype.Int4
		columnCount pgtype.Int4
		summaryJSON []byte
		extraJSON   []byte
	)

	err := row.Scan(
		&rec.ID, &rec.Filename, &rec.SavedTo, &rec.Status,
		&readError, &rowCount, &columnCount, &summaryJSON, &rec.CreatedAt,
		&extraJSON,
	)
	if err != nil {
		return nil, fmt.Errorf("scan report: %w", err)
	}

	if readError.Valid {
		rec.ReadError = readError.String
	}
	if rowCount.Valid {
		rec.RowCount = int(rowCount.Int32)
	}
	if columnCount.Valid {
		rec.ColumnCount = int(columnCount.Int32)
	}
	if len(summaryJSON) > 0 {
		if err := json.Unmarshal(summaryJSON, &rec.Summary); err != nil {
			return nil, fmt.Errorf("decode summary: %w", err)
		}
	}

	if len(extraJSON) == 0 {
		return &rec, nil
	}

	if withReport {
		rec.Report = &profile.Report{}
		if err := json.Unmarshal(extraJSON, rec.Report); err != nil {
			return nil, fmt.Errorf("decode report: %w", err)
		}
		return &rec, nil
	}

	var nulls profile.NullProfile
	if err := json.Unmarshal(extraJSON, &nulls); err != nil {
		return nil, fmt.Errorf("decode nulls: %w", err)
	}
	if len(nulls) > topNullCount {
		nulls = nulls[:topNullCount]
	}
	rec.TopNulls = nulls
	return &rec, nil
}
