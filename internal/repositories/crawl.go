package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/fetchmixes/internal/models"
	"github.com/desertthunder/fetchmixes/internal/shared"
)

// CrawlRunRepository persists [models.CrawlRun] rows.
type CrawlRunRepository struct {
	db *sql.DB
}

// NewCrawlRunRepository creates a new [CrawlRunRepository] with the given database connection
func NewCrawlRunRepository(db *sql.DB) *CrawlRunRepository {
	return &CrawlRunRepository{db: db}
}

// Record stores run, assigning it an id when it has none.
func (r *CrawlRunRepository) Record(ctx context.Context, run *models.CrawlRun) error {
	return recordRun(ctx, r.db, run)
}

func recordRun(ctx context.Context, q querier, run *models.CrawlRun) error {
	if run.ID == "" {
		run.ID = shared.GenerateID()
	}
	if run.CreatorID == 0 {
		return fmt.Errorf("%w: crawl run has no creator", shared.ErrInvalidInput)
	}

	query := `
		INSERT INTO crawl_runs (id, creator_id, source, fetched, inserted, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := q.ExecContext(ctx, query, run.ID, run.CreatorID, run.Source, run.Fetched, run.Inserted, run.StartedAt.UTC(), run.FinishedAt.UTC())
	if err != nil {
		return storeError("failed to record crawl run", err)
	}
	return nil
}

// CrawlRunEntry is a crawl run with its creator's username.
type CrawlRunEntry struct {
	models.CrawlRun
	Username string `json:"username"`
}

// List returns the most recent crawl runs first. A non-positive limit lists all of them.
func (r *CrawlRunRepository) List(ctx context.Context, limit int) ([]CrawlRunEntry, error) {
	query := `
		SELECT r.id, r.creator_id, c.username, r.source, r.fetched, r.inserted, r.started_at, r.finished_at
		FROM crawl_runs r
		JOIN creators c ON c.id = r.creator_id
		ORDER BY r.finished_at DESC
		LIMIT ?
	`
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, storeError("failed to list crawl runs", err)
	}
	defer rows.Close()

	runs := []CrawlRunEntry{}
	for rows.Next() {
		var e CrawlRunEntry
		if err := rows.Scan(&e.ID, &e.CreatorID, &e.Username, &e.Source, &e.Fetched, &e.Inserted, &e.StartedAt, &e.FinishedAt); err != nil {
			return nil, storeError("failed to scan crawl run", err)
		}
		runs = append(runs, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("failed to iterate crawl runs", err)
	}
	return runs, nil
}
