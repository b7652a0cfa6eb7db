package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/fetchmixes/internal/models"
)

// SyncRequest is everything a finished crawl writes.
type SyncRequest struct {
	Creator models.Creator
	Sets    []models.PublishedSet
	Run     *models.CrawlRun // optional; CreatorID and Inserted are filled in by Save
}

// SyncResult reports what [SyncRepository.Save] wrote.
type SyncResult struct {
	CreatorID int64
	Inserted  int
}

// SyncRepository writes a crawl's creator, sets and run record together.
type SyncRepository struct {
	db *sql.DB
}

// NewSyncRepository creates a new [SyncRepository] with the given database connection
func NewSyncRepository(db *sql.DB) *SyncRepository {
	return &SyncRepository{db: db}
}

// Save upserts the creator, inserts its sets and records the run in one transaction.
// Either everything is written or nothing is.
func (r *SyncRepository) Save(ctx context.Context, req SyncRequest) (*SyncResult, error) {
	result := &SyncResult{}

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		id, err := upsertCreator(ctx, tx, req.Creator)
		if err != nil {
			return err
		}

		inserted, err := insertSets(ctx, tx, id, req.Sets)
		if err != nil {
			return err
		}

		if req.Run != nil {
			req.Run.CreatorID = id
			req.Run.Inserted = inserted
			if err := recordRun(ctx, tx, req.Run); err != nil {
				return err
			}
		}

		result.CreatorID = id
		result.Inserted = inserted
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("saving %s: %w", req.Creator.Username, err)
	}

	return result, nil
}
