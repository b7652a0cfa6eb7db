package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/desertthunder/fetchmixes/internal/models"
)

// SetRepository persists [models.PublishedSet] rows.
type SetRepository struct {
	db *sql.DB
}

// NewSetRepository creates a new [SetRepository] with the given database connection
func NewSetRepository(db *sql.DB) *SetRepository {
	return &SetRepository{db: db}
}

// InsertBatch links every set to creatorID and inserts them in one transaction.
//
// Sets whose URL is already stored are skipped; the returned count covers only
// the new rows. A failure rolls back the whole batch.
func (r *SetRepository) InsertBatch(ctx context.Context, creatorID int64, sets []models.PublishedSet) (int, error) {
	var inserted int
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		n, err := insertSets(ctx, tx, creatorID, sets)
		inserted = n
		return err
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

func insertSets(ctx context.Context, q querier, creatorID int64, sets []models.PublishedSet) (int, error) {
	for _, set := range sets {
		if err := set.Validate(); err != nil {
			return 0, fmt.Errorf("validation failed: %w", err)
		}
	}

	query := `
		INSERT INTO sets (url, cover_url, publish_date, updated_date, creator_id)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(url) DO NOTHING
	`

	inserted := 0
	for _, set := range sets {
		result, err := q.ExecContext(ctx, query, set.URL, set.CoverURL, set.PublishedAt.UTC(), set.UpdatedAt.UTC(), creatorID)
		if err != nil {
			return 0, storeError("failed to insert set "+set.URL, err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return 0, storeError("failed to get affected rows", err)
		}
		inserted += int(rows)
	}
	return inserted, nil
}

// SetFilter narrows [SetRepository.List].
type SetFilter struct {
	CreatorID *int64 // nil lists every set
	Limit     int    // 0 means no limit
}

func (f SetFilter) where() (string, []any) {
	if f.CreatorID == nil {
		return "", nil
	}
	return " WHERE creator_id = ?", []any{*f.CreatorID}
}

// List returns sets newest first.
func (r *SetRepository) List(ctx context.Context, filter SetFilter) ([]models.PublishedSet, error) {
	var b strings.Builder
	b.WriteString(`SELECT id, creator_id, url, cover_url, publish_date, updated_date FROM sets`)
	where, args := filter.where()
	b.WriteString(where)
	b.WriteString(` ORDER BY publish_date DESC, id DESC`)
	if filter.Limit > 0 {
		b.WriteString(` LIMIT ?`)
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, storeError("failed to list sets", err)
	}
	defer rows.Close()

	sets := []models.PublishedSet{}
	for rows.Next() {
		var (
			set       models.PublishedSet
			creatorID sql.NullInt64
		)
		if err := rows.Scan(&set.ID, &creatorID, &set.URL, &set.CoverURL, &set.PublishedAt, &set.UpdatedAt); err != nil {
			return nil, storeError("failed to scan set", err)
		}
		if creatorID.Valid {
			id := creatorID.Int64
			set.CreatorID = &id
		}
		sets = append(sets, set)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("failed to iterate sets", err)
	}
	return sets, nil
}

// Count returns the number of stored sets matching filter. Limit is ignored.
func (r *SetRepository) Count(ctx context.Context, filter SetFilter) (int, error) {
	where, args := filter.where()

	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sets`+where, args...).Scan(&n); err != nil {
		return 0, storeError("failed to count sets", err)
	}
	return n, nil
}
