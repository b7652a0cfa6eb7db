package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/fetchmixes/internal/models"
	"github.com/desertthunder/fetchmixes/internal/shared"
)

// CreatorRepository persists [models.Creator] rows.
type CreatorRepository struct {
	db *sql.DB
}

// NewCreatorRepository creates a new [CreatorRepository] with the given database connection
func NewCreatorRepository(db *sql.DB) *CreatorRepository {
	return &CreatorRepository{db: db}
}

// Upsert stores the creator keyed by its platform id and returns the store id.
//
// An existing row keeps its id and takes the new username.
func (r *CreatorRepository) Upsert(ctx context.Context, username, mixcloudID string) (int64, error) {
	return upsertCreator(ctx, r.db, models.Creator{Username: username, MixcloudID: mixcloudID})
}

func upsertCreator(ctx context.Context, q querier, creator models.Creator) (int64, error) {
	if err := creator.Validate(); err != nil {
		return 0, fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO creators (mixcloud_id, username) VALUES (?, ?)
		ON CONFLICT(mixcloud_id) DO UPDATE SET username = excluded.username
		RETURNING id
	`

	var id int64
	if err := q.QueryRowContext(ctx, query, creator.MixcloudID, creator.Username).Scan(&id); err != nil {
		return 0, storeError("failed to upsert creator", err)
	}
	return id, nil
}

// GetByMixcloudID retrieves a creator by its platform id.
func (r *CreatorRepository) GetByMixcloudID(ctx context.Context, mixcloudID string) (*models.Creator, error) {
	return r.getOne(ctx, "mixcloud_id = ?", mixcloudID)
}

// GetByUsername retrieves the most recently stored creator with the given username.
func (r *CreatorRepository) GetByUsername(ctx context.Context, username string) (*models.Creator, error) {
	return r.getOne(ctx, "username = ?", username)
}

func (r *CreatorRepository) getOne(ctx context.Context, where string, arg any) (*models.Creator, error) {
	query := `SELECT id, mixcloud_id, username FROM creators WHERE ` + where + ` ORDER BY id DESC LIMIT 1`

	var creator models.Creator
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&creator.ID, &creator.MixcloudID, &creator.Username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %v", shared.ErrCreatorNotFound, arg)
	}
	if err != nil {
		return nil, storeError("failed to query creator", err)
	}
	return &creator, nil
}

// CreatorSummary is a creator together with its stored set count.
type CreatorSummary struct {
	models.Creator
	Sets int `json:"sets"`
}

// List returns every creator ordered by username with the number of sets linked to it.
func (r *CreatorRepository) List(ctx context.Context) ([]CreatorSummary, error) {
	query := `
		SELECT c.id, c.mixcloud_id, c.username, COUNT(s.id)
		FROM creators c
		LEFT JOIN sets s ON s.creator_id = c.id
		GROUP BY c.id
		ORDER BY c.username, c.id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, storeError("failed to list creators", err)
	}
	defer rows.Close()

	creators := []CreatorSummary{}
	for rows.Next() {
		var c CreatorSummary
		if err := rows.Scan(&c.ID, &c.MixcloudID, &c.Username, &c.Sets); err != nil {
			return nil, storeError("failed to scan creator", err)
		}
		creators = append(creators, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("failed to iterate creators", err)
	}
	return creators, nil
}
