package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/viralesveras/lora-tag-helper/internal/entity"
)

// CatalogRepoImpl provides a concrete implementation for the CatalogRepository interface using PostgreSQL.
type CatalogRepoImpl struct {
	db *pgxpool.Pool
}

// NewCatalogRepo creates a new instance of CatalogRepoImpl.
func NewCatalogRepo(db *pgxpool.Pool) *CatalogRepoImpl {
	return &CatalogRepoImpl{db: db}
}

// Save stores or updates a batch of items within a single transaction.
func (r *CatalogRepoImpl) Save(ctx context.Context, items []*entity.CatalogItem) error {
	if len(items) == 0 {
		return nil
	}
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO items (dataset, path, title, artist, style, rating, summary, features, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (dataset, path) DO UPDATE SET
			title = EXCLUDED.title,
			artist = EXCLUDED.artist,
			style = EXCLUDED.style,
			rating = EXCLUDED.rating,
			summary = EXCLUDED.summary,
			features = EXCLUDED.features,
			updated_at = NOW();
	`
	batch := &pgx.Batch{}
	for _, item := range items {
		featuresJSON, err := json.Marshal(item.Features)
		if err != nil {
			return err
		}
		batch.Queue(query,
			item.Dataset,
			item.Path,
			item.Title,
			item.Artist,
			item.Style,
			item.Rating,
			item.Summary,
			featuresJSON,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// FindByFeature lists the items of a dataset whose features contain the given name.
func (r *CatalogRepoImpl) FindByFeature(ctx context.Context, dataset, feature string, limit int) ([]*entity.CatalogItem, error) {
	query := `
		SELECT id, dataset, path, title, artist, style, rating, summary, features, updated_at
		FROM items
		WHERE dataset = $1 AND jsonb_exists(features, $2)
		ORDER BY path ASC
		LIMIT $3;
	`
	rows, err := r.db.Query(ctx, query, dataset, feature, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*entity.CatalogItem
	for rows.Next() {
		var item entity.CatalogItem
		var featuresJSON []byte
		if err := rows.Scan(
			&item.ID,
			&item.Dataset,
			&item.Path,
			&item.Title,
			&item.Artist,
			&item.Style,
			&item.Rating,
			&item.Summary,
			&featuresJSON,
			&item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(featuresJSON, &item.Features); err != nil {
			return nil, err
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}
