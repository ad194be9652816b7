package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/viralesveras/lora-tag-helper/internal/entity"
)

// ExportHistoryRepoImpl provides a concrete implementation for the ExportHistoryRepository interface using PostgreSQL.
type ExportHistoryRepoImpl struct {
	db *pgxpool.Pool
}

// NewExportHistoryRepo creates a new instance of ExportHistoryRepoImpl.
func NewExportHistoryRepo(db *pgxpool.Pool) *ExportHistoryRepoImpl {
	return &ExportHistoryRepoImpl{db: db}
}

// Record inserts a finished export and fills in its id.
func (r *ExportHistoryRepoImpl) Record(ctx context.Context, export *entity.SubsetExport) error {
	optionsJSON, err := json.Marshal(export.Options)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO subset_exports (dataset, subset_path, lora_name, image_count, filtered, low_rating, options, exported_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id;
	`
	return r.db.QueryRow(ctx, query,
		export.Dataset,
		export.SubsetPath,
		export.LoRAName,
		export.ImageCount,
		export.Filtered,
		export.LowRating,
		optionsJSON,
		export.ExportedAt,
	).Scan(&export.ID)
}

// Recent retrieves the latest exports for a LoRA name.
func (r *ExportHistoryRepoImpl) Recent(ctx context.Context, loraName string, limit int) ([]*entity.SubsetExport, error) {
	query := `
		SELECT id, dataset, subset_path, lora_name, image_count, filtered, low_rating, options, exported_at
		FROM subset_exports
		WHERE lora_name = $1
		ORDER BY exported_at DESC
		LIMIT $2;
	`
	rows, err := r.db.Query(ctx, query, loraName, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exports []*entity.SubsetExport
	for rows.Next() {
		var e entity.SubsetExport
		var optionsJSON []byte
		if err := rows.Scan(
			&e.ID,
			&e.Dataset,
			&e.SubsetPath,
			&e.LoRAName,
			&e.ImageCount,
			&e.Filtered,
			&e.LowRating,
			&optionsJSON,
			&e.ExportedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(optionsJSON, &e.Options); err != nil {
			return nil, err
		}
		exports = append(exports, &e)
	}
	return exports, rows.Err()
}
