package repository

import (
	"context"

	"github.com/viralesveras/lora-tag-helper/internal/entity"
)

// CatalogRepository indexes dataset items for search.
type CatalogRepository interface {
	// Save stores or updates a batch of items.
	Save(ctx context.Context, items []*entity.CatalogItem) error
	// FindByFeature lists items of a dataset carrying the named feature.
	FindByFeature(ctx context.Context, dataset, feature string, limit int) ([]*entity.CatalogItem, error)
}

// ExportHistoryRepository records finished subset exports.
type ExportHistoryRepository interface {
	// Record stores one export.
	Record(ctx context.Context, export *entity.SubsetExport) error
	// Recent lists the latest exports of a LoRA name, newest first.
	Recent(ctx context.Context, loraName string, limit int) ([]*entity.SubsetExport, error)
}
