package entity

import "time"

// SubsetExport mirrors the `subset_exports` PostgreSQL table schema.
type SubsetExport struct {
	ID         int64
	Dataset    string
	SubsetPath string
	LoRAName   string
	ImageCount int
	Filtered   int
	LowRating  int
	Options    SubsetInfo // Stored as JSONB in PostgreSQL
	ExportedAt time.Time
}
