package entity

import "time"

// CatalogItem mirrors the `items` PostgreSQL table schema.
type CatalogItem struct {
	ID        int64
	Dataset   string
	Path      string // relative to Dataset, slash separated
	Title     string
	Artist    string
	Style     string
	Rating    int
	Summary   string
	Features  Features // Stored as JSONB in PostgreSQL
	UpdatedAt time.Time
}
