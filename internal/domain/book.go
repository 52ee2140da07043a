package domain

import "time"

// Book represents the canonical book entity in the catalog.
type Book struct {
	ID            string
	Title         string
	Author        string
	Description   *string
	Genre         []string
	CoverImage    *string
	Rating        float64
	PublishedDate *string
	Pages         *int
	ISBN          *string
	Publisher     *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
