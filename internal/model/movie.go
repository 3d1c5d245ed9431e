package model

import (
	"time"
)

// Movie represents a tracked film. Title, Year, Description and ImgURL are
// filled once from catalog data; Rating and Review stay nil until the first
// edit. Ranking is recomputed on every listing and is not durable.
type Movie struct {
	ID          uint     `gorm:"primaryKey"`
	Title       string   `gorm:"size:250;not null"`
	Year        int      `gorm:"not null"`
	Description string   `gorm:"type:text;not null"`
	Rating      *float64 `gorm:"index"`
	Ranking     *int
	Review      *string `gorm:"size:500"`
	ImgURL      string  `gorm:"size:500;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the table name for Movie
func (Movie) TableName() string {
	return "movies"
}

// IsRated reports whether the movie has been given a rating yet
func (m *Movie) IsRated() bool {
	return m != nil && m.Rating != nil
}
