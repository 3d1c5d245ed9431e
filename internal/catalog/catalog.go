// Package catalog talks to the TMDB movie catalog and turns its records into
// movies ready to be stored.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	OpSearch  = "search"
	OpDetails = "details"
)

var (
	// ErrUpstream marks any failure of the remote catalog
	ErrUpstream = errors.New("catalog upstream error")
	// ErrMalformedPayload marks a catalog record missing data needed to build a movie
	ErrMalformedPayload = errors.New("malformed catalog payload")
)

// Catalog defines the read-only operations against the movie catalog
type Catalog interface {
	// Search returns candidates for a title in the provider's relevance order
	Search(ctx context.Context, title string) ([]Candidate, error)

	// Details fetches the full record of a single candidate
	Details(ctx context.Context, externalID int64) (*Details, error)
}

// Candidate is a single search result before the user picks one
type Candidate struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	PosterPath  string  `json:"poster_path"`
	ReleaseDate string  `json:"release_date"`
	Overview    string  `json:"overview"`
	VoteAverage float64 `json:"vote_average"`
}

// Details is the full catalog record of a chosen movie
type Details struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	PosterPath  string  `json:"poster_path"`
	ReleaseDate string  `json:"release_date"`
	Overview    string  `json:"overview"`
	VoteAverage float64 `json:"vote_average"`
}

// UpstreamError describes a failed catalog call
type UpstreamError struct {
	Operation  string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("catalog %s failed with HTTP status %d: %v", e.Operation, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("catalog %s failed: %v", e.Operation, e.Err)
}

// Unwrap exposes both ErrUpstream and the underlying cause to errors.Is
func (e *UpstreamError) Unwrap() []error {
	return []error{ErrUpstream, e.Err}
}

// Config holds configuration for the TMDB client
type Config struct {
	// BaseURL is the API root, e.g. https://api.themoviedb.org/3
	BaseURL string
	// APIToken is the bearer credential sent on every request
	APIToken string
	// Language is passed as the language query parameter when set
	Language string
	// Timeout bounds a single HTTP call
	Timeout time.Duration
	// RateLimit is the maximum requests per second
	RateLimit float64
}

// DefaultConfig returns default TMDB client configuration
func DefaultConfig() *Config {
	return &Config{
		BaseURL:   "https://api.themoviedb.org/3",
		Language:  "en-US",
		Timeout:   10 * time.Second,
		RateLimit: 20,
	}
}
