// Package movies implements the list, add, edit and delete workflows on top
// of the movie store and the external catalog.
package movies

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/user/top-movies/internal/catalog"
	"github.com/user/top-movies/internal/form"
	"github.com/user/top-movies/internal/metrics"
	"github.com/user/top-movies/internal/model"
	"github.com/user/top-movies/internal/ranking"
	"github.com/user/top-movies/internal/store"
)

// Selection is the outcome of picking a catalog candidate
type Selection struct {
	Movie *model.Movie
	// SuggestedRating is the catalog vote average rounded to one decimal
	SuggestedRating float64
}

// Service orchestrates the movie workflows
type Service struct {
	store     store.Store
	catalog   catalog.Catalog
	imageBase string
}

// NewService creates a new movie service
func NewService(store store.Store, catalog catalog.Catalog, imageBase string) *Service {
	return &Service{
		store:     store,
		catalog:   catalog,
		imageBase: imageBase,
	}
}

// List recomputes the ranking, persists it and returns the movies best first
func (s *Service) List(ctx context.Context) ([]*model.Movie, error) {
	movies, err := s.store.ListMovies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}

	assignments := ranking.Compute(movies)
	if err := s.store.ApplyRanking(ctx, assignments); err != nil {
		return nil, fmt.Errorf("failed to store ranking: %w", err)
	}

	metrics.SetMovieCount(len(movies))
	return ranking.Apply(movies, assignments), nil
}

// Search looks up candidates for a validated title
func (s *Service) Search(ctx context.Context, input form.SearchInput) ([]catalog.Candidate, error) {
	candidates, err := s.catalog.Search(ctx, input.Title)
	if err != nil {
		metrics.RecordError("catalog_search")
		return nil, fmt.Errorf("failed to search catalog for %q: %w", input.Title, err)
	}
	return candidates, nil
}

// Select fetches the chosen candidate, stores it as a new unrated movie and
// returns it along with the catalog's rating as a suggestion
func (s *Service) Select(ctx context.Context, externalID int64) (*Selection, error) {
	details, err := s.catalog.Details(ctx, externalID)
	if err != nil {
		metrics.RecordError("catalog_details")
		return nil, fmt.Errorf("failed to fetch catalog movie %d: %w", externalID, err)
	}

	movie, err := catalog.ToMovie(details, s.imageBase)
	if err != nil {
		metrics.RecordError("catalog_payload")
		return nil, fmt.Errorf("failed to convert catalog movie %d: %w", externalID, err)
	}

	if err := s.store.CreateMovie(ctx, movie); err != nil {
		return nil, fmt.Errorf("failed to add movie %q: %w", movie.Title, err)
	}

	log.Info().
		Uint("id", movie.ID).
		Int64("externalID", externalID).
		Str("title", movie.Title).
		Int("year", movie.Year).
		Msg("Movie added")

	return &Selection{
		Movie:           movie,
		SuggestedRating: catalog.SuggestedRating(details.VoteAverage),
	}, nil
}

// Get returns a single movie; store.ErrNotFound if absent
func (s *Service) Get(ctx context.Context, id uint) (*model.Movie, error) {
	return s.store.GetMovie(ctx, id)
}

// Edit stores a validated rating and review
func (s *Service) Edit(ctx context.Context, id uint, input form.EditInput) (*model.Movie, error) {
	movie, err := s.store.UpdateReview(ctx, id, input.Rating, input.Review)
	if err != nil {
		return nil, fmt.Errorf("failed to edit movie %d: %w", id, err)
	}

	log.Info().Uint("id", id).Float64("rating", input.Rating).Msg("Movie reviewed")
	return movie, nil
}

// Delete removes a movie
func (s *Service) Delete(ctx context.Context, id uint) error {
	if err := s.store.DeleteMovie(ctx, id); err != nil {
		return fmt.Errorf("failed to delete movie %d: %w", id, err)
	}

	log.Info().Uint("id", id).Msg("Movie deleted")
	return nil
}
