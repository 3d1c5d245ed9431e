package store

import (
	"context"
	"errors"

	"github.com/user/top-movies/internal/model"
	"github.com/user/top-movies/internal/ranking"
)

// ErrNotFound is returned when a movie id does not exist
var ErrNotFound = errors.New("movie not found")

// Store defines the interface for movie persistence operations
type Store interface {
	// Movie operations
	ListMovies(ctx context.Context) ([]*model.Movie, error)
	GetMovie(ctx context.Context, id uint) (*model.Movie, error)
	CreateMovie(ctx context.Context, movie *model.Movie) error
	UpdateReview(ctx context.Context, id uint, rating float64, review string) (*model.Movie, error)
	DeleteMovie(ctx context.Context, id uint) error
	CountMovies(ctx context.Context) (int64, error)

	// Ranking
	ApplyRanking(ctx context.Context, assignments []ranking.Assignment) error

	// Health check
	Ping(ctx context.Context) error
	Close() error
}
