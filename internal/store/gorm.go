package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/user/top-movies/internal/config"
	"github.com/user/top-movies/internal/model"
	"github.com/user/top-movies/internal/ranking"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormStore implements Store on top of gorm, backed by SQLite or MySQL
type GormStore struct {
	db *gorm.DB
}

// Open connects to the configured database and creates the schema if absent
func Open(cfg *config.DBConfig) (*GormStore, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverSQLite, "":
		dialector = sqlite.Open(cfg.DSN())
	case config.DriverMySQL:
		dialector = mysql.Open(cfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	maxConns := cfg.MaxConns
	if maxConns <= 0 {
		maxConns = 1
	}
	sqlDB.SetMaxOpenConns(maxConns)
	sqlDB.SetMaxIdleConns((maxConns + 1) / 2)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// Auto migrate tables
	if err := db.AutoMigrate(&model.Movie{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &GormStore{db: db}, nil
}

// ListMovies returns every movie ordered by its stored ranking, unranked last
func (s *GormStore) ListMovies(ctx context.Context) ([]*model.Movie, error) {
	var movies []*model.Movie
	result := s.db.WithContext(ctx).
		Order("ranking IS NULL").
		Order("ranking ASC").
		Order("id ASC").
		Find(&movies)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list movies: %w", result.Error)
	}
	return movies, nil
}

// GetMovie retrieves a movie by id
func (s *GormStore) GetMovie(ctx context.Context, id uint) (*model.Movie, error) {
	var movie model.Movie
	result := s.db.WithContext(ctx).First(&movie, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get movie %d: %w", id, result.Error)
	}
	return &movie, nil
}

// CreateMovie inserts a new movie. Rating, review and ranking always start unset.
func (s *GormStore) CreateMovie(ctx context.Context, movie *model.Movie) error {
	movie.ID = 0
	movie.Rating = nil
	movie.Review = nil
	movie.Ranking = nil

	if err := s.db.WithContext(ctx).Create(movie).Error; err != nil {
		return fmt.Errorf("failed to create movie: %w", err)
	}
	return nil
}

// UpdateReview writes only the rating and review columns and returns the
// stored movie afterwards
func (s *GormStore) UpdateReview(ctx context.Context, id uint, rating float64, review string) (*model.Movie, error) {
	result := s.db.WithContext(ctx).
		Model(&model.Movie{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"rating": rating,
			"review": review,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update movie %d: %w", id, result.Error)
	}
	// MySQL reports 0 affected rows when the values are unchanged;
	// GetMovie tells that apart from a missing id
	return s.GetMovie(ctx, id)
}

// DeleteMovie removes a movie by id
func (s *GormStore) DeleteMovie(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&model.Movie{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete movie %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountMovies returns the total count of movies
func (s *GormStore) CountMovies(ctx context.Context) (int64, error) {
	var count int64
	result := s.db.WithContext(ctx).Model(&model.Movie{}).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count movies: %w", result.Error)
	}
	return count, nil
}

// ApplyRanking persists recomputed ranks in a single transaction
func (s *GormStore) ApplyRanking(ctx context.Context, assignments []ranking.Assignment) error {
	if len(assignments) == 0 {
		return nil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, a := range assignments {
			err := tx.Model(&model.Movie{}).
				Where("id = ?", a.MovieID).
				UpdateColumn("ranking", a.Ranking).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to apply ranking: %w", err)
	}
	return nil
}

// Ping checks database connectivity
func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying db: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying db: %w", err)
	}
	return sqlDB.Close()
}
