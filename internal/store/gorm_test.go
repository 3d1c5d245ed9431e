package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/user/top-movies/internal/config"
	"github.com/user/top-movies/internal/model"
	"github.com/user/top-movies/internal/ranking"
)

// setupTestStore opens a store on a throwaway SQLite file
func setupTestStore(t *testing.T) (*GormStore, func()) {
	t.Helper()

	cfg := &config.DBConfig{
		Driver:   config.DriverSQLite,
		Path:     filepath.Join(t.TempDir(), "movies_test.db"),
		MaxConns: 1,
	}

	store, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	cleanup := func() {
		store.Close()
	}
	return store, cleanup
}

// genMovie builds a movie as the add workflow would insert it
func genMovie(title string) *model.Movie {
	return &model.Movie{
		Title:       title,
		Year:        2010,
		Description: "A thief who steals corporate secrets through dream-sharing technology.",
		ImgURL:      "https://image.tmdb.org/t/p/w500/poster.jpg",
	}
}

func mustCreate(t *testing.T, s *GormStore, title string) *model.Movie {
	t.Helper()
	m := genMovie(title)
	if err := s.CreateMovie(context.Background(), m); err != nil {
		t.Fatalf("CreateMovie(%q) error = %v", title, err)
	}
	return m
}

func TestCreateMovie_LeavesUserFieldsUnset(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	rating := 9.9
	review := "preset"
	rank := 1
	m := genMovie("Inception")
	m.Rating = &rating
	m.Review = &review
	m.Ranking = &rank

	if err := store.CreateMovie(context.Background(), m); err != nil {
		t.Fatalf("CreateMovie() error = %v", err)
	}
	if m.ID == 0 {
		t.Fatal("CreateMovie() did not assign an id")
	}

	got, err := store.GetMovie(context.Background(), m.ID)
	if err != nil {
		t.Fatalf("GetMovie() error = %v", err)
	}
	if got.Rating != nil || got.Review != nil || got.Ranking != nil {
		t.Errorf("new movie has rating=%v review=%v ranking=%v, want all nil", got.Rating, got.Review, got.Ranking)
	}
	if got.Title != "Inception" || got.Year != 2010 {
		t.Errorf("GetMovie() = %q (%d), want Inception (2010)", got.Title, got.Year)
	}
}

func TestGetMovie_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.GetMovie(context.Background(), 42)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetMovie() error = %v, want ErrNotFound", err)
	}
}

func TestUpdateReview_PersistsOnlyRatingAndReview(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	created := mustCreate(t, store, "Inception")

	updated, err := store.UpdateReview(ctx, created.ID, 7.5, "Great film")
	if err != nil {
		t.Fatalf("UpdateReview() error = %v", err)
	}

	if updated.Rating == nil || *updated.Rating != 7.5 {
		t.Errorf("Rating = %v, want 7.5", updated.Rating)
	}
	if updated.Review == nil || *updated.Review != "Great film" {
		t.Errorf("Review = %v, want %q", updated.Review, "Great film")
	}
	if updated.Title != created.Title || updated.Year != created.Year ||
		updated.Description != created.Description || updated.ImgURL != created.ImgURL {
		t.Errorf("catalog fields changed: got %+v, want %+v", updated, created)
	}
}

func TestUpdateReview_SameValuesTwice(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	created := mustCreate(t, store, "Inception")

	for i := 0; i < 2; i++ {
		updated, err := store.UpdateReview(ctx, created.ID, 7.5, "Great film")
		if err != nil {
			t.Fatalf("UpdateReview() call %d error = %v", i+1, err)
		}
		if updated.Rating == nil || *updated.Rating != 7.5 {
			t.Errorf("call %d Rating = %v, want 7.5", i+1, updated.Rating)
		}
	}
}

func TestUpdateReview_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.UpdateReview(context.Background(), 7, 5.0, "meh")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateReview() error = %v, want ErrNotFound", err)
	}
}

func TestDeleteMovie(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	only := mustCreate(t, store, "Inception")

	if err := store.DeleteMovie(ctx, only.ID); err != nil {
		t.Fatalf("DeleteMovie() error = %v", err)
	}
	if err := store.DeleteMovie(ctx, only.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteMovie() error = %v, want ErrNotFound", err)
	}

	movies, err := store.ListMovies(ctx)
	if err != nil {
		t.Fatalf("ListMovies() error = %v", err)
	}
	if len(movies) != 0 {
		t.Errorf("ListMovies() returned %d movies after deleting the last one, want 0", len(movies))
	}
}

func TestListMovies_OrderedByRanking(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	a := mustCreate(t, store, "A")
	b := mustCreate(t, store, "B")
	c := mustCreate(t, store, "C")

	err := store.ApplyRanking(ctx, []ranking.Assignment{
		{MovieID: c.ID, Ranking: 1},
		{MovieID: a.ID, Ranking: 2},
	})
	if err != nil {
		t.Fatalf("ApplyRanking() error = %v", err)
	}

	movies, err := store.ListMovies(ctx)
	if err != nil {
		t.Fatalf("ListMovies() error = %v", err)
	}

	wantIDs := []uint{c.ID, a.ID, b.ID}
	if len(movies) != len(wantIDs) {
		t.Fatalf("ListMovies() returned %d movies, want %d", len(movies), len(wantIDs))
	}
	for i, m := range movies {
		if m.ID != wantIDs[i] {
			t.Errorf("ListMovies()[%d].ID = %d, want %d", i, m.ID, wantIDs[i])
		}
	}
}

func TestCountMoviesAndPing(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	mustCreate(t, store, "A")
	mustCreate(t, store, "B")

	count, err := store.CountMovies(ctx)
	if err != nil {
		t.Fatalf("CountMovies() error = %v", err)
	}
	if count != 2 {
		t.Errorf("CountMovies() = %d, want 2", count)
	}
	if err := store.Ping(ctx); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

// For any set of rated movies, persisting a computed ranking and reading it
// back yields ranks 1..N with no duplicates.
func TestProperty_PersistedRankingIsPermutation(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	properties := gopter.NewProperties(parameters)

	properties.Property("stored ranks form 1..N", prop.ForAll(
		func(scores []int) bool {
			ctx := context.Background()
			store.db.Exec("DELETE FROM movies")

			for i, score := range scores {
				m := genMovie(fmt.Sprintf("Movie %d", i))
				if err := store.CreateMovie(ctx, m); err != nil {
					return false
				}
				if score >= 0 {
					if _, err := store.UpdateReview(ctx, m.ID, float64(score)/10, "ok"); err != nil {
						return false
					}
				}
			}

			movies, err := store.ListMovies(ctx)
			if err != nil {
				return false
			}
			if err := store.ApplyRanking(ctx, ranking.Compute(movies)); err != nil {
				return false
			}

			ranked, err := store.ListMovies(ctx)
			if err != nil || len(ranked) != len(scores) {
				return false
			}
			for i, m := range ranked {
				if m.Ranking == nil || *m.Ranking != i+1 {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(8, gen.IntRange(-1, 100)),
	))

	properties.TestingRun(t)
}
