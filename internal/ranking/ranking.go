// Package ranking derives the dense rank ordering shown on the movie list.
package ranking

import (
	"sort"

	"github.com/user/top-movies/internal/model"
)

// Assignment is the rank computed for a single movie
type Assignment struct {
	MovieID uint
	Ranking int
}

// Compute returns one Assignment per movie, ranked 1..N by descending rating.
//
// Unrated movies sort after every rated one. Equal ratings keep the order
// the movies were previously ranked in (unranked last), falling back to id,
// so recomputing over an unchanged set is a fixed point.
func Compute(movies []*model.Movie) []Assignment {
	ordered := make([]*model.Movie, 0, len(movies))
	for _, m := range movies {
		if m != nil {
			ordered = append(ordered, m)
		}
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		return less(ordered[i], ordered[j])
	})

	assignments := make([]Assignment, len(ordered))
	for i, m := range ordered {
		assignments[i] = Assignment{MovieID: m.ID, Ranking: i + 1}
	}
	return assignments
}

// Apply sets each movie's Ranking from assignments and returns the movies
// sorted by their new rank. Movies without an assignment are left untouched
// and placed last.
func Apply(movies []*model.Movie, assignments []Assignment) []*model.Movie {
	ranks := make(map[uint]int, len(assignments))
	for _, a := range assignments {
		ranks[a.MovieID] = a.Ranking
	}

	out := make([]*model.Movie, 0, len(movies))
	for _, m := range movies {
		if m == nil {
			continue
		}
		if r, ok := ranks[m.ID]; ok {
			r := r
			m.Ranking = &r
		}
		out = append(out, m)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return compareRanking(out[i].Ranking, out[j].Ranking) < 0
	})
	return out
}

func less(a, b *model.Movie) bool {
	switch {
	case a.Rating != nil && b.Rating == nil:
		return true
	case a.Rating == nil && b.Rating != nil:
		return false
	case a.Rating != nil && b.Rating != nil && *a.Rating != *b.Rating:
		return *a.Rating > *b.Rating
	}

	if c := compareRanking(a.Ranking, b.Ranking); c != 0 {
		return c < 0
	}
	return a.ID < b.ID
}

// compareRanking orders ranks ascending with nil last
func compareRanking(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	default:
		return 0
	}
}
