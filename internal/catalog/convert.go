package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/user/top-movies/internal/model"
)

// ToMovie derives a new, unrated movie from a catalog record.
// The poster path is appended to imageBase and the year is the part of the
// release date before the first "-".
func ToMovie(d *Details, imageBase string) (*model.Movie, error) {
	if d == nil {
		return nil, malformed("empty record")
	}
	if strings.TrimSpace(d.Title) == "" {
		return nil, malformed("missing title")
	}
	if d.PosterPath == "" {
		return nil, malformed("missing poster_path")
	}

	year, err := ParseYear(d.ReleaseDate)
	if err != nil {
		return nil, &UpstreamError{Operation: OpDetails, Err: fmt.Errorf("%w: %v", ErrMalformedPayload, err)}
	}

	return &model.Movie{
		Title:       d.Title,
		Year:        year,
		Description: d.Overview,
		ImgURL:      imageBase + d.PosterPath,
	}, nil
}

// ParseYear extracts the 4-digit year from a release date like 2010-07-15
func ParseYear(releaseDate string) (int, error) {
	prefix, _, _ := strings.Cut(strings.TrimSpace(releaseDate), "-")
	if len(prefix) != 4 {
		return 0, fmt.Errorf("release_date %q has no 4-digit year", releaseDate)
	}
	for i := 0; i < len(prefix); i++ {
		if prefix[i] < '0' || prefix[i] > '9' {
			return 0, fmt.Errorf("release_date %q has no 4-digit year", releaseDate)
		}
	}
	year, err := strconv.Atoi(prefix)
	if err != nil || year == 0 {
		return 0, fmt.Errorf("release_date %q has no valid year", releaseDate)
	}
	return year, nil
}

// SuggestedRating rounds the catalog vote average to one decimal place
func SuggestedRating(voteAverage float64) float64 {
	rounded, _ := decimal.NewFromFloat(voteAverage).Round(1).Float64()
	return rounded
}

func malformed(reason string) error {
	return &UpstreamError{Operation: OpDetails, Err: fmt.Errorf("%w: %s", ErrMalformedPayload, reason)}
}
