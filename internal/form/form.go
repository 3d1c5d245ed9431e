// Package form validates the submitted search and edit forms into typed input.
package form

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	FieldTitle  = "title"
	FieldRating = "rating"
	FieldReview = "review"

	MsgRequired    = "This field is required."
	MsgNotANumber  = "Enter a number, e.g. 7.5."
	MsgRatingRange = "Rating must be between 0 and 10."
	MsgTooLong     = "Must be at most %d characters."

	maxTitleLen  = 250
	maxReviewLen = 500
)

var (
	minRating = decimal.Zero
	maxRating = decimal.NewFromInt(10)
)

// FieldErrors maps a form field to its validation messages
type FieldErrors map[string][]string

// Add records a message for field
func (e FieldErrors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// First returns the first message for field, or ""
func (e FieldErrors) First(field string) string {
	if msgs := e[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Valid reports whether no field has errors
func (e FieldErrors) Valid() bool {
	return len(e) == 0
}

// SearchInput is a validated search form
type SearchInput struct {
	Title string
}

// EditInput is a validated edit form. Rating is rounded to one decimal.
type EditInput struct {
	Rating float64
	Review string
}

// ValidateSearch checks the add-movie search form
func ValidateSearch(values url.Values) (SearchInput, FieldErrors) {
	errs := FieldErrors{}
	title := strings.TrimSpace(values.Get(FieldTitle))

	switch {
	case title == "":
		errs.Add(FieldTitle, MsgRequired)
	case utf8.RuneCountInString(title) > maxTitleLen:
		errs.Add(FieldTitle, fmt.Sprintf(MsgTooLong, maxTitleLen))
	}

	if !errs.Valid() {
		return SearchInput{}, errs
	}
	return SearchInput{Title: title}, nil
}

// ValidateEdit checks the rating/review form
func ValidateEdit(values url.Values) (EditInput, FieldErrors) {
	errs := FieldErrors{}

	rawRating := strings.TrimSpace(values.Get(FieldRating))
	var rating decimal.Decimal
	if rawRating == "" {
		errs.Add(FieldRating, MsgRequired)
	} else {
		parsed, err := decimal.NewFromString(rawRating)
		switch {
		case err != nil:
			errs.Add(FieldRating, MsgNotANumber)
		case parsed.LessThan(minRating) || parsed.GreaterThan(maxRating):
			errs.Add(FieldRating, MsgRatingRange)
		default:
			rating = parsed.Round(1)
		}
	}

	review := strings.TrimSpace(values.Get(FieldReview))
	switch {
	case review == "":
		errs.Add(FieldReview, MsgRequired)
	case utf8.RuneCountInString(review) > maxReviewLen:
		errs.Add(FieldReview, fmt.Sprintf(MsgTooLong, maxReviewLen))
	}

	if !errs.Valid() {
		return EditInput{}, errs
	}
	value, _ := rating.Float64()
	return EditInput{Rating: value, Review: review}, nil
}

// ParseID parses a positive movie id from a path segment
func ParseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid movie id %q", raw)
	}
	return uint(id), nil
}

// ParseExternalID parses a positive catalog id from a query parameter
func ParseExternalID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid catalog id %q", raw)
	}
	return id, nil
}

// FormatRating renders a rating with one decimal, e.g. 7.5
func FormatRating(rating float64) string {
	return decimal.NewFromFloat(rating).StringFixed(1)
}
