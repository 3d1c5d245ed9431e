package web

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/user/top-movies/internal/form"
	"github.com/user/top-movies/internal/model"
)

// handleList recomputes the ranking and renders every movie
func (s *Server) handleList(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	movies, err := s.service.List(r.Context())
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, pageIndex, indexPage{Movies: movies})
}

// handleAddPage shows the search form, or with ?id= stores the chosen
// candidate and sends the user on to rate it
func (s *Server) handleAddPage(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if raw := r.URL.Query().Get("id"); raw != "" {
		s.handleSelect(w, r, raw)
		return
	}

	token, err := s.csrf.Token(w, r)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, pageAdd, addPage{CSRFToken: token})
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request, raw string) {
	externalID, err := form.ParseExternalID(raw)
	if err != nil {
		s.renderError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	sel, err := s.service.Select(r.Context(), externalID)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	target := fmt.Sprintf("/edit/%d?suggested=%s", sel.Movie.ID, form.FormatRating(sel.SuggestedRating))
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// handleAddSearch validates the title and lists matching catalog candidates
func (s *Server) handleAddSearch(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	if err := s.csrf.Verify(r); err != nil {
		s.renderError(w, r, err)
		return
	}

	input, errs := form.ValidateSearch(r.PostForm)
	if !errs.Valid() {
		token, err := s.csrf.Token(w, r)
		if err != nil {
			s.renderError(w, r, err)
			return
		}
		s.render(w, r, http.StatusUnprocessableEntity, pageAdd, addPage{
			CSRFToken: token,
			Title:     r.PostForm.Get(form.FieldTitle),
			Errors:    errs,
		})
		return
	}

	candidates, err := s.service.Search(r.Context(), input)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, pageSelect, selectPage{Query: input.Title, Candidates: candidates})
}

// handleEditPage renders the rating form pre-filled with stored values, or
// with the catalog's suggested rating for a movie that has none yet
func (s *Server) handleEditPage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	movie, ok := s.loadMovie(w, r, ps)
	if !ok {
		return
	}

	token, err := s.csrf.Token(w, r)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	page := newEditPage(movie, token)
	if !movie.IsRated() {
		page.Rating = suggestedRating(r.URL.Query().Get("suggested"))
	}
	s.render(w, r, http.StatusOK, pageEdit, page)
}

// handleEditSubmit stores a valid rating and review
func (s *Server) handleEditSubmit(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	movie, ok := s.loadMovie(w, r, ps)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	if err := s.csrf.Verify(r); err != nil {
		s.renderError(w, r, err)
		return
	}

	input, errs := form.ValidateEdit(r.PostForm)
	if !errs.Valid() {
		token, err := s.csrf.Token(w, r)
		if err != nil {
			s.renderError(w, r, err)
			return
		}
		page := newEditPage(movie, token)
		page.Rating = r.PostForm.Get(form.FieldRating)
		page.Review = r.PostForm.Get(form.FieldReview)
		page.Errors = errs
		s.render(w, r, http.StatusUnprocessableEntity, pageEdit, page)
		return
	}

	if _, err := s.service.Edit(r.Context(), movie.ID, input); err != nil {
		s.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleDelete removes a movie and returns to the list
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := form.ParseID(ps.ByName("id"))
	if err != nil {
		s.renderError(w, r, errPageNotFound)
		return
	}

	if err := s.service.Delete(r.Context(), id); err != nil {
		s.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// loadMovie resolves the :id path parameter, rendering 404 when it fails
func (s *Server) loadMovie(w http.ResponseWriter, r *http.Request, ps httprouter.Params) (*model.Movie, bool) {
	id, err := form.ParseID(ps.ByName("id"))
	if err != nil {
		s.renderError(w, r, errPageNotFound)
		return nil, false
	}

	movie, err := s.service.Get(r.Context(), id)
	if err != nil {
		s.renderError(w, r, err)
		return nil, false
	}
	return movie, true
}

func newEditPage(movie *model.Movie, token string) editPage {
	page := editPage{
		CSRFToken: token,
		ID:        movie.ID,
		Title:     movie.Title,
		Year:      movie.Year,
	}
	if movie.IsRated() {
		page.Rating = form.FormatRating(*movie.Rating)
	}
	if movie.Review != nil {
		page.Review = *movie.Review
	}
	return page
}

// suggestedRating accepts only a well-formed rating from the query string
func suggestedRating(raw string) string {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || v < 0 || v > 10 {
		return ""
	}
	return form.FormatRating(v)
}
