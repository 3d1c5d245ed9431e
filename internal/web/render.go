package web

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/user/top-movies/internal/catalog"
	"github.com/user/top-movies/internal/form"
	"github.com/user/top-movies/internal/model"
	"github.com/user/top-movies/internal/store"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	pageIndex  = "index.html"
	pageAdd    = "add.html"
	pageSelect = "select.html"
	pageEdit   = "edit.html"
	pageError  = "error.html"
)

var (
	errPageNotFound = errors.New("page not found")
	errBadRequest   = errors.New("bad request")
)

// pages holds one parsed template set per page, each including the layout
type pages struct {
	templates map[string]*template.Template
}

func loadPages(imageBase string) (*pages, error) {
	funcs := template.FuncMap{
		"rating": func(r *float64) string {
			if r == nil {
				return "–"
			}
			return form.FormatRating(*r)
		},
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"rank": func(r *int) string {
			if r == nil {
				return "–"
			}
			return fmt.Sprintf("%d", *r)
		},
		"year": func(releaseDate string) string {
			y, err := catalog.ParseYear(releaseDate)
			if err != nil {
				return "unknown year"
			}
			return fmt.Sprintf("%d", y)
		},
		"poster": func(path string) string {
			if path == "" {
				return ""
			}
			return imageBase + path
		},
		"csrfField": func() string { return csrfFieldName },
	}

	p := &pages{templates: make(map[string]*template.Template)}
	for _, name := range []string{pageIndex, pageAdd, pageSelect, pageEdit, pageError} {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		p.templates[name] = t
	}
	return p, nil
}

type indexPage struct {
	Movies []*model.Movie
}

type addPage struct {
	CSRFToken string
	Title     string
	Errors    form.FieldErrors
}

type selectPage struct {
	Query      string
	Candidates []catalog.Candidate
}

type editPage struct {
	CSRFToken string
	ID        uint
	Title     string
	Year      int
	Rating    string
	Review    string
	Errors    form.FieldErrors
}

type errorPage struct {
	Code    int
	Title   string
	Message string
}

// render writes a page, buffering it so template errors become a clean 500
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data interface{}) {
	t, ok := s.pages.templates[name]
	if !ok {
		s.renderError(w, r, fmt.Errorf("unknown page %q", name))
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("page", name).Msg("Failed to render page")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// renderError maps an error to a status code and renders the error page
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	page := errorPage{
		Code:    http.StatusInternalServerError,
		Title:   "Server Error",
		Message: "Something went wrong. Please try again later.",
	}

	var upstream *catalog.UpstreamError
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, errPageNotFound):
		page = errorPage{Code: http.StatusNotFound, Title: "Not Found", Message: "That movie or page does not exist."}
	case errors.As(err, &upstream):
		page = errorPage{Code: http.StatusBadGateway, Title: "Catalog Unavailable", Message: "The movie catalog could not be reached or returned an unusable response."}
	case errors.Is(err, errInvalidCSRF):
		page = errorPage{Code: http.StatusBadRequest, Title: "Bad Request", Message: "The form expired or was tampered with. Please reload and try again."}
	case errors.Is(err, errBadRequest):
		page = errorPage{Code: http.StatusBadRequest, Title: "Bad Request", Message: err.Error()}
	}

	logger := zerolog.Ctx(r.Context())
	if page.Code >= http.StatusInternalServerError {
		event := logger.Error().Err(err).Str("path", r.URL.Path)
		if upstream != nil {
			event = event.Str("operation", upstream.Operation).Int("upstreamStatus", upstream.StatusCode)
		}
		event.Msg("Request failed")
	} else {
		logger.Warn().Err(err).Str("path", r.URL.Path).Int("status", page.Code).Msg("Request rejected")
	}

	s.render(w, r, page.Code, pageError, page)
}
