package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/user/top-movies/internal/config"
	"github.com/user/top-movies/internal/model"
	"github.com/user/top-movies/internal/store"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.LogConfig
		wantLevel zerolog.Level
		wantErr   bool
	}{
		{name: "json info", cfg: config.LogConfig{Level: "info", Format: config.LogFormatJSON}, wantLevel: zerolog.InfoLevel},
		{name: "console debug", cfg: config.LogConfig{Level: "DEBUG", Format: config.LogFormatConsole}, wantLevel: zerolog.DebugLevel},
		{name: "bad level", cfg: config.LogConfig{Level: "loud", Format: config.LogFormatJSON}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := newLogger(tt.cfg, &buf)
			if (err != nil) != tt.wantErr {
				t.Fatalf("newLogger() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if logger.GetLevel() != tt.wantLevel {
				t.Errorf("level = %v, want %v", logger.GetLevel(), tt.wantLevel)
			}
		})
	}
}

func TestNewLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(config.LogConfig{Level: "info", Format: config.LogFormatJSON}, &buf)
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}

	logger.Info().Str("title", "Inception").Msg("Movie added")
	if !strings.Contains(buf.String(), `"title":"Inception"`) {
		t.Errorf("output = %q, want JSON field", buf.String())
	}
}

func TestRenderMovieTable(t *testing.T) {
	rating := 8.0
	review := "Mind bending"
	rank := 1
	out := renderMovieTable([]*model.Movie{
		{ID: 1, Title: "Inception", Year: 2010, Rating: &rating, Review: &review, Ranking: &rank},
		{ID: 2, Title: "Unrated", Year: 1999},
	})

	if strings.Contains(out, "RANK") {
		t.Errorf("headers are upper-cased:\n%s", out)
	}
	for _, want := range []string{"Rank", "Title", "Year", "Rating", "Review", "Inception", "2010", "8.0", "Mind bending", "Unrated"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestListCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cli.db")
	t.Setenv("DB_DRIVER", config.DriverSQLite)
	t.Setenv("DB_PATH", dbPath)
	t.Setenv("LOG_LEVEL", "error")

	st, err := store.Open(&config.DBConfig{Driver: config.DriverSQLite, Path: dbPath, MaxConns: 1})
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	ctx := context.Background()
	low := &model.Movie{Title: "Low", Year: 2001, Description: "d", ImgURL: "u"}
	high := &model.Movie{Title: "High", Year: 2002, Description: "d", ImgURL: "u"}
	for _, m := range []*model.Movie{low, high} {
		if err := st.CreateMovie(ctx, m); err != nil {
			t.Fatalf("CreateMovie() error = %v", err)
		}
	}
	if _, err := st.UpdateReview(ctx, low.ID, 3, "meh"); err != nil {
		t.Fatalf("UpdateReview() error = %v", err)
	}
	if _, err := st.UpdateReview(ctx, high.ID, 9, "great"); err != nil {
		t.Fatalf("UpdateReview() error = %v", err)
	}
	st.Close()

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"list"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("list error = %v", err)
	}

	text := out.String()
	hi, lo := strings.Index(text, "High"), strings.Index(text, "Low")
	if hi < 0 || lo < 0 || hi > lo {
		t.Errorf("want High ranked above Low:\n%s", text)
	}
}

func TestListCommand_Empty(t *testing.T) {
	t.Setenv("DB_DRIVER", config.DriverSQLite)
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "empty.db"))
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"list"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("list error = %v", err)
	}
	if !strings.Contains(out.String(), "No movies yet") {
		t.Errorf("output = %q", out.String())
	}
}
