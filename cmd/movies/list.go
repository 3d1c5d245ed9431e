package main

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"github.com/user/top-movies/internal/form"
	"github.com/user/top-movies/internal/model"
	"github.com/user/top-movies/internal/movies"
	"github.com/user/top-movies/internal/store"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Re-rank stored movies and print them",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := store.Open(&ctx.cfg.DB)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			// The catalog is not needed to list
			service := movies.NewService(db, nil, ctx.cfg.Catalog.ImageBaseURL)
			ranked, err := service.List(cmd.Context())
			if err != nil {
				return err
			}

			if len(ranked) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No movies yet")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderMovieTable(ranked))
			return nil
		},
	}
}

// renderMovieTable formats ranked movies as a rounded table
func renderMovieTable(ranked []*model.Movie) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault
	tw.AppendHeader(table.Row{"Rank", "Title", "Year", "Rating", "Review"})

	for _, m := range ranked {
		rank, rating, review := "-", "-", ""
		if m.Ranking != nil {
			rank = strconv.Itoa(*m.Ranking)
		}
		if m.Rating != nil {
			rating = form.FormatRating(*m.Rating)
		}
		if m.Review != nil {
			review = *m.Review
		}
		tw.AppendRow(table.Row{rank, m.Title, m.Year, rating, review})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})

	return tw.Render()
}
