package main

import (
	"context"
	"fmt"

	"example/chess-history/app"
	"example/chess-history/app/models"

	"github.com/spf13/cobra"
)

var (
	ingestYear    int
	ingestMonth   int
	ingestURL     string
	ingestSummary bool
	ingestSave    bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <identity>",
	Short: "Fetch and normalize games for one identity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sel := models.Selection{Year: ingestYear, Month: ingestMonth, URL: ingestURL}
		if sel.Kind() == models.SelectInvalid {
			return fmt.Errorf("%w: pass --url, --year, or --year with --month", app.ErrInvalidSelection)
		}

		return withDeps(cmd, func(ctx context.Context, deps *app.Deps) error {
			if sel.Kind() == models.SelectLocator {
				if _, err := deps.Client.ResolveLocator(args[0], sel.URL); err != nil {
					return err
				}
			}
			tbl := deps.Pipeline.Ingest(ctx, args[0], sel)
			if ingestSave {
				if deps.Store == nil {
					return fmt.Errorf("--save needs POSTGRES_URL")
				}
				if err := deps.Store.Append(ctx, tbl); err != nil {
					return err
				}
			}
			if ingestSummary {
				return printJSON(tbl.Summarize())
			}
			if tbl.Empty() {
				fmt.Printf("no games for %s in %s\n", args[0], sel)
				return nil
			}
			return printJSON(map[string]any{
				"columns":  tbl.Columns(),
				"rows":     tbl.Rows(),
				"excluded": tbl.Excluded,
			})
		})
	},
}

var yearsCmd = &cobra.Command{
	Use:   "years <identity>",
	Short: "List years with archives, first archive year through now",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDeps(cmd, func(ctx context.Context, deps *app.Deps) error {
			return printJSON(deps.Client.ListYears(ctx, args[0]))
		})
	},
}

func init() {
	ingestCmd.Flags().IntVar(&ingestYear, "year", 0, "archive year")
	ingestCmd.Flags().IntVar(&ingestMonth, "month", 0, "archive month (1-12); omit to merge the whole year")
	ingestCmd.Flags().StringVar(&ingestURL, "url", "", "explicit archive URL")
	ingestCmd.Flags().BoolVar(&ingestSummary, "summary", false, "print opponent rating summary instead of rows")
	ingestCmd.Flags().BoolVar(&ingestSave, "save", false, "append the table to Postgres")
}
