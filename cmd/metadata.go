package cmd

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var metadataRefresh bool

// metadataCmd looks up series metadata, fetching it from the catalog on a miss
var metadataCmd = &cobra.Command{
	Use:   "metadata <title>",
	Short: "show series metadata",
	Args:  cobra.ExactArgs(1),
	Run: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
		if metadataRefresh {
			if err := a.metadata.Invalidate(ctx, args[0]); err != nil {
				return err
			}
		}

		e := a.manager.Metadata(ctx, args[0])
		w := cmd.OutOrStdout()
		if e.Unavailable() {
			fmt.Fprintf(w, "no metadata for %q\n", e.Key)
			return nil
		}

		fetched := "unknown"
		if !e.FetchedAt.IsZero() {
			fetched = humanize.Time(e.FetchedAt)
		}

		renderTable(w, []string{"Field", "Value"}, [][]string{
			{"Series", e.Key},
			{"Status", string(e.Status)},
			{"Image", e.ImagePath},
			{"Fetched", fetched},
		}, nil)
		if e.Description != "" {
			fmt.Fprintf(w, "\n%s\n", e.Description)
		}
		return nil
	}),
}

func init() {
	metadataCmd.Flags().BoolVar(&metadataRefresh, "refresh", false, "drop the cached entry and fetch again")
	rootCmd.AddCommand(metadataCmd)
}
