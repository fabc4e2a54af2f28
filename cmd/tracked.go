package cmd

import (
	"context"
	"fmt"

	"github.com/kasuboski/simulcast/pkg/metadata"
	"github.com/spf13/cobra"
)

var trackedFetch bool

var trackCmd = &cobra.Command{
	Use:   "track <name>",
	Short: "track a series",
	Long:  `track a series by name or by any release title of it`,
	Args:  cobra.ExactArgs(1),
	Run: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
		added, err := a.manager.Track(ctx, args[0])
		if err != nil {
			return err
		}
		if !added {
			fmt.Fprintln(cmd.OutOrStdout(), "already tracked")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), "tracked")
		return nil
	}),
}

var untrackCmd = &cobra.Command{
	Use:   "untrack <name>",
	Short: "stop tracking a series",
	Args:  cobra.ExactArgs(1),
	Run: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
		removed, err := a.manager.Untrack(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %d entries\n", removed)
		return nil
	}),
}

// trackedCmd lists tracked series with whatever metadata is cached
var trackedCmd = &cobra.Command{
	Use:   "tracked",
	Short: "list tracked series",
	Args:  cobra.NoArgs,
	Run: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
		series := a.manager.Tracked(ctx)

		rows := make([][]string, 0, len(series))
		for _, s := range series {
			entry := s.Metadata
			if !s.Cached {
				entry = metadata.Sentinel(s.Series)
				if trackedFetch {
					entry = a.manager.Metadata(ctx, s.Series)
				}
			}
			rows = append(rows, []string{s.Series, string(entry.Status), entry.ImagePath})
		}

		renderTable(cmd.OutOrStdout(), []string{"Series", "Status", "Image"}, rows, nil)
		return nil
	}),
}

func init() {
	trackedCmd.Flags().BoolVar(&trackedFetch, "fetch", false, "fetch metadata missing from the cache")
	rootCmd.AddCommand(trackCmd)
	rootCmd.AddCommand(untrackCmd)
	rootCmd.AddCommand(trackedCmd)
}
