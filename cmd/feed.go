package cmd

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var feedTrackedOnly bool

// feedCmd lists the releases currently in the feed
var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "list releases in the feed",
	Long:  `list releases in the feed, marking episodes of tracked series`,
	Args:  cobra.NoArgs,
	Run: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
		releases, err := a.manager.PollFeed(ctx)
		if err != nil {
			return err
		}

		rows := make([][]string, 0, len(releases))
		for _, r := range releases {
			if feedTrackedOnly && !r.Tracked {
				continue
			}

			mark := ""
			if r.Tracked {
				mark = "*"
			}
			published := ""
			if !r.Published.IsZero() {
				published = humanize.Time(r.Published)
			}
			rows = append(rows, []string{mark, r.Title.Series, r.Title.Episode, r.Resolution, published})
		}

		renderTable(cmd.OutOrStdout(),
			[]string{"", "Series", "Episode", "Resolution", "Published"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
		)
		return nil
	}),
}

// acquireCmd submits a release to the download client and tracks its series
var acquireCmd = &cobra.Command{
	Use:   "acquire <title>",
	Short: "download a release from the feed",
	Long: `download a release from the feed and track its series

The title is matched against the raw release titles of a fresh poll, falling back to the
same series and episode.`,
	Args: cobra.ExactArgs(1),
	Run: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
		if err := a.manager.Acquire(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "submitted %s\n", args[0])
		return nil
	}),
}

func init() {
	feedCmd.Flags().BoolVar(&feedTrackedOnly, "tracked", false, "only list releases of tracked series")
	rootCmd.AddCommand(feedCmd)
	rootCmd.AddCommand(acquireCmd)
}
