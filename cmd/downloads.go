package cmd

import (
	"context"
	"fmt"

	"github.com/kasuboski/simulcast/pkg/reconcile"
	"github.com/spf13/cobra"
)

// downloadsCmd reconciles the download folder with the client session
var downloadsCmd = &cobra.Command{
	Use:   "downloads",
	Short: "list downloads and their progress",
	Args:  cobra.NoArgs,
	Run: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
		records, err := a.manager.Downloads(ctx)
		if err != nil {
			return err
		}

		rows := make([][]string, 0, len(records))
		for _, r := range records {
			rows = append(rows, []string{r.Filename, r.Series, r.Episode, string(r.State), progress(r), string(r.SeriesStatus)})
		}

		renderTable(cmd.OutOrStdout(),
			[]string{"File", "Series", "Episode", "State", "Progress", "Series Status"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignRight, alignLeft},
		)
		return nil
	}),
}

var deleteCmd = &cobra.Command{
	Use:   "delete <filename>",
	Short: "delete a downloaded file and its torrent",
	Long:  `delete a file from the download folder and remove its torrent and data from the client`,
	Args:  cobra.ExactArgs(1),
	Run: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
		rec, err := a.manager.DeleteDownload(ctx, args[0])
		if err != nil {
			return err
		}

		if rec.TorrentID != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s and torrent %s\n", rec.Filename, rec.TorrentID)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", rec.Filename)
		return nil
	}),
}

func progress(r reconcile.Record) string {
	p, err := r.Progress.Get()
	if err != nil {
		return "-"
	}
	return fmt.Sprintf("%d%%", p)
}

func init() {
	rootCmd.AddCommand(downloadsCmd)
	rootCmd.AddCommand(deleteCmd)
}
