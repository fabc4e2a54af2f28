package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/kasuboski/simulcast/pkg/schedule"
	"github.com/spf13/cobra"
)

// scheduleCmd prints the weekly schedule with the next airing marked
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "show the weekly airing schedule",
	Long:  `show the weekly airing schedule in UTC, marking the next episode to air today`,
	Args:  cobra.NoArgs,
	Run: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
		s, err := a.manager.Schedule(ctx)
		if err != nil {
			return err
		}

		now := time.Now()
		w := cmd.OutOrStdout()
		if err := schedule.Render(w, s, now); err != nil {
			return err
		}

		if next, ok := schedule.NextAiring(s, now); ok {
			fmt.Fprintf(w, "\nnext: %s %s\n", next.Slot.Title, humanize.Time(next.At))
		} else {
			fmt.Fprintln(w, "\nnothing else airs today")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}
