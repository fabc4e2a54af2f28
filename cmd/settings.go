package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/kasuboski/simulcast/pkg/settings"
	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "show or change persisted settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "show settings with the password hidden",
	Args:  cobra.NoArgs,
	Run: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
		s := a.manager.Settings().Redacted()

		renderTable(cmd.OutOrStdout(), []string{"Key", "Value"}, [][]string{
			{"downloadFolder", s.DownloadFolder},
			{"feedUrl", s.FeedURL},
			{"clientHost", s.ClientHost},
			{"clientUser", s.ClientUser},
			{"clientPassword", s.ClientPassword},
		}, nil)
		fmt.Fprintf(cmd.OutOrStdout(), "stored in %s\n", a.settings.Path())
		return nil
	}),
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "change one setting",
	Long:  "change one setting. Keys: " + strings.Join(settings.Keys, ", "),
	Args:  cobra.ExactArgs(2),
	Run: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
		next := a.manager.Settings()
		if err := next.Set(args[0], args[1]); err != nil {
			return err
		}

		if err := a.manager.UpdateSettings(ctx, next); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s updated\n", args[0])
		return nil
	}),
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}
