package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/kasuboski/simulcast/pkg/logger"
	"github.com/kasuboski/simulcast/pkg/manager"
	"github.com/kasuboski/simulcast/server"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "run the poll cycles and the http api",
	Long: `run the poll cycles and the http api

The feed, the airing schedule, the downloads view and the client connection are refreshed
on their configured intervals. Changes in the download folder trigger an early downloads refresh.`,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.Get()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx = logger.WithCtx(ctx, log)

		a, err := newApp(ctx)
		if err != nil {
			log.Fatalw("failed to start", zap.Error(err))
		}

		scheduler := manager.NewScheduler(a.manager.Jobs(a.config.Manager.Jobs))
		srv := server.New(log, a.manager, scheduler)

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return scheduler.Run(ctx)
		})
		g.Go(func() error {
			return srv.Serve(ctx, a.config.Server.Port)
		})
		g.Go(func() error {
			lib := a.manager.Library()
			err := lib.Watch(ctx, a.config.Manager.Jobs.WatchDebounce, func() {
				go scheduler.Trigger(ctx, manager.DownloadsRefresh)
			})
			if err != nil {
				// polling still covers the folder
				log.Warnw("not watching download folder", zap.String("dir", lib.Dir()), zap.Error(err))
			}
			return nil
		})

		if err := g.Wait(); err != nil {
			log.Errorw("stopped", zap.Error(err))
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
