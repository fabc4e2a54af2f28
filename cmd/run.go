package cmd

import (
	"context"

	"github.com/kasuboski/simulcast/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type runFunc func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error

// withApp wires the app from configuration before calling fn
func withApp(fn runFunc) func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		log := logger.Get()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		ctx = logger.WithCtx(ctx, log)

		a, err := newApp(ctx)
		if err != nil {
			log.Fatalw("failed to start", zap.Error(err))
		}

		if err := fn(ctx, cmd, a, args); err != nil {
			log.Fatalw("command failed", zap.String("command", cmd.Name()), zap.Error(err))
		}
	}
}
