package logger

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime/debug"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxKey struct{}

var once sync.Once

var logger *zap.SugaredLogger

// Get initializes a zap.SugaredLogger instance if it has not been initialized
// already and returns the same instance for subsequent calls.
//
// LOG_LEVEL selects the level and JSON_LOG switches to the production json encoder.
func Get() *zap.SugaredLogger {
	once.Do(func() {
		level := zap.InfoLevel
		if levelEnv := os.Getenv("LOG_LEVEL"); levelEnv != "" {
			parsed, err := zapcore.ParseLevel(levelEnv)
			if err != nil {
				log.Println(fmt.Errorf("invalid level, defaulting to INFO: %w", err))
			} else {
				level = parsed
			}
		}

		core := zapcore.NewCore(encoder(os.Getenv("JSON_LOG") != ""), zapcore.AddSync(os.Stdout), zap.NewAtomicLevelAt(level))
		core = core.With(buildFields())

		logger = zap.New(core).Sugar().Named("simulcast")
	})

	return logger
}

func encoder(json bool) zapcore.Encoder {
	if json {
		cfg := zap.NewProductionEncoderConfig()
		cfg.TimeKey = "timestamp"
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		return zapcore.NewJSONEncoder(cfg)
	}

	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(cfg)
}

func buildFields() []zapcore.Field {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return nil
	}

	fields := []zapcore.Field{zap.String("go_version", buildInfo.GoVersion)}
	for _, v := range buildInfo.Settings {
		if v.Key == "vcs.revision" && len(v.Value) >= 7 {
			fields = append(fields, zap.String("git_revision", v.Value[0:7]))
			break
		}
	}

	return fields
}

// FromCtx returns the Logger associated with the ctx. If no logger
// is associated, the default logger is returned.
func FromCtx(ctx context.Context, with ...any) *zap.SugaredLogger {
	l, ok := ctx.Value(ctxKey{}).(*zap.SugaredLogger)
	if !ok {
		l = Get()
	}

	if len(with) == 0 {
		return l
	}

	return l.With(with...)
}

// WithCtx returns a copy of ctx with the Logger attached.
func WithCtx(ctx context.Context, l *zap.SugaredLogger) context.Context {
	if lp, ok := ctx.Value(ctxKey{}).(*zap.SugaredLogger); ok && lp == l {
		return ctx
	}

	return context.WithValue(ctx, ctxKey{}, l)
}
