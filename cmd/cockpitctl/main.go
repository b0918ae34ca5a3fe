package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type cli struct {
	LogLevel string `name:"log-level" default:"warn" enum:"debug,info,warn,error" help:"Log level for diagnostics written to stderr."`

	Compose  composeCmd  `cmd:"" help:"Print the resolved cockpit layout for a preferences document and a card-settings manifest."`
	Span     spanCmd     `cmd:"" help:"Print the numeric spans and grid classes of one widget."`
	Validate validateCmd `cmd:"" help:"Validate a card-settings manifest."`
	Seed     seedCmd     `cmd:"" help:"Seed a practice's card settings from a manifest into a SQLite database."`
	Widgets  widgetsCmd  `cmd:"" help:"List the widget catalog."`
}

func main() {
	var root cli
	ctx := kong.Parse(&root,
		kong.Name("cockpitctl"),
		kong.Description("Inspect and seed cockpit layouts."),
		kong.UsageOnError(),
		kong.BindTo(context.Background(), (*context.Context)(nil)),
		kong.BindTo(io.Writer(os.Stdout), (*io.Writer)(nil)),
	)
	logger, err := newLogger(root.LogLevel)
	ctx.FatalIfErrorf(err)
	defer func() { _ = logger.Sync() }()

	err = ctx.Run(logger)
	ctx.FatalIfErrorf(err)
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("cockpitctl: parse log level: %w", err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("cockpitctl: build logger: %w", err)
	}
	return logger.Named("cockpitctl"), nil
}
