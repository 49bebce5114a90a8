package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/gpt2gen/internal/logger"
)

func main() {
	app := &cli.Command{
		Name:  "gpt2gen",
		Usage: "Greedy GPT-2 text generation",
		Flags: loggingFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			generateCmd(),
			tokenizeCmd(),
			serveCmd(),
			initWeightsCmd(),
			versionCmd(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setupLogging builds the configured logger and attaches it to ctx. It runs
// inside each action so that logging flags given after the subcommand apply.
func setupLogging(ctx context.Context, cmd *cli.Command, cfg Config) (context.Context, logger.Logger) {
	applyLoggingConfig(cmd, cfg)
	level := logger.ParseLevel(logLevel)
	if debug {
		level = logger.ParseLevel("debug")
	}
	log := logger.ForFormat(os.Stderr, logFormat, level)
	return logger.WithContext(ctx, log), log
}
