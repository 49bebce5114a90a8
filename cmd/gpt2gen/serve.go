package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/gpt2gen/internal/api"
	"github.com/samcharles93/gpt2gen/internal/inference"
)

func serveCmd() *cli.Command {
	var (
		addr        string
		readTimeout time.Duration
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the generation REST API",
		Flags: append(append(resourceFlags(), modelFlags()...),
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := LoadConfig()
			ctx, log := setupLogging(ctx, cmd, cfg)
			applyServeConfig(cmd, cfg, &addr)

			loader, err := newLoader(ctx)
			if err != nil {
				return err
			}
			loaded, err := loader.Load(ctx)
			if err != nil {
				return fmt.Errorf("load: %w", err)
			}
			defer func() { _ = loaded.Engine.Close() }()

			server, err := api.NewServer(api.ServerConfig{
				Engine:    loaded.Engine,
				Tokenizer: loaded.Tokenizer,
				Defaults:  inference.GenDefaults{Tokens: cfg.Tokens},
				Logger:    log,
			})
			if err != nil {
				return err
			}
			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)
			log.Info("starting server", "address", addr)
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}
