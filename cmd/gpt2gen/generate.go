package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/gpt2gen/internal/inference"
)

func generateCmd() *cli.Command {
	var (
		prompt string
		tokens int
		stream bool
	)

	return &cli.Command{
		Name:      "generate",
		Aliases:   []string{"gen"},
		Usage:     "Extend a prompt with greedily chosen tokens",
		ArgsUsage: "[prompt...]",
		Flags: append(append(resourceFlags(), modelFlags()...),
			&cli.StringFlag{
				Name:        "prompt",
				Aliases:     []string{"p"},
				Usage:       "input text",
				Destination: &prompt,
			},
			&cli.IntFlag{
				Name:        "tokens",
				Aliases:     []string{"n"},
				Usage:       "number of tokens to generate",
				Value:       inference.DefaultTokens,
				Destination: &tokens,
			},
			&cli.BoolFlag{
				Name:        "stream",
				Usage:       "print tokens as they are generated",
				Destination: &stream,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := LoadConfig()
			ctx, log := setupLogging(ctx, cmd, cfg)
			applyGenerateConfig(cmd, cfg, &tokens)

			text, err := promptFromArgs(prompt, cmd.IsSet("prompt"), cmd.Args().Slice())
			if err != nil {
				return err
			}
			loader, err := newLoader(ctx)
			if err != nil {
				return err
			}
			loaded, err := loader.Load(ctx)
			if err != nil {
				return fmt.Errorf("load: %w", err)
			}
			defer func() { _ = loaded.Engine.Close() }()

			req := inference.ResolveRequest(inference.RequestOptions{
				Prompt: &text,
				Tokens: &tokens,
			}, inference.GenDefaults{})

			var (
				sw *StreamWriter
				fn inference.StreamFunc
			)
			if stream {
				sw = NewStreamWriter(os.Stdout, req.Prompt)
				fn = func(s inference.Step) { sw.Write(s.Fragment) }
			}
			res, err := loaded.Engine.Generate(ctx, &req, fn)
			if sw != nil {
				_ = sw.Close()
			}
			if err != nil {
				return err
			}
			if sw == nil {
				fmt.Println(res.Text)
			}
			log.Info("generation complete",
				"prompt_tokens", res.Stats.PromptTokens,
				"generated", res.Stats.TokensGenerated,
				"duration", res.Stats.Duration,
				"tps", fmt.Sprintf("%.2f", res.Stats.TPS),
			)
			return nil
		},
	}
}
