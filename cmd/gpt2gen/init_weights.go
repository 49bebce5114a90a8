package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/gpt2gen/internal/inference"
	"github.com/samcharles93/gpt2gen/internal/toy"
)

func initWeightsCmd() *cli.Command {
	var out string

	return &cli.Command{
		Name:  "init-weights",
		Usage: "Write seeded toy model weights to a .safetensors file",
		Flags: append(modelFlags(),
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "output path",
				Required:    true,
				Destination: &out,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := LoadConfig()
			_, log := setupLogging(ctx, cmd, cfg)
			applyModelConfig(cmd, cfg)

			size := vocabSize
			if size <= 0 {
				size = inference.DefaultVocabSize
			}
			if out == "" {
				return errors.New("--out is required")
			}
			m, err := toy.NewToyLM(size, toyHidden, max(sequenceLength, 1), toySeed)
			if err != nil {
				return err
			}
			if err := m.SaveFile(out); err != nil {
				return fmt.Errorf("write weights: %w", err)
			}
			log.Info("weights written", "path", out, "vocab", size, "hidden", toyHidden, "seed", toySeed)
			return nil
		},
	}
}
