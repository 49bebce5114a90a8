package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/gpt2gen/internal/inference"
)

func tokenizeCmd() *cli.Command {
	var (
		text       string
		decode     bool
		showTokens bool
	)

	return &cli.Command{
		Name:      "tokenize",
		Usage:     "Encode text to token ids, or decode ids with --decode",
		ArgsUsage: "[text... | ids...]",
		Flags: append(resourceFlags(),
			&cli.StringFlag{
				Name:        "text",
				Aliases:     []string{"t"},
				Usage:       "text to encode",
				Destination: &text,
			},
			&cli.BoolFlag{
				Name:        "decode",
				Aliases:     []string{"d"},
				Usage:       "treat the input as space separated ids and decode it",
				Destination: &decode,
			},
			&cli.BoolFlag{
				Name:        "show-tokens",
				Usage:       "print the byte-level token next to each id",
				Destination: &showTokens,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := LoadConfig()
			ctx, _ = setupLogging(ctx, cmd, cfg)
			applyModelConfig(cmd, cfg)

			input, err := promptFromArgs(text, cmd.IsSet("text"), cmd.Args().Slice())
			if err != nil {
				return err
			}
			loader, err := newLoader(ctx)
			if err != nil {
				return err
			}
			tok, err := loader.LoadTokenizer(ctx)
			if err != nil {
				return fmt.Errorf("load: %w", err)
			}

			if decode {
				ids, err := parseIDs(input)
				if err != nil {
					return err
				}
				out, err := tok.Decode(ids)
				if err != nil {
					return err
				}
				fmt.Println(out)
				return nil
			}

			ids, err := tok.Encode(input)
			if err != nil {
				return err
			}
			if showTokens {
				for _, id := range ids {
					fmt.Printf("%d\t%q\n", id, tok.TokenString(id))
				}
				return nil
			}
			fmt.Println(formatIDs(ids))
			return nil
		},
	}
}

func parseIDs(s string) ([]int, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t' || r == '\n'
	})
	ids := make([]int, 0, len(fields))
	for _, f := range fields {
		id, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid token id %q: %w", f, inference.ErrInvalidArgument)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func formatIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, " ")
}
