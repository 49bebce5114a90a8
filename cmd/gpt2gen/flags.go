package main

import (
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/gpt2gen/internal/inference"
)

var (
	vocabPath      string
	mergesPath     string
	tokenizerJSON  string
	dataDir        string
	sequenceLength int
	vocabSize      int
	toySeed        int64
	toyHidden      int
	weightsPath    string
	logLevel       string
	logFormat      string
	debug          bool
)

func resourceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "vocab",
			Usage:       "path to vocab.json (falls back to $" + envVocab + ")",
			Destination: &vocabPath,
		},
		&cli.StringFlag{
			Name:        "merges",
			Usage:       "path to merges.txt (falls back to $" + envMerges + ")",
			Destination: &mergesPath,
		},
		&cli.StringFlag{
			Name:        "tokenizer-json",
			Usage:       "path to a HuggingFace tokenizer.json, used instead of --vocab and --merges",
			Destination: &tokenizerJSON,
		},
		&cli.StringFlag{
			Name:        "data-dir",
			Usage:       "directory holding vocab.json and merges.txt (falls back to $" + envDataDir + ")",
			Destination: &dataDir,
		},
	}
}

func modelFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "seq-len",
			Usage:       "model input width",
			Value:       inference.DefaultSequenceLength,
			Destination: &sequenceLength,
		},
		&cli.IntFlag{
			Name:        "vocab-size",
			Usage:       "model output width (0 uses the vocabulary size)",
			Destination: &vocabSize,
		},
		&cli.Int64Flag{
			Name:        "toy-seed",
			Usage:       "seed for the toy model weights",
			Value:       1,
			Destination: &toySeed,
		},
		&cli.IntFlag{
			Name:        "toy-hidden",
			Usage:       "hidden width of the toy model",
			Value:       32,
			Destination: &toyHidden,
		},
		&cli.StringFlag{
			Name:        "weights",
			Usage:       "path to toy model weights (.safetensors); random weights from --toy-seed when empty",
			Destination: &weightsPath,
		},
	}
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}
