package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the gpt2gen configuration file (~/.config/gpt2gen/config.yaml).
// Numeric fields are pointers so "not set" differs from zero; empty strings
// mean "not set".
type Config struct {
	Vocab   string `yaml:"vocab"`
	Merges  string `yaml:"merges"`
	DataDir string `yaml:"data_dir"`
	// TokenizerJSON replaces Vocab and Merges when set.
	TokenizerJSON string `yaml:"tokenizer_json"`

	Tokens         *int   `yaml:"tokens"`
	SequenceLength *int   `yaml:"sequence_length"`
	VocabSize      *int   `yaml:"vocab_size"`
	ToySeed        *int64 `yaml:"toy_seed"`
	ToyHidden      *int   `yaml:"toy_hidden"`
	Weights        string `yaml:"weights"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	ServerAddress string `yaml:"server_address"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "gpt2gen", "config.yaml")
}

// LoadConfig reads the config file. Returns a zero Config if the file doesn't exist.
func LoadConfig() Config {
	return loadConfigFile(configPath())
}

func loadConfigFile(path string) Config {
	if path == "" {
		return Config{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}
	}
	return cfg
}

func applyLoggingConfig(c *cli.Command, cfg Config) {
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

// applyModelConfig applies config file defaults to the resource and model
// flags that were not set on the command line.
func applyModelConfig(c *cli.Command, cfg Config) {
	if cfg.Vocab != "" && !c.IsSet("vocab") {
		vocabPath = cfg.Vocab
	}
	if cfg.Merges != "" && !c.IsSet("merges") {
		mergesPath = cfg.Merges
	}
	if cfg.TokenizerJSON != "" && !c.IsSet("tokenizer-json") {
		tokenizerJSON = cfg.TokenizerJSON
	}
	if cfg.DataDir != "" && !c.IsSet("data-dir") {
		dataDir = cfg.DataDir
	}
	if cfg.SequenceLength != nil && !c.IsSet("seq-len") {
		sequenceLength = *cfg.SequenceLength
	}
	if cfg.VocabSize != nil && !c.IsSet("vocab-size") {
		vocabSize = *cfg.VocabSize
	}
	if cfg.ToySeed != nil && !c.IsSet("toy-seed") {
		toySeed = *cfg.ToySeed
	}
	if cfg.ToyHidden != nil && !c.IsSet("toy-hidden") {
		toyHidden = *cfg.ToyHidden
	}
	if cfg.Weights != "" && !c.IsSet("weights") {
		weightsPath = cfg.Weights
	}
}

func applyGenerateConfig(c *cli.Command, cfg Config, tokens *int) {
	applyModelConfig(c, cfg)
	if cfg.Tokens != nil && !c.IsSet("tokens") {
		*tokens = *cfg.Tokens
	}
}

func applyServeConfig(c *cli.Command, cfg Config, addr *string) {
	applyModelConfig(c, cfg)
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
}
