package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	envVocab   = "GPT2GEN_VOCAB"
	envMerges  = "GPT2GEN_MERGES"
	envDataDir = "GPT2GEN_DATA_DIR"

	vocabFileName  = "vocab.json"
	mergesFileName = "merges.txt"
)

// resolveResourcePath picks a resource path from, in order, the flag (or
// config) value, the environment and the data directory.
func resolveResourcePath(flagName, value, envKey, dir, fileName string) (string, error) {
	if v := strings.TrimSpace(value); v != "" {
		return filepath.Clean(v), nil
	}
	if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
		return filepath.Clean(v), nil
	}
	if dir = strings.TrimSpace(dir); dir == "" {
		dir = strings.TrimSpace(os.Getenv(envDataDir))
	}
	if dir == "" {
		return "", fmt.Errorf("--%s is required unless %s or %s is set", flagName, envKey, envDataDir)
	}
	path := filepath.Join(dir, fileName)
	if !fileExists(path) {
		return "", fmt.Errorf("%s not found in %s", fileName, dir)
	}
	return path, nil
}

func resolveResources() (vocab, merges string, err error) {
	vocab, err = resolveResourcePath("vocab", vocabPath, envVocab, dataDir, vocabFileName)
	if err != nil {
		return "", "", err
	}
	merges, err = resolveResourcePath("merges", mergesPath, envMerges, dataDir, mergesFileName)
	if err != nil {
		return "", "", err
	}
	return vocab, merges, nil
}

func fileExists(path string) bool {
	st, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !st.IsDir()
}

// promptFromArgs joins the flag value or, when empty, the positional args.
func promptFromArgs(flagValue string, flagSet bool, args []string) (string, error) {
	if flagSet {
		return flagValue, nil
	}
	if len(args) == 0 {
		return "", errors.New("a prompt is required (--prompt or positional text)")
	}
	return strings.Join(args, " "), nil
}
