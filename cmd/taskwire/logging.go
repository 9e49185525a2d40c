package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"taskwire/internal/config"
)

const logLevelEnvKey = "TASKWIRE_LOG_LEVEL"

type levelSource string

const (
	levelFromFlag    levelSource = "flag"
	levelFromEnv     levelSource = "env"
	levelFromConfig  levelSource = "config"
	levelFromDefault levelSource = "default"
)

// configureLoggerForCLI installs the default slog logger. A bad --log-level
// is an error; a bad env or config level falls back to the default and
// returns a warning line for the caller to print.
func configureLoggerForCLI(flagLevel, configLevel string) (string, error) {
	envLevel := os.Getenv(logLevelEnvKey)
	rawLevel, source := selectedLogLevel(flagLevel, envLevel, configLevel)
	if err := configureDefaultLogger(rawLevel); err == nil {
		return "", nil
	}

	if source == levelFromFlag {
		return "", fmt.Errorf("invalid --log-level %q", flagLevel)
	}
	_ = configureDefaultLogger("")
	switch source {
	case levelFromEnv:
		return fmt.Sprintf("warning: invalid %s=%q; defaulting to %s", logLevelEnvKey, envLevel, config.DefaultLogLevel), nil
	case levelFromConfig:
		return fmt.Sprintf("warning: invalid log_level=%q; defaulting to %s", configLevel, config.DefaultLogLevel), nil
	}
	return "", nil
}

func selectedLogLevel(flagLevel, envLevel, configLevel string) (string, levelSource) {
	switch {
	case strings.TrimSpace(flagLevel) != "":
		return flagLevel, levelFromFlag
	case strings.TrimSpace(envLevel) != "":
		return envLevel, levelFromEnv
	case strings.TrimSpace(configLevel) != "":
		return configLevel, levelFromConfig
	}
	return "", levelFromDefault
}

func configureDefaultLogger(rawLevel string) error {
	level, err := parseLogLevel(rawLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(newLogger(os.Stderr, level))
	return nil
}

func parseLogLevel(raw string) (slog.Level, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		value = config.DefaultLogLevel
	}
	if strings.EqualFold(value, "warning") {
		value = "warn"
	}

	if numeric, err := strconv.Atoi(value); err == nil {
		return slog.Level(numeric), nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return slog.LevelDebug, fmt.Errorf("invalid log level %q", raw)
	}
	return level, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
