package main

import (
	"errors"
	"io/fs"

	"github.com/BurntSushi/toml"

	"taskwire/internal/codec"
	"taskwire/internal/store"
)

func formatCLIError(err error) []string {
	if err == nil {
		return nil
	}

	lines := []string{"error: " + err.Error()}

	var decodeErr *codec.DecodeError
	var malformed *codec.MalformedFieldError
	if errors.As(err, &decodeErr) || errors.As(err, &malformed) {
		lines = append(lines,
			"hint: run taskwire validate <file> to list every malformed field.",
			"hint: taskwire fields <key> shows the expected type of a field.",
		)
		return uniqueLines(lines)
	}

	switch {
	case errors.Is(err, errValidationFailed):
		return []string{"error: " + err.Error()}
	case errors.Is(err, codec.ErrNotObject):
		lines = append(lines, "hint: input must be a single JSON task object, not an array or scalar.")
	case errors.Is(err, store.ErrNotFound):
		lines = append(lines, "hint: list stored tasks with: taskwire store list")
	case errors.Is(err, store.ErrMissingID):
		lines = append(lines, "hint: a task object needs a positive \"id\" before it can be stored.")
	case errors.Is(err, fs.ErrNotExist):
		lines = append(lines, "hint: pass - to read the task object from stdin.")
	}

	var parseErr toml.ParseError
	if errors.As(err, &parseErr) {
		lines = append(lines,
			"hint: fix the config file or point TASKWIRE_CONFIG_DIR at another directory.",
			parseErr.ErrorWithPosition(),
		)
	}

	return uniqueLines(lines)
}

func uniqueLines(lines []string) []string {
	seen := make(map[string]struct{}, len(lines))
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out
}
