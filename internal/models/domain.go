package models

import (
	"fmt"
	"strings"
)

// TaskStatus is the status code of a task. The incident service owns the
// enumeration; codes outside the known set are passed through unchanged.
type TaskStatus string

const (
	StatusOpen   TaskStatus = "O"
	StatusClosed TaskStatus = "C"
)

var knownTaskStatuses = map[TaskStatus]string{
	StatusOpen:   "open",
	StatusClosed: "closed",
}

// UnknownEnumerationValueError reports an enumerated code that is not
// recognized. It is informational: callers keep the raw value.
type UnknownEnumerationValueError struct {
	Field string
	Value string
}

func (e *UnknownEnumerationValueError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("unknown %s value: %q", e.Field, e.Value)
}

func IsKnownTaskStatus(status TaskStatus) bool {
	_, ok := knownTaskStatuses[status]
	return ok
}

// ParseTaskStatus normalizes a status code. Unknown codes are returned as-is
// alongside an *UnknownEnumerationValueError.
func ParseTaskStatus(raw string) (TaskStatus, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", fmt.Errorf("status is required")
	}
	if normalized := TaskStatus(strings.ToUpper(value)); IsKnownTaskStatus(normalized) {
		return normalized, nil
	}
	for code, label := range knownTaskStatuses {
		if strings.EqualFold(value, label) {
			return code, nil
		}
	}
	return TaskStatus(value), &UnknownEnumerationValueError{Field: "status", Value: value}
}

// Label returns a readable name for known statuses and the raw code otherwise.
func (s TaskStatus) Label() string {
	if label, ok := knownTaskStatuses[s]; ok {
		return label
	}
	return string(s)
}
