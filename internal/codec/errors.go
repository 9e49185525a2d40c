package codec

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotObject is returned when the top-level wire value is not a JSON object.
var ErrNotObject = errors.New("wire value is not a JSON object")

const maxRawExcerpt = 64

// MalformedFieldError reports a wire value that cannot be coerced to the
// semantic type of its field. Key is the dotted wire path, e.g. "id",
// "creator.locked" or "notes[2].text".
type MalformedFieldError struct {
	Key      string
	Expected string
	Raw      string
	Err      error
}

func (e *MalformedFieldError) Error() string {
	if e == nil {
		return ""
	}
	msg := fmt.Sprintf("malformed field %q: expected %s, got %s", e.Key, e.Expected, e.Raw)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedFieldError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// DecodeError collects every malformed field met while decoding one wire
// object. Decoding continues past a malformed field, so the record returned
// next to a DecodeError holds every field that did decode.
type DecodeError struct {
	Fields []*MalformedFieldError
}

func (e *DecodeError) Error() string {
	if e == nil {
		return ""
	}
	return joinFieldErrors(e.Fields)
}

func (e *DecodeError) Unwrap() []error {
	if e == nil {
		return nil
	}
	return unwrapFields(e.Fields)
}

// Keys returns the wire paths of all malformed fields in decode order.
func (e *DecodeError) Keys() []string {
	if e == nil {
		return nil
	}
	return fieldKeys(e.Fields)
}

// EncodeError collects every record value that has no lossless wire form:
// strings that are not valid UTF-8 and timestamps that are not UTC or carry
// sub-millisecond precision.
type EncodeError struct {
	Fields []*MalformedFieldError
}

func (e *EncodeError) Error() string {
	if e == nil {
		return ""
	}
	return joinFieldErrors(e.Fields)
}

func (e *EncodeError) Unwrap() []error {
	if e == nil {
		return nil
	}
	return unwrapFields(e.Fields)
}

// Keys returns the wire paths of all rejected values in encode order.
func (e *EncodeError) Keys() []string {
	if e == nil {
		return nil
	}
	return fieldKeys(e.Fields)
}

func joinFieldErrors(fields []*MalformedFieldError) string {
	switch len(fields) {
	case 0:
		return ""
	case 1:
		return fields[0].Error()
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f.Error())
	}
	return fmt.Sprintf("%d malformed fields: %s", len(fields), strings.Join(parts, "; "))
}

func unwrapFields(fields []*MalformedFieldError) []error {
	out := make([]error, 0, len(fields))
	for _, f := range fields {
		out = append(out, f)
	}
	return out
}

func fieldKeys(fields []*MalformedFieldError) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.Key)
	}
	return out
}

func excerpt(raw []byte) string {
	value := strings.TrimSpace(string(raw))
	if len(value) > maxRawExcerpt {
		return value[:maxRawExcerpt] + "..."
	}
	return value
}
