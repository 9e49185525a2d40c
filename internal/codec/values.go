package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"time"
	"unicode/utf8"

	"taskwire/internal/models"
)

const (
	typeText      = "string"
	typeBool      = "boolean"
	typeInteger   = "integer"
	typeTimestamp = "timestamp"
	typeHandle    = "object handle"
	typeObject    = "object"
	typeArray     = "array"
)

var errEmptyName = errors.New("handle name must not be empty")

// decoder accumulates malformed fields while a wire object is decoded.
type decoder struct {
	errs []*MalformedFieldError
}

func (d *decoder) fail(path, expected string, raw json.RawMessage, err error) {
	d.errs = append(d.errs, &MalformedFieldError{
		Key:      path,
		Expected: expected,
		Raw:      excerpt(raw),
		Err:      err,
	})
}

func (d *decoder) err() error {
	if len(d.errs) == 0 {
		return nil
	}
	return &DecodeError{Fields: d.errs}
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// scalar decodes one JSON value keeping numbers as json.Number so integral
// values can be told apart from fractional ones.
func scalar(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}
	return value, nil
}

func (d *decoder) text(path string, raw json.RawMessage) string {
	if value, ok := d.optText(path, raw); ok && value != nil {
		return *value
	}
	return ""
}

func (d *decoder) optText(path string, raw json.RawMessage) (*string, bool) {
	if isNull(raw) {
		return nil, true
	}
	value, err := scalar(raw)
	s, ok := value.(string)
	if err != nil || !ok {
		d.fail(path, typeText, raw, err)
		return nil, false
	}
	return &s, true
}

func (d *decoder) boolean(path string, raw json.RawMessage) bool {
	if isNull(raw) {
		return false
	}
	value, err := scalar(raw)
	b, ok := value.(bool)
	if err != nil || !ok {
		d.fail(path, typeBool, raw, err)
		return false
	}
	return b
}

func (d *decoder) integer(path string, raw json.RawMessage) int64 {
	if value := d.optInteger(path, raw); value != nil {
		return *value
	}
	return 0
}

func (d *decoder) optInteger(path string, raw json.RawMessage) *int64 {
	if isNull(raw) {
		return nil
	}
	value, err := scalar(raw)
	n, ok := value.(json.Number)
	if err != nil || !ok {
		d.fail(path, typeInteger, raw, err)
		return nil
	}
	i, err := n.Int64()
	if err != nil {
		d.fail(path, typeInteger, raw, err)
		return nil
	}
	return &i
}

func (d *decoder) timestamp(path string, raw json.RawMessage) time.Time {
	if value := d.optTimestamp(path, raw); value != nil {
		return *value
	}
	return time.Time{}
}

// optTimestamp accepts epoch milliseconds or an RFC 3339 string. Strings are
// truncated to milliseconds, the precision of the wire.
func (d *decoder) optTimestamp(path string, raw json.RawMessage) *time.Time {
	if isNull(raw) {
		return nil
	}
	value, err := scalar(raw)
	if err != nil {
		d.fail(path, typeTimestamp, raw, err)
		return nil
	}
	switch v := value.(type) {
	case json.Number:
		ms, err := v.Int64()
		if err != nil {
			d.fail(path, typeTimestamp, raw, err)
			return nil
		}
		t := time.UnixMilli(ms).UTC()
		return &t
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			d.fail(path, typeTimestamp, raw, err)
			return nil
		}
		t = t.UTC().Truncate(time.Millisecond)
		return &t
	default:
		d.fail(path, typeTimestamp, raw, nil)
		return nil
	}
}

func (d *decoder) optHandle(path string, raw json.RawMessage) *models.ObjectHandle {
	if isNull(raw) {
		return nil
	}
	value, err := scalar(raw)
	if err != nil {
		d.fail(path, typeHandle, raw, err)
		return nil
	}
	switch v := value.(type) {
	case json.Number:
		id, err := v.Int64()
		if err != nil {
			d.fail(path, typeHandle, raw, err)
			return nil
		}
		h := models.HandleByID(id)
		return &h
	case string:
		if v == "" {
			d.fail(path, typeHandle, raw, errEmptyName)
			return nil
		}
		h := models.HandleByName(v)
		return &h
	default:
		d.fail(path, typeHandle, raw, nil)
		return nil
	}
}

// handles decodes an array of handles. Malformed elements are reported and
// dropped; a JSON null yields a nil slice.
func (d *decoder) handles(path string, raw json.RawMessage) []models.ObjectHandle {
	items, ok := d.array(path, raw)
	if !ok {
		return nil
	}
	out := make([]models.ObjectHandle, 0, len(items))
	for i, item := range items {
		h := d.optHandle(indexPath(path, i), item)
		if h == nil {
			if isNull(item) {
				d.fail(indexPath(path, i), typeHandle, item, nil)
			}
			continue
		}
		out = append(out, *h)
	}
	return out
}

// object returns the members of a JSON object. ok is false for null and for
// malformed values; only the latter are reported.
func (d *decoder) object(path string, raw json.RawMessage) (map[string]json.RawMessage, bool) {
	if isNull(raw) {
		return nil, false
	}
	trimmed := bytes.TrimSpace(raw)
	var fields map[string]json.RawMessage
	if len(trimmed) == 0 || trimmed[0] != '{' {
		d.fail(path, typeObject, raw, nil)
		return nil, false
	}
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		d.fail(path, typeObject, raw, err)
		return nil, false
	}
	return fields, true
}

func (d *decoder) array(path string, raw json.RawMessage) ([]json.RawMessage, bool) {
	if isNull(raw) {
		return nil, false
	}
	trimmed := bytes.TrimSpace(raw)
	var items []json.RawMessage
	if len(trimmed) == 0 || trimmed[0] != '[' {
		d.fail(path, typeArray, raw, nil)
		return nil, false
	}
	if err := json.Unmarshal(trimmed, &items); err != nil {
		d.fail(path, typeArray, raw, err)
		return nil, false
	}
	return items, true
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func indexPath(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}

const typeWireTime = "UTC timestamp with millisecond precision"

var (
	errInvalidUTF8    = errors.New("string is not valid UTF-8")
	errNotUTC         = errors.New("time is not in UTC")
	errSubMillisecond = errors.New("time has sub-millisecond precision")
)

// encoder collects record values that the wire cannot carry without loss.
// A nil encoder encodes the same values but reports nothing.
type encoder struct {
	errs []*MalformedFieldError
}

func (e *encoder) fail(path, expected, got string, err error) {
	if e == nil {
		return
	}
	e.errs = append(e.errs, &MalformedFieldError{
		Key:      path,
		Expected: expected,
		Raw:      excerpt([]byte(got)),
		Err:      err,
	})
}

func (e *encoder) err() error {
	if e == nil || len(e.errs) == 0 {
		return nil
	}
	return &EncodeError{Fields: e.errs}
}

func (e *encoder) text(path, s string) any {
	if !utf8.ValidString(s) {
		e.fail(path, typeText, strconv.Quote(s), errInvalidUTF8)
	}
	return s
}

func (e *encoder) optText(path string, s *string) any {
	if s == nil {
		return nil
	}
	return e.text(path, *s)
}

// timestamp encodes a required timestamp. The zero time has no wire form other
// than null.
func (e *encoder) timestamp(path string, t time.Time) any {
	if t.IsZero() {
		return nil
	}
	e.checkTime(path, t)
	return t.UnixMilli()
}

// optTimestamp encodes every non-nil time as epoch milliseconds, the zero time
// included, so presence survives a round trip.
func (e *encoder) optTimestamp(path string, t *time.Time) any {
	if t == nil {
		return nil
	}
	e.checkTime(path, *t)
	return t.UnixMilli()
}

func (e *encoder) checkTime(path string, t time.Time) {
	switch {
	case t.Location() != time.UTC:
		e.fail(path, typeWireTime, t.Format(time.RFC3339Nano), errNotUTC)
	case t.Nanosecond()%int(time.Millisecond) != 0:
		e.fail(path, typeWireTime, t.Format(time.RFC3339Nano), errSubMillisecond)
	}
}

func (e *encoder) handle(path string, h models.ObjectHandle) any {
	if h.IsName() {
		return e.text(path, h.Name())
	}
	return h.ID()
}

func (e *encoder) optHandle(path string, h *models.ObjectHandle) any {
	if h == nil {
		return nil
	}
	return e.handle(path, *h)
}

func (e *encoder) handles(path string, items []models.ObjectHandle) any {
	if items == nil {
		return nil
	}
	out := make([]any, 0, len(items))
	for i, h := range items {
		out = append(out, e.handle(indexPath(path, i), h))
	}
	return out
}

func encodeOptInteger(i *int64) any {
	if i == nil {
		return nil
	}
	return *i
}
