package codec

import (
	"encoding/json"
	"time"

	"taskwire/internal/models"
)

// binding ties one wire key to one field of T.
type binding[T any] struct {
	key        string
	goName     string
	kind       string
	readOnly   bool
	deprecated bool
	optional   bool
	doc        string
	encode     func(v *T, e *encoder, path string) any
	decode     func(v *T, d *decoder, path string, raw json.RawMessage)
}

// encodeObject emits one field per kept binding. e may be nil, in which case
// lossy values are encoded without being reported.
func encodeObject[T any](v *T, table []binding[T], keep func(*binding[T]) bool, e *encoder, prefix string) Object {
	out := make(Object, 0, len(table))
	for i := range table {
		b := &table[i]
		if keep != nil && !keep(b) {
			continue
		}
		out = append(out, Field{Key: b.key, Value: b.encode(v, e, joinPath(prefix, b.key))})
	}
	return out
}

// decodeFields applies every binding whose key is present. Keys without a
// binding are ignored.
func decodeFields[T any](d *decoder, prefix string, fields map[string]json.RawMessage, v *T, table []binding[T]) {
	for i := range table {
		b := &table[i]
		raw, ok := fields[b.key]
		if !ok {
			continue
		}
		b.decode(v, d, joinPath(prefix, b.key), raw)
	}
}

func decodeNested[T any](d *decoder, path string, raw json.RawMessage, table []binding[T]) *T {
	fields, ok := d.object(path, raw)
	if !ok {
		return nil
	}
	v := new(T)
	decodeFields(d, path, fields, v, table)
	return v
}

func encodeNested[T any](v *T, table []binding[T], e *encoder, path string) any {
	if v == nil {
		return nil
	}
	return encodeObject(v, table, nil, e, path)
}

// decodeList decodes an array of objects. A JSON null yields a nil slice and
// an empty array a non-nil empty one. Malformed elements are dropped.
func decodeList[T any](d *decoder, path string, raw json.RawMessage, table []binding[T]) []T {
	items, ok := d.array(path, raw)
	if !ok {
		return nil
	}
	out := make([]T, 0, len(items))
	for i, item := range items {
		elemPath := indexPath(path, i)
		if isNull(item) {
			d.fail(elemPath, typeObject, item, nil)
			continue
		}
		v := decodeNested(d, elemPath, item, table)
		if v == nil {
			continue
		}
		out = append(out, *v)
	}
	return out
}

func encodeList[T any](items []T, table []binding[T], e *encoder, path string) any {
	if items == nil {
		return nil
	}
	out := make([]any, 0, len(items))
	for i := range items {
		out = append(out, encodeObject(&items[i], table, nil, e, indexPath(path, i)))
	}
	return out
}

func knownKeys[T any](table []binding[T]) map[string]struct{} {
	out := make(map[string]struct{}, len(table))
	for _, b := range table {
		out[b.key] = struct{}{}
	}
	return out
}

func (b binding[T]) readonlyField() binding[T] {
	b.readOnly = true
	return b
}

func (b binding[T]) deprecatedField() binding[T] {
	b.deprecated = true
	return b
}

func (b binding[T]) withDoc(doc string) binding[T] {
	b.doc = doc
	return b
}

func textField[T any](key, goName string, field func(*T) *string) binding[T] {
	return binding[T]{
		key: key, goName: goName, kind: typeText,
		encode: func(v *T, e *encoder, path string) any { return e.text(path, *field(v)) },
		decode: func(v *T, d *decoder, path string, raw json.RawMessage) {
			*field(v) = d.text(path, raw)
		},
	}
}

func optTextField[T any](key, goName string, field func(*T) **string) binding[T] {
	return binding[T]{
		key: key, goName: goName, kind: typeText, optional: true,
		encode: func(v *T, e *encoder, path string) any { return e.optText(path, *field(v)) },
		decode: func(v *T, d *decoder, path string, raw json.RawMessage) {
			value, _ := d.optText(path, raw)
			*field(v) = value
		},
	}
}

func boolField[T any](key, goName string, field func(*T) *bool) binding[T] {
	return binding[T]{
		key: key, goName: goName, kind: typeBool,
		encode: func(v *T, _ *encoder, _ string) any { return *field(v) },
		decode: func(v *T, d *decoder, path string, raw json.RawMessage) {
			*field(v) = d.boolean(path, raw)
		},
	}
}

func intField[T any](key, goName string, field func(*T) *int64) binding[T] {
	return binding[T]{
		key: key, goName: goName, kind: typeInteger,
		encode: func(v *T, _ *encoder, _ string) any { return *field(v) },
		decode: func(v *T, d *decoder, path string, raw json.RawMessage) {
			*field(v) = d.integer(path, raw)
		},
	}
}

func optIntField[T any](key, goName string, field func(*T) **int64) binding[T] {
	return binding[T]{
		key: key, goName: goName, kind: typeInteger, optional: true,
		encode: func(v *T, _ *encoder, _ string) any { return encodeOptInteger(*field(v)) },
		decode: func(v *T, d *decoder, path string, raw json.RawMessage) {
			*field(v) = d.optInteger(path, raw)
		},
	}
}

func timeField[T any](key, goName string, field func(*T) *time.Time) binding[T] {
	return binding[T]{
		key: key, goName: goName, kind: typeTimestamp,
		encode: func(v *T, e *encoder, path string) any { return e.timestamp(path, *field(v)) },
		decode: func(v *T, d *decoder, path string, raw json.RawMessage) {
			*field(v) = d.timestamp(path, raw)
		},
	}
}

func optTimeField[T any](key, goName string, field func(*T) **time.Time) binding[T] {
	return binding[T]{
		key: key, goName: goName, kind: typeTimestamp, optional: true,
		encode: func(v *T, e *encoder, path string) any { return e.optTimestamp(path, *field(v)) },
		decode: func(v *T, d *decoder, path string, raw json.RawMessage) {
			*field(v) = d.optTimestamp(path, raw)
		},
	}
}

func handleField[T any](key, goName string, field func(*T) *models.ObjectHandle) binding[T] {
	return binding[T]{
		key: key, goName: goName, kind: typeHandle,
		encode: func(v *T, e *encoder, path string) any { return e.handle(path, *field(v)) },
		decode: func(v *T, d *decoder, path string, raw json.RawMessage) {
			if h := d.optHandle(path, raw); h != nil {
				*field(v) = *h
			}
		},
	}
}

func optHandleField[T any](key, goName string, field func(*T) **models.ObjectHandle) binding[T] {
	return binding[T]{
		key: key, goName: goName, kind: typeHandle, optional: true,
		encode: func(v *T, e *encoder, path string) any { return e.optHandle(path, *field(v)) },
		decode: func(v *T, d *decoder, path string, raw json.RawMessage) {
			*field(v) = d.optHandle(path, raw)
		},
	}
}

func handleListField[T any](key, goName string, field func(*T) *[]models.ObjectHandle) binding[T] {
	return binding[T]{
		key: key, goName: goName, kind: "array of " + typeHandle, optional: true,
		encode: func(v *T, e *encoder, path string) any { return e.handles(path, *field(v)) },
		decode: func(v *T, d *decoder, path string, raw json.RawMessage) {
			*field(v) = d.handles(path, raw)
		},
	}
}

func nestedField[T, N any](key, goName, kind string, table func() []binding[N], field func(*T) **N) binding[T] {
	return binding[T]{
		key: key, goName: goName, kind: kind, optional: true,
		encode: func(v *T, e *encoder, path string) any { return encodeNested(*field(v), table(), e, path) },
		decode: func(v *T, d *decoder, path string, raw json.RawMessage) {
			*field(v) = decodeNested(d, path, raw, table())
		},
	}
}

func listField[T, N any](key, goName, kind string, table func() []binding[N], field func(*T) *[]N) binding[T] {
	return binding[T]{
		key: key, goName: goName, kind: "array of " + kind, optional: true,
		encode: func(v *T, e *encoder, path string) any { return encodeList(*field(v), table(), e, path) },
		decode: func(v *T, d *decoder, path string, raw json.RawMessage) {
			*field(v) = decodeList(d, path, raw, table())
		},
	}
}
