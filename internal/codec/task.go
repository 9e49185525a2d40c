// Package codec maps TaskRecord values to and from the JSON wire object used
// by the incident service. Every wire key is bound explicitly in a table; the
// table order is the key order of encoded objects.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"taskwire/internal/models"
)

type task = models.TaskRecord

var taskBindings = []binding[task]{
	textField("inc_name", "IncidentName", func(t *task) *string { return &t.IncidentName }).
		withDoc("Name of the incident the task belongs to."),
	textField("name", "Name", func(t *task) *string { return &t.Name }).
		withDoc("Name of the task."),
	nestedField("regs", "Regulators", "regulator info", regulatorInfoTable,
		func(t *task) **models.RegulatorInfo { return &t.Regulators }).
		withDoc("Regulators that triggered the task."),
	boolField("custom", "Custom", func(t *task) *bool { return &t.Custom }).
		withDoc("True for tasks created manually on an incident."),
	intField("inc_id", "IncidentID", func(t *task) *int64 { return &t.IncidentID }).
		readonlyField().withDoc("ID of the incident the task belongs to."),
	optHandleField("inc_owner_id", "IncidentOwnerID", func(t *task) **models.ObjectHandle { return &t.IncidentOwnerID }).
		withDoc("Owner of the incident the task belongs to."),
	optTimeField("due_date", "DueDate", func(t *task) **time.Time { return &t.DueDate }).
		withDoc("Task due date; null when no due date is assigned."),
	boolField("required", "Required", func(t *task) *bool { return &t.Required }).
		readonlyField().withDoc("True if the task is required, false if optional."),
	optHandleField("owner_id", "OwnerID", func(t *task) **models.ObjectHandle { return &t.OwnerID }).
		withDoc("Task owner; null when unowned."),
	intField("id", "ID", func(t *task) *int64 { return &t.ID }).
		readonlyField().withDoc("Task ID."),
	binding[task]{
		key: "status", goName: "Status", kind: typeText,
		doc: "Task status code (O open, C closed). Unknown codes pass through.",
		encode: func(t *task, e *encoder, path string) any { return e.text(path, string(t.Status)) },
		decode: func(t *task, d *decoder, path string, raw json.RawMessage) {
			t.Status = models.TaskStatus(d.text(path, raw))
		},
	},
	boolField("inc_training", "TrainingIncident", func(t *task) *bool { return &t.TrainingIncident }).
		readonlyField().withDoc("True if the incident is a training incident (simulation)."),
	boolField("frozen", "Frozen", func(t *task) *bool { return &t.Frozen }).
		readonlyField().withDoc("True if the incident is frozen by a legal hold."),
	textField("owner_fname", "OwnerFirstName", func(t *task) *string { return &t.OwnerFirstName }).
		readonlyField().withDoc("First name of the task owner."),
	textField("owner_lname", "OwnerLastName", func(t *task) *string { return &t.OwnerLastName }).
		readonlyField().withDoc("Last name of the task owner."),
	textField("cat_name", "CategoryName", func(t *task) *string { return &t.CategoryName }).
		readonlyField().withDoc("Name of the rollup (category) the task is assigned to."),
	optTextField("description", "Description", func(t *task) **string { return &t.Description }).
		withDoc("Task description."),
	timeField("init_date", "ActivationDate", func(t *task) *time.Time { return &t.ActivationDate }).
		readonlyField().withDoc("Date the task was created or most recently reactivated."),
	textField("src_name", "DeprecatedSourceName", func(t *task) *string { return &t.DeprecatedSourceName }).
		deprecatedField().withDoc("Source name. Retained for compatibility only."),
	optTextField("instr_text", "CustomInstructions", func(t *task) **string { return &t.CustomInstructions }).
		withDoc("User-supplied instructions; override the default instructions."),
	optHandleField("auto_task_id", "DeprecatedAutoTaskID", func(t *task) **models.ObjectHandle { return &t.DeprecatedAutoTaskID }).
		deprecatedField().withDoc("Automatic task ID. Superseded by at_id."),
	optHandleField("at_id", "AutoTaskID", func(t *task) **models.ObjectHandle { return &t.AutoTaskID }).
		withDoc("Automatic task the task was created from."),
	boolField("active", "Active", func(t *task) *bool { return &t.Active }).
		withDoc("False when incident changes made the task no longer applicable."),
	handleListField("members", "Members", func(t *task) *[]models.ObjectHandle { return &t.Members }).
		withDoc("Task members; null means every incident member has access."),
	nestedField("perms", "Permissions", "permissions", permissionTable,
		func(t *task) **models.TaskPermissions { return &t.Permissions }).
		withDoc("Operations the caller may perform on the task."),
	nestedField("creator", "Creator", "user", userTable,
		func(t *task) **models.User { return &t.Creator }).
		withDoc("User who created the task."),
	listField("notes", "Notes", "comment", commentTable,
		func(t *task) *[]models.Comment { return &t.Notes }).
		withDoc("Notes (comments) on the task."),
	optTimeField("closed_date", "ClosedDate", func(t *task) **time.Time { return &t.ClosedDate }).
		readonlyField().withDoc("Date the task was closed."),
	listField("actions", "Actions", "action", actionTable,
		func(t *task) *[]models.ActionInfo { return &t.Actions }).
		withDoc("Actions available to the caller for execution."),
	optHandleField("phase_id", "PhaseID", func(t *task) **models.ObjectHandle { return &t.PhaseID }).
		withDoc("Phase the task belongs to."),
	optHandleField("category_id", "CategoryID", func(t *task) **models.ObjectHandle { return &t.CategoryID }).
		withDoc("Category the task belongs to."),
	intField("notes_count", "NotesCount", func(t *task) *int64 { return &t.NotesCount }).
		readonlyField().withDoc("Number of notes on the task."),
	intField("attachments_count", "AttachmentsCount", func(t *task) *int64 { return &t.AttachmentsCount }).
		readonlyField().withDoc("Number of attachments on the task."),
}

var taskKeys = knownKeys(taskBindings)

var errNilRecord = errors.New("task record is nil")

// Encode returns the wire object for rec with every bound key present.
// Absent optional values are emitted as null. Encode does not check rec;
// values rejected by Validate are encoded lossily.
func Encode(rec *models.TaskRecord) Object {
	if rec == nil {
		return nil
	}
	return encodeObject(rec, taskBindings, nil, nil, "")
}

// EncodeWritable is Encode without the server-populated read-only keys.
func EncodeWritable(rec *models.TaskRecord) Object {
	if rec == nil {
		return nil
	}
	return encodeObject(rec, taskBindings, func(b *binding[task]) bool { return !b.readOnly }, nil, "")
}

// Validate reports, as a *EncodeError, every value of rec that would not
// survive Encode followed by Decode. Records returned by Decode always pass.
func Validate(rec *models.TaskRecord) error {
	if rec == nil {
		return errNilRecord
	}
	e := &encoder{}
	encodeObject(rec, taskBindings, nil, e, "")
	return e.err()
}

// Marshal returns the JSON form of Encode(rec). It fails with a *EncodeError
// instead of emitting a lossy encoding.
func Marshal(rec *models.TaskRecord) ([]byte, error) {
	if rec == nil {
		return nil, errNilRecord
	}
	e := &encoder{}
	obj := encodeObject(rec, taskBindings, nil, e, "")
	if err := e.err(); err != nil {
		return nil, err
	}
	return json.Marshal(obj)
}

// Decode parses a wire object. Unknown keys are ignored and missing keys
// leave their fields absent. Malformed fields do not stop decoding: they are
// left at their zero value and reported together in a *DecodeError, which is
// returned alongside the partially decoded record.
func Decode(data []byte) (*models.TaskRecord, error) {
	fields, err := parseWireObject(data)
	if err != nil {
		return nil, err
	}
	rec := &models.TaskRecord{}
	d := &decoder{}
	decodeFields(d, "", fields, rec, taskBindings)
	return rec, d.err()
}

// UnknownKeys lists the top-level keys of a wire object that have no binding,
// sorted.
func UnknownKeys(data []byte) ([]string, error) {
	fields, err := parseWireObject(data)
	if err != nil {
		return nil, err
	}
	var out []string
	for key := range fields {
		if _, ok := taskKeys[key]; !ok {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out, nil
}

// DeprecatedKeys lists the deprecated keys that carry a non-null value in a
// wire object, in binding order.
func DeprecatedKeys(data []byte) ([]string, error) {
	fields, err := parseWireObject(data)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, b := range taskBindings {
		if !b.deprecated {
			continue
		}
		if raw, ok := fields[b.key]; ok && !isNull(raw) && !isEmptyString(raw) {
			out = append(out, b.key)
		}
	}
	return out, nil
}

func parseWireObject(data []byte) (map[string]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, ErrNotObject
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, fmt.Errorf("parse wire object: %w", err)
	}
	return fields, nil
}

func isEmptyString(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte(`""`))
}

// FieldInfo describes one top-level wire key.
type FieldInfo struct {
	Key         string `json:"key" yaml:"key"`
	GoName      string `json:"go_name" yaml:"go_name"`
	Type        string `json:"type" yaml:"type"`
	ReadOnly    bool   `json:"read_only" yaml:"read_only"`
	Deprecated  bool   `json:"deprecated" yaml:"deprecated"`
	Optional    bool   `json:"optional" yaml:"optional"`
	Description string `json:"description" yaml:"description"`
}

// Fields returns the field catalogue in wire order.
func Fields() []FieldInfo {
	out := make([]FieldInfo, 0, len(taskBindings))
	for _, b := range taskBindings {
		out = append(out, FieldInfo{
			Key:         b.key,
			GoName:      b.goName,
			Type:        b.kind,
			ReadOnly:    b.readOnly,
			Deprecated:  b.deprecated,
			Optional:    b.optional,
			Description: b.doc,
		})
	}
	return out
}

// LookupField returns the catalogue entry for a wire key.
func LookupField(key string) (FieldInfo, bool) {
	for _, f := range Fields() {
		if f.Key == key {
			return f, true
		}
	}
	return FieldInfo{}, false
}
