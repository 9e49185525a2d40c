package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"reflect"
	"strings"
	"testing"
	"time"

	"taskwire/internal/models"
)

func strPtr(s string) *string { return &s }

func int64Ptr(i int64) *int64 { return &i }

func handlePtr(h models.ObjectHandle) *models.ObjectHandle { return &h }

func timePtr(t time.Time) *time.Time { return &t }

func sampleRecord() *models.TaskRecord {
	created := time.Date(2026, 3, 1, 9, 30, 0, 125_000_000, time.UTC)
	return &models.TaskRecord{
		IncidentName: "Lost laptop",
		Name:         "Notify regulator",
		Regulators: &models.RegulatorInfo{Regulators: []models.Regulator{
			{ID: models.HandleByID(55), Name: "HIPAA"},
			{ID: models.HandleByName("gdpr"), Name: "GDPR"},
		}},
		Custom:               true,
		IncidentID:           2095,
		IncidentOwnerID:      handlePtr(models.HandleByID(3)),
		DueDate:              timePtr(created.Add(72 * time.Hour)),
		Required:             true,
		OwnerID:              handlePtr(models.HandleByName("soc@example.com")),
		ID:                   1201,
		Status:               models.StatusOpen,
		TrainingIncident:     false,
		Frozen:               true,
		OwnerFirstName:       "Ada",
		OwnerLastName:        "Lovelace",
		CategoryName:         "Respond",
		Description:          strPtr("Send the breach notice"),
		ActivationDate:       created,
		DeprecatedSourceName: "legacy",
		CustomInstructions:   strPtr("Call legal first"),
		DeprecatedAutoTaskID: handlePtr(models.HandleByID(77)),
		AutoTaskID:           handlePtr(models.HandleByName("notify_regulator")),
		Active:               true,
		Members:              []models.ObjectHandle{models.HandleByID(4), models.HandleByName("ir_team")},
		Permissions:          &models.TaskPermissions{Read: true, Write: true, Close: true, ChangeMembers: true},
		Creator: &models.User{
			ID: 3, FirstName: "Grace", LastName: "Hopper", DisplayName: "Grace Hopper",
			Email: "grace@example.com", Status: "A",
		},
		Notes: []models.Comment{{
			ID:            10,
			UserID:        handlePtr(models.HandleByID(3)),
			UserFirstName: "Grace",
			UserLastName:  "Hopper",
			Text:          "Started",
			CreateDate:    created,
			ModifyDate:    created.Add(time.Minute),
			Children: []models.Comment{{
				ID:         11,
				ParentID:   int64Ptr(10),
				Text:       "Ack",
				CreateDate: created.Add(2 * time.Minute),
				ModifyDate: created.Add(2 * time.Minute),
				Deleted:    true,
			}},
		}},
		ClosedDate:       nil,
		Actions:          []models.ActionInfo{{ID: 5, Name: "Escalate", Enabled: true}, {ID: 6, Name: "Archive"}},
		PhaseID:          handlePtr(models.HandleByName("Respond")),
		CategoryID:       handlePtr(models.HandleByID(8)),
		NotesCount:       2,
		AttachmentsCount: 1,
	}
}

func mustDecode(t *testing.T, data []byte) *models.TaskRecord {
	t.Helper()
	rec, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return rec
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		rec  *models.TaskRecord
	}{
		{name: "full record", rec: sampleRecord()},
		{name: "zero record", rec: &models.TaskRecord{}},
		{name: "empty members", rec: &models.TaskRecord{ID: 1, Members: []models.ObjectHandle{}, Notes: []models.Comment{}}},
		{name: "closed task", rec: func() *models.TaskRecord {
			rec := sampleRecord()
			rec.Status = models.StatusClosed
			rec.ClosedDate = timePtr(time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC))
			rec.Members = nil
			return rec
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertRoundTrip(t, tt.rec)
		})
	}
}

func assertRoundTrip(t *testing.T, rec *models.TaskRecord) {
	t.Helper()
	data, err := Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got := mustDecode(t, data)
	if !reflect.DeepEqual(got, rec) {
		t.Fatalf("round trip mismatch\nwire %s\nwant %+v\ngot  %+v", data, rec, got)
	}
}

func TestRoundTripVariants(t *testing.T) {
	zone := time.FixedZone("UTC+5:30", 5*3600+1800)
	tests := []struct {
		name string
		edit func(rec *models.TaskRecord)
	}{
		{name: "id handle zero", edit: func(rec *models.TaskRecord) { rec.OwnerID = handlePtr(models.HandleByID(0)) }},
		{name: "negative id handle", edit: func(rec *models.TaskRecord) { rec.PhaseID = handlePtr(models.HandleByID(-7)) }},
		{name: "numeric-looking name handle", edit: func(rec *models.TaskRecord) { rec.PhaseID = handlePtr(models.HandleByName("42")) }},
		{name: "empty name handle collapses to id zero", edit: func(rec *models.TaskRecord) { rec.CategoryID = handlePtr(models.HandleByName("")) }},
		{name: "zero due date is present", edit: func(rec *models.TaskRecord) { rec.DueDate = timePtr(time.Time{}) }},
		{name: "pre-epoch closed date", edit: func(rec *models.TaskRecord) {
			rec.ClosedDate = timePtr(time.Date(1969, 7, 20, 20, 17, 40, 0, time.UTC))
		}},
		{name: "offset time normalized to UTC", edit: func(rec *models.TaskRecord) {
			rec.DueDate = timePtr(time.Date(2026, 6, 1, 23, 59, 59, 999_000_000, zone).UTC())
		}},
		{name: "nil notes and actions", edit: func(rec *models.TaskRecord) { rec.Notes, rec.Actions = nil, nil }},
		{name: "empty notes and actions", edit: func(rec *models.TaskRecord) {
			rec.Notes, rec.Actions = []models.Comment{}, []models.ActionInfo{}
		}},
		{name: "nil comment children", edit: func(rec *models.TaskRecord) { rec.Notes[0].Children = nil }},
		{name: "empty comment children", edit: func(rec *models.TaskRecord) { rec.Notes[0].Children = []models.Comment{} }},
		{name: "null parent id", edit: func(rec *models.TaskRecord) { rec.Notes[0].Children[0].ParentID = nil }},
		{name: "nil regulator list", edit: func(rec *models.TaskRecord) { rec.Regulators = &models.RegulatorInfo{} }},
		{name: "empty regulator list", edit: func(rec *models.TaskRecord) {
			rec.Regulators = &models.RegulatorInfo{Regulators: []models.Regulator{}}
		}},
		{name: "absent regulator info", edit: func(rec *models.TaskRecord) { rec.Regulators = nil }},
		{name: "nil members", edit: func(rec *models.TaskRecord) { rec.Members = nil }},
		{name: "unicode text", edit: func(rec *models.TaskRecord) { rec.Name = "Prévenir l'autorité \u2013 \"urgent\"\n" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := sampleRecord()
			tt.edit(rec)
			assertRoundTrip(t, rec)
		})
	}
}

func TestRoundTripGeneratedRecords(t *testing.T) {
	r := rand.New(rand.NewPCG(20260301, 1201))
	for i := 0; i < 200; i++ {
		rec := randomRecord(r)
		t.Run(fmt.Sprintf("record %d", i), func(t *testing.T) {
			assertRoundTrip(t, rec)
		})
	}
}

var sampleTexts = []string{"", "Respond", "ir_team", "42", "Prévenir", "line\nbreak", `quote " and \ slash`, "<b>&amp;</b>"}

func randomText(r *rand.Rand) string {
	return sampleTexts[r.IntN(len(sampleTexts))]
}

func randomOptText(r *rand.Rand) *string {
	if r.IntN(3) == 0 {
		return nil
	}
	return strPtr(randomText(r))
}

func randomTime(r *rand.Rand) time.Time {
	if r.IntN(8) == 0 {
		return time.Time{}
	}
	return time.UnixMilli(r.Int64N(4_000_000_000_000) - 1_000_000_000_000).UTC()
}

func randomOptTime(r *rand.Rand) *time.Time {
	if r.IntN(3) == 0 {
		return nil
	}
	return timePtr(randomTime(r))
}

func randomHandle(r *rand.Rand) models.ObjectHandle {
	if r.IntN(2) == 0 {
		return models.HandleByID(r.Int64N(10_000) - 100)
	}
	name := randomText(r)
	if name == "" {
		name = "phase"
	}
	return models.HandleByName(name)
}

func randomOptHandle(r *rand.Rand) *models.ObjectHandle {
	if r.IntN(3) == 0 {
		return nil
	}
	return handlePtr(randomHandle(r))
}

// randomLen returns -1 for a nil slice, otherwise a length of 0 to 3.
func randomLen(r *rand.Rand) int {
	return r.IntN(5) - 1
}

func randomComments(r *rand.Rand, depth int) []models.Comment {
	n := randomLen(r)
	if n < 0 || depth > 2 {
		return nil
	}
	out := make([]models.Comment, 0, n)
	for i := 0; i < n; i++ {
		c := models.Comment{
			ID:            r.Int64N(1000),
			UserID:        randomOptHandle(r),
			UserFirstName: randomText(r),
			UserLastName:  randomText(r),
			Text:          randomText(r),
			CreateDate:    randomTime(r),
			ModifyDate:    randomTime(r),
			Deleted:       r.IntN(2) == 0,
			Children:      randomComments(r, depth+1),
		}
		if r.IntN(2) == 0 {
			c.ParentID = int64Ptr(r.Int64N(1000))
		}
		out = append(out, c)
	}
	return out
}

func randomRecord(r *rand.Rand) *models.TaskRecord {
	rec := &models.TaskRecord{
		IncidentName:         randomText(r),
		Name:                 randomText(r),
		Custom:               r.IntN(2) == 0,
		IncidentID:           r.Int64N(100_000),
		IncidentOwnerID:      randomOptHandle(r),
		DueDate:              randomOptTime(r),
		Required:             r.IntN(2) == 0,
		OwnerID:              randomOptHandle(r),
		ID:                   r.Int64N(100_000),
		Status:               []models.TaskStatus{models.StatusOpen, models.StatusClosed, "", "Q"}[r.IntN(4)],
		TrainingIncident:     r.IntN(2) == 0,
		Frozen:               r.IntN(2) == 0,
		OwnerFirstName:       randomText(r),
		OwnerLastName:        randomText(r),
		CategoryName:         randomText(r),
		Description:          randomOptText(r),
		ActivationDate:       randomTime(r),
		DeprecatedSourceName: randomText(r),
		CustomInstructions:   randomOptText(r),
		DeprecatedAutoTaskID: randomOptHandle(r),
		AutoTaskID:           randomOptHandle(r),
		Active:               r.IntN(2) == 0,
		Notes:                randomComments(r, 0),
		ClosedDate:           randomOptTime(r),
		PhaseID:              randomOptHandle(r),
		CategoryID:           randomOptHandle(r),
		NotesCount:           r.Int64N(50),
		AttachmentsCount:     r.Int64N(50),
	}
	if n := randomLen(r); n >= 0 {
		rec.Members = make([]models.ObjectHandle, 0, n)
		for i := 0; i < n; i++ {
			rec.Members = append(rec.Members, randomHandle(r))
		}
	}
	if r.IntN(3) > 0 {
		rec.Regulators = &models.RegulatorInfo{}
		if n := randomLen(r); n >= 0 {
			rec.Regulators.Regulators = make([]models.Regulator, 0, n)
			for i := 0; i < n; i++ {
				rec.Regulators.Regulators = append(rec.Regulators.Regulators, models.Regulator{ID: randomHandle(r), Name: randomText(r)})
			}
		}
	}
	if r.IntN(2) == 0 {
		rec.Permissions = &models.TaskPermissions{Read: r.IntN(2) == 0, Close: r.IntN(2) == 0}
	}
	if r.IntN(2) == 0 {
		rec.Creator = &models.User{ID: r.Int64N(100), FirstName: randomText(r), Email: randomText(r), Locked: r.IntN(2) == 0}
	}
	if n := randomLen(r); n >= 0 {
		rec.Actions = make([]models.ActionInfo, 0, n)
		for i := 0; i < n; i++ {
			rec.Actions = append(rec.Actions, models.ActionInfo{ID: r.Int64N(100), Name: randomText(r), Enabled: r.IntN(2) == 0})
		}
	}
	return rec
}

func TestZeroTimePointerEncodesAsEpochMillis(t *testing.T) {
	rec := &models.TaskRecord{DueDate: timePtr(time.Time{})}
	if v, _ := Encode(rec).Get("due_date"); v != int64(-62135596800000) {
		t.Fatalf("expected zero time as epoch millis, got %#v", v)
	}
	got := mustDecode(t, mustMarshal(t, rec))
	if got.DueDate == nil || !got.DueDate.IsZero() {
		t.Fatalf("expected present zero due date, got %v", got.DueDate)
	}
}

func TestMarshalRejectsLossyTimes(t *testing.T) {
	rec := sampleRecord()
	rec.DueDate = timePtr(time.Date(2026, 3, 1, 9, 30, 0, 0, time.FixedZone("CET", 3600)))
	rec.Notes[0].Children[0].CreateDate = time.Date(2026, 3, 1, 9, 30, 0, 1500, time.UTC)

	_, err := Marshal(rec)
	var encErr *EncodeError
	if !errors.As(err, &encErr) {
		t.Fatalf("expected EncodeError, got %v", err)
	}
	want := []string{"due_date", "notes[0].children[0].create_date"}
	if !reflect.DeepEqual(encErr.Keys(), want) {
		t.Fatalf("expected keys %v, got %v", want, encErr.Keys())
	}
	if !errors.Is(err, errNotUTC) || !errors.Is(err, errSubMillisecond) {
		t.Fatalf("expected both time causes, got %v", err)
	}
	if Validate(rec) == nil {
		t.Fatal("expected Validate to reject the same record")
	}
	if err := Validate(sampleRecord()); err != nil {
		t.Fatalf("expected sample record to validate, got %v", err)
	}
}

func TestMarshalRejectsInvalidUTF8(t *testing.T) {
	rec := sampleRecord()
	rec.Name = "a\xffb"
	rec.Members = []models.ObjectHandle{models.HandleByName("ok"), models.HandleByName("bad\xfe")}

	_, err := Marshal(rec)
	var encErr *EncodeError
	if !errors.As(err, &encErr) {
		t.Fatalf("expected EncodeError, got %v", err)
	}
	want := []string{"name", "members[1]"}
	if !reflect.DeepEqual(encErr.Keys(), want) {
		t.Fatalf("expected keys %v, got %v", want, encErr.Keys())
	}
	if !strings.Contains(err.Error(), `"a\xffb"`) {
		t.Fatalf("expected quoted raw value in %q", err.Error())
	}
}

func TestObjectMarshalJSONRejectsInvalidUTF8(t *testing.T) {
	for _, obj := range []Object{
		{{Key: "name", Value: "a\xffb"}},
		{{Key: "members", Value: []any{int64(1), "a\xffb"}}},
		{{Key: "creator", Value: Object{{Key: "email", Value: "a\xffb"}}}},
	} {
		_, err := json.Marshal(obj)
		var fieldErr *MalformedFieldError
		if !errors.As(err, &fieldErr) || !errors.Is(err, errInvalidUTF8) {
			t.Fatalf("expected invalid UTF-8 error for %v, got %v", obj, err)
		}
	}
}

func TestDecodeTruncatesRFC3339ToMillis(t *testing.T) {
	rec := mustDecode(t, []byte(`{"due_date": "2026-01-02T03:04:05.123456789Z"}`))
	want := time.Date(2026, 1, 2, 3, 4, 5, 123_000_000, time.UTC)
	if rec.DueDate == nil || !rec.DueDate.Equal(want) {
		t.Fatalf("expected %v, got %v", want, rec.DueDate)
	}
	if err := Validate(rec); err != nil {
		t.Fatalf("expected decoded record to validate, got %v", err)
	}
}

func mustMarshal(t *testing.T, rec *models.TaskRecord) []byte {
	t.Helper()
	data, err := Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

func TestEncodeKeyOrderFollowsNameTable(t *testing.T) {
	want := []string{
		"inc_name", "name", "regs", "custom", "inc_id", "inc_owner_id", "due_date",
		"required", "owner_id", "id", "status", "inc_training", "frozen",
		"owner_fname", "owner_lname", "cat_name", "description", "init_date",
		"src_name", "instr_text", "auto_task_id", "at_id", "active", "members",
		"perms", "creator", "notes", "closed_date", "actions", "phase_id",
		"category_id", "notes_count", "attachments_count",
	}
	got := Encode(sampleRecord()).Keys()
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected keys %v, got %v", want, got)
	}

	data, err := Marshal(sampleRecord())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.HasPrefix(string(data), `{"inc_name":"Lost laptop","name":"Notify regulator","regs":{`) {
		t.Fatalf("unexpected JSON prefix: %s", data[:80])
	}
}

func TestMembersAbsentVersusEmpty(t *testing.T) {
	rec := &models.TaskRecord{Members: []models.ObjectHandle{}}
	data, err := Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"members":[]`) {
		t.Fatalf("expected empty members array, got %s", data)
	}
	if got := mustDecode(t, data); got.Members == nil || len(got.Members) != 0 {
		t.Fatalf("expected non-nil empty members, got %#v", got.Members)
	}

	rec.Members = nil
	data, err = Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"members":null`) {
		t.Fatalf("expected null members, got %s", data)
	}
	if got := mustDecode(t, data); got.Members != nil {
		t.Fatalf("expected nil members, got %#v", got.Members)
	}

	if got := mustDecode(t, []byte(`{"id": 1}`)); got.Members != nil {
		t.Fatalf("expected missing members to decode as nil, got %#v", got.Members)
	}
}

func TestDecodeIgnoresUnknownKeys(t *testing.T) {
	rec := mustDecode(t, []byte(`{"id": 9, "name": "Triage", "x_future_field": {"nested": [1, 2]}}`))
	if rec.ID != 9 || rec.Name != "Triage" {
		t.Fatalf("unexpected record: %+v", rec)
	}

	keys, err := UnknownKeys([]byte(`{"id": 9, "zeta": 1, "alpha": true}`))
	if err != nil {
		t.Fatalf("unknown keys: %v", err)
	}
	if !reflect.DeepEqual(keys, []string{"alpha", "zeta"}) {
		t.Fatalf("expected sorted unknown keys, got %v", keys)
	}
}

func TestDecodeMissingOptionalKeys(t *testing.T) {
	rec := mustDecode(t, []byte(`{"id": 3, "status": "O"}`))
	if rec.DueDate != nil {
		t.Fatalf("expected absent due date, got %v", rec.DueDate)
	}
	if rec.Description != nil || rec.OwnerID != nil || rec.Creator != nil {
		t.Fatalf("expected absent optional fields, got %+v", rec)
	}

	rec = mustDecode(t, []byte(`{"due_date": null, "description": null}`))
	if rec.DueDate != nil || rec.Description != nil {
		t.Fatalf("expected explicit null to decode as absent, got %+v", rec)
	}
}

func TestDeprecatedAutoTaskIDCoexists(t *testing.T) {
	rec := mustDecode(t, []byte(`{"auto_task_id": 12, "at_id": "notify_ag"}`))
	if rec.DeprecatedAutoTaskID == nil || *rec.DeprecatedAutoTaskID != models.HandleByID(12) {
		t.Fatalf("expected deprecated auto task id 12, got %v", rec.DeprecatedAutoTaskID)
	}
	if rec.AutoTaskID == nil || *rec.AutoTaskID != models.HandleByName("notify_ag") {
		t.Fatalf("expected auto task id notify_ag, got %v", rec.AutoTaskID)
	}

	keys, err := DeprecatedKeys([]byte(`{"auto_task_id": 12, "at_id": "notify_ag", "src_name": ""}`))
	if err != nil {
		t.Fatalf("deprecated keys: %v", err)
	}
	if !reflect.DeepEqual(keys, []string{"auto_task_id"}) {
		t.Fatalf("expected only auto_task_id, got %v", keys)
	}
}

func TestDecodeTypeMismatch(t *testing.T) {
	rec, err := Decode([]byte(`{"id": "not-a-number"}`))
	if err == nil {
		t.Fatal("expected error")
	}
	var malformed *MalformedFieldError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedFieldError, got %T: %v", err, err)
	}
	if malformed.Key != "id" {
		t.Fatalf("expected key id, got %q", malformed.Key)
	}
	if malformed.Expected != "integer" {
		t.Fatalf("expected integer type, got %q", malformed.Expected)
	}
	if rec == nil || rec.ID != 0 {
		t.Fatalf("expected partial record with zero id, got %+v", rec)
	}
}

func TestDecodeContinuesPastMalformedFields(t *testing.T) {
	payload := `{
		"id": 1.5,
		"name": "Contain",
		"active": "yes",
		"creator": {"id": 4, "locked": 1, "fname": "Kim"},
		"members": [3, true, "team"],
		"notes": [{"id": 1, "text": 42}, "oops"],
		"due_date": "tomorrow",
		"owner_id": ""
	}`
	rec, err := Decode([]byte(payload))
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %T: %v", err, err)
	}

	wantKeys := []string{"id", "active", "owner_id", "due_date", "members[1]", "creator.locked", "notes[0].text", "notes[1]"}
	if got := decodeErr.Keys(); !sameElements(got, wantKeys) {
		t.Fatalf("expected malformed keys %v, got %v", wantKeys, got)
	}

	if rec.Name != "Contain" {
		t.Fatalf("expected sibling field to decode, got %q", rec.Name)
	}
	if rec.Creator == nil || rec.Creator.ID != 4 || rec.Creator.FirstName != "Kim" {
		t.Fatalf("expected creator siblings to decode, got %+v", rec.Creator)
	}
	want := []models.ObjectHandle{models.HandleByID(3), models.HandleByName("team")}
	if !reflect.DeepEqual(rec.Members, want) {
		t.Fatalf("expected members %v, got %v", want, rec.Members)
	}
	if len(rec.Notes) != 1 || rec.Notes[0].ID != 1 {
		t.Fatalf("expected one partially decoded note, got %+v", rec.Notes)
	}
	if !strings.Contains(err.Error(), "8 malformed fields") {
		t.Fatalf("expected aggregated message, got %q", err.Error())
	}
}

func TestDecodeRejectsNonObject(t *testing.T) {
	for _, payload := range []string{`[]`, `"task"`, `null`, ``, `42`} {
		if _, err := Decode([]byte(payload)); !errors.Is(err, ErrNotObject) {
			t.Fatalf("payload %q: expected ErrNotObject, got %v", payload, err)
		}
	}
	if _, err := Decode([]byte(`{"id": `)); err == nil || errors.Is(err, ErrNotObject) {
		t.Fatalf("expected syntax error, got %v", err)
	}
}

func TestTimestampForms(t *testing.T) {
	want := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rec := mustDecode(t, []byte(`{"due_date": 1767323045000, "init_date": "2026-01-02T04:04:05+01:00"}`))
	if rec.DueDate == nil || !rec.DueDate.Equal(want) {
		t.Fatalf("expected due date %v, got %v", want, rec.DueDate)
	}
	if !rec.ActivationDate.Equal(want) || rec.ActivationDate.Location() != time.UTC {
		t.Fatalf("expected UTC activation date %v, got %v", want, rec.ActivationDate)
	}

	encoded := Encode(rec)
	if v, _ := encoded.Get("due_date"); v != want.UnixMilli() {
		t.Fatalf("expected epoch millis, got %#v", v)
	}
	if v, _ := Encode(&models.TaskRecord{}).Get("init_date"); v != nil {
		t.Fatalf("expected zero activation date to encode as null, got %#v", v)
	}
}

func TestHandleForms(t *testing.T) {
	rec := mustDecode(t, []byte(`{"owner_id": 42, "phase_id": "Engage"}`))
	if *rec.OwnerID != models.HandleByID(42) {
		t.Fatalf("expected id handle, got %v", rec.OwnerID)
	}
	if *rec.PhaseID != models.HandleByName("Engage") {
		t.Fatalf("expected name handle, got %v", rec.PhaseID)
	}

	encoded := Encode(rec)
	if v, _ := encoded.Get("owner_id"); v != int64(42) {
		t.Fatalf("expected int64 handle, got %#v", v)
	}
	if v, _ := encoded.Get("phase_id"); v != "Engage" {
		t.Fatalf("expected string handle, got %#v", v)
	}
}

func TestStatusPassesThrough(t *testing.T) {
	rec := mustDecode(t, []byte(`{"status": "Q"}`))
	if rec.Status != "Q" {
		t.Fatalf("expected raw status, got %q", rec.Status)
	}
	if got := rec.UnknownEnumerations(); len(got) != 1 {
		t.Fatalf("expected unknown status to be reported, got %v", got)
	}
}

func TestEncodeWritableOmitsReadOnly(t *testing.T) {
	obj := EncodeWritable(sampleRecord())
	for _, key := range []string{"id", "inc_id", "required", "frozen", "inc_training", "owner_fname", "owner_lname", "cat_name", "init_date", "closed_date", "notes_count", "attachments_count"} {
		if _, ok := obj.Get(key); ok {
			t.Fatalf("expected read-only key %q to be omitted", key)
		}
	}
	for _, key := range []string{"name", "due_date", "owner_id", "members", "at_id", "auto_task_id"} {
		if _, ok := obj.Get(key); !ok {
			t.Fatalf("expected writable key %q to be present", key)
		}
	}
}

func TestFieldsCatalogue(t *testing.T) {
	fields := Fields()
	if len(fields) != 33 {
		t.Fatalf("expected 33 fields, got %d", len(fields))
	}
	info, ok := LookupField("auto_task_id")
	if !ok || !info.Deprecated || info.GoName != "DeprecatedAutoTaskID" {
		t.Fatalf("unexpected auto_task_id info: %+v", info)
	}
	info, ok = LookupField("id")
	if !ok || !info.ReadOnly || info.Type != "integer" {
		t.Fatalf("unexpected id info: %+v", info)
	}
	for _, f := range fields {
		if f.Description == "" {
			t.Fatalf("field %q has no description", f.Key)
		}
	}
	if _, ok := LookupField("nope"); ok {
		t.Fatal("expected unknown key lookup to fail")
	}
}

func TestObjectJSONMatchesStdlibValues(t *testing.T) {
	data, err := json.Marshal(Object{{Key: "b", Value: int64(1)}, {Key: "a", Value: []any{}}, {Key: "c", Value: nil}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"b":1,"a":[],"c":null}` {
		t.Fatalf("unexpected JSON %s", data)
	}
}

func sameElements(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(a))
	for _, v := range a {
		seen[v]++
	}
	for _, v := range b {
		seen[v]--
		if seen[v] < 0 {
			return false
		}
	}
	return true
}
