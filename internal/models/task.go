package models

import "time"

// TaskRecord represents one task belonging to an incident.
//
// Fields marked read-only are populated by the incident service and must not
// be modified by clients; update payloads should be built with
// codec.EncodeWritable, which leaves them out.
//
// Times held by a record are UTC with millisecond precision, the precision of
// the wire; codec.Marshal rejects any other time rather than altering it.
type TaskRecord struct {
	IncidentName string
	Name         string
	Regulators   *RegulatorInfo
	// Custom is true for tasks created manually on an incident.
	Custom          bool
	IncidentID      int64 // read-only
	IncidentOwnerID *ObjectHandle
	// DueDate is nil when the task has no assigned due date.
	DueDate          *time.Time
	Required         bool // read-only
	OwnerID          *ObjectHandle
	ID               int64 // read-only
	Status           TaskStatus
	TrainingIncident bool   // read-only
	Frozen           bool   // read-only; set while the incident is under legal hold
	OwnerFirstName   string // read-only
	OwnerLastName    string // read-only
	CategoryName     string // read-only
	Description      *string
	// ActivationDate is when the task was created or last reactivated.
	ActivationDate time.Time // read-only
	// Deprecated: retained for compatibility with older payloads.
	DeprecatedSourceName string
	// CustomInstructions overrides the default task instructions when set.
	CustomInstructions *string
	// Deprecated: use AutoTaskID.
	DeprecatedAutoTaskID *ObjectHandle
	AutoTaskID           *ObjectHandle
	Active               bool
	// Members is nil when the task is visible to all incident members. An
	// empty, non-nil slice restricts it to nobody beyond the owner.
	Members     []ObjectHandle
	Permissions *TaskPermissions
	Creator     *User
	Notes       []Comment
	ClosedDate  *time.Time // read-only
	Actions     []ActionInfo
	PhaseID     *ObjectHandle
	CategoryID  *ObjectHandle

	NotesCount       int64 // read-only
	AttachmentsCount int64 // read-only
}

// RegulatorInfo describes the regulators that triggered a task.
type RegulatorInfo struct {
	Regulators []Regulator
}

// Regulator is one regulator entry of RegulatorInfo.
type Regulator struct {
	ID   ObjectHandle
	Name string
}

// TaskPermissions describes what the caller may do with a task.
type TaskPermissions struct {
	Read              bool
	Write             bool
	Comment           bool
	Assign            bool
	Close             bool
	ChangeMembers     bool
	AttachFile        bool
	ReadAttachments   bool
	DeleteAttachments bool
}

// User identifies a user such as a task creator.
type User struct {
	ID          int64
	FirstName   string
	LastName    string
	DisplayName string
	Email       string
	Status      string
	Locked      bool
	External    bool
}

// Comment is a note attached to a task. Replies are kept in Children.
type Comment struct {
	ID            int64
	ParentID      *int64
	UserID        *ObjectHandle
	UserFirstName string
	UserLastName  string
	Text          string
	CreateDate    time.Time
	ModifyDate    time.Time
	Deleted       bool
	Children      []Comment
}

// ActionInfo describes an action the caller may execute on a task.
type ActionInfo struct {
	ID      int64
	Name    string
	Enabled bool
}

// IsClosed reports whether the task carries a closed status.
func (t *TaskRecord) IsClosed() bool {
	return t != nil && t.Status == StatusClosed
}

// VisibleToAllMembers reports whether task membership is unrestricted.
func (t *TaskRecord) VisibleToAllMembers() bool {
	return t != nil && t.Members == nil
}

// UnknownEnumerations reports enumerated fields holding codes this package
// does not recognize. The values are kept verbatim; the result is advisory.
func (t *TaskRecord) UnknownEnumerations() []*UnknownEnumerationValueError {
	if t == nil {
		return nil
	}
	var out []*UnknownEnumerationValueError
	if t.Status != "" && !IsKnownTaskStatus(t.Status) {
		out = append(out, &UnknownEnumerationValueError{Field: "status", Value: string(t.Status)})
	}
	return out
}
