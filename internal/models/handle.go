package models

import "strconv"

// ObjectHandle refers to another entity (user, incident, phase, category)
// either by numeric id or by API name, never both. Build one with HandleByID
// or HandleByName; the zero value is the id handle 0.
type ObjectHandle struct {
	id   int64
	name string
}

func HandleByID(id int64) ObjectHandle {
	return ObjectHandle{id: id}
}

// HandleByName returns a name handle. An empty name yields the id handle 0.
func HandleByName(name string) ObjectHandle {
	return ObjectHandle{name: name}
}

// IsName reports whether the handle refers to its entity by name.
func (h ObjectHandle) IsName() bool {
	return h.name != ""
}

// ID returns the numeric id; it is 0 for a name handle.
func (h ObjectHandle) ID() int64 {
	return h.id
}

// Name returns the API name; it is empty for an id handle.
func (h ObjectHandle) Name() string {
	return h.name
}

func (h ObjectHandle) String() string {
	if h.IsName() {
		return h.name
	}
	return strconv.FormatInt(h.id, 10)
}
