package models

import "time"

// ItemStatus is the workflow state of an Item.
type ItemStatus string

const (
	StatusTodo       ItemStatus = "TODO"
	StatusInProgress ItemStatus = "IN_PROGRESS"
	StatusDone       ItemStatus = "DONE"
)

// Valid reports whether s is one of the known status values.
func (s ItemStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Item is a unit of work, optionally assigned to a Person and labelled with
// Tags. Tag links are persisted as explicit item_tag join rows; the Tags and
// Assignee fields are loaded relations, never written directly.
type Item struct {
	ID          int64
	Version     int64
	Description string
	Status      ItemStatus
	AssigneeID  *int64

	// Loaded relations. Assignee is nil when AssigneeID is nil; Tags is
	// sorted by tag name when populated.
	Assignee *Person
	Tags     []Tag

	CreatedDate      time.Time
	LastModifiedDate time.Time
}

func (i *Item) EntityID() int64      { return i.ID }
func (i *Item) EntityVersion() int64 { return i.Version }

// TagIDs returns the ids of the loaded Tags relation. A nil Tags slice yields
// an empty set, meaning "no tags desired" on update.
func (i *Item) TagIDs() []int64 {
	ids := make([]int64, 0, len(i.Tags))
	for _, t := range i.Tags {
		ids = append(ids, t.ID)
	}
	return ids
}
