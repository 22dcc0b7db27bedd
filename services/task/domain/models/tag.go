package models

import "time"

// Tag is a label that can be attached to any number of Items.
type Tag struct {
	ID               int64
	Version          int64
	Name             string
	CreatedDate      time.Time
	LastModifiedDate time.Time
}

func (t *Tag) EntityID() int64      { return t.ID }
func (t *Tag) EntityVersion() int64 { return t.Version }
