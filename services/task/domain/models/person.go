package models

import "time"

// Person is someone items can be assigned to. Deleting a Person transitively
// deletes their assigned Items and those Items' tag links.
type Person struct {
	ID               int64
	Version          int64
	FirstName        string
	LastName         string
	CreatedDate      time.Time
	LastModifiedDate time.Time
}

func (p *Person) EntityID() int64      { return p.ID }
func (p *Person) EntityVersion() int64 { return p.Version }
