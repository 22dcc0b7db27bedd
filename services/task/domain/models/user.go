package models

import "time"

// User mirrors an account from the external identity provider. UserID is the
// provider's uuid and is immutable after creation; synchronization with the
// provider itself is out of scope — users are managed through the same
// versioned CRUD surface as every other entity.
type User struct {
	ID               int64
	Version          int64
	UserID           string
	Email            string
	FirstName        string
	LastName         string
	CreatedDate      time.Time
	LastModifiedDate time.Time
}

func (u *User) EntityID() int64      { return u.ID }
func (u *User) EntityVersion() int64 { return u.Version }
