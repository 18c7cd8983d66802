package models

import "time"

// Note is a piece of text owned by exactly one account.
type Note struct {
	ID        int64
	AccountID int64
	Content   string
	CreatedAt time.Time
}

// SharedNote is a note visible to a grantee, with its owner's name.
type SharedNote struct {
	NoteID        int64
	Content       string
	CreatedAt     time.Time
	OwnerUserName string
	GrantedAt     time.Time
}
