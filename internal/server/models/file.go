package models

import "time"

// File is an uploaded CSV document. Payload holds the raw bytes exactly
// as uploaded; listings leave it empty.
type File struct {
	ID         int64
	AccountID  int64
	FileName   string
	Payload    []byte
	UploadedAt time.Time
}

// SharedFile describes a file visible to a grantee.
type SharedFile struct {
	FileID        int64
	FileName      string
	UploadedAt    time.Time
	OwnerUserName string
	GrantedAt     time.Time
}
