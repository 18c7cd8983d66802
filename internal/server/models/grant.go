package models

import "time"

// ArtifactKind selects which grant relation an operation works on.
type ArtifactKind string

const (
	KindNote ArtifactKind = "note"
	KindFile ArtifactKind = "file"
)

// Grant is a read-only share of an artifact with a target account.
type Grant struct {
	ArtifactID     int64
	TargetID       int64
	TargetUserName string
	GrantedAt      time.Time
}
