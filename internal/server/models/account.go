// Package models defines server-side data models persisted in the database.
package models

import "time"

type Account struct {
	ID        int64
	UserName  string
	Secret    string
	CreatedAt time.Time
}
