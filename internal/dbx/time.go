package dbx

import (
	"database/sql"
	"fmt"
	"time"
)

var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

type timeScanner struct {
	dst *time.Time
}

// ScanTime returns an sql.Scanner that stores a timestamp column into dst.
// SQLite may hand back TEXT for DATETIME columns; PostgreSQL returns
// time.Time. Both end up as UTC.
func ScanTime(dst *time.Time) sql.Scanner {
	return &timeScanner{dst: dst}
}

func (s *timeScanner) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s.dst = time.Time{}
		return nil
	case time.Time:
		*s.dst = v.UTC()
		return nil
	case string:
		return s.parse(v)
	case []byte:
		return s.parse(string(v))
	case int64:
		*s.dst = time.Unix(v, 0).UTC()
		return nil
	}
	return fmt.Errorf("cannot scan %T into time.Time", src)
}

func (s *timeScanner) parse(v string) error {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			*s.dst = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("cannot parse %q as time", v)
}
