// Package db is the SQL persistence store for analyses and their source documents.
// The SQL that differs between engines lives in the sqlite, mysql and postgres subpackages.
package db

import (
	"strconv"
	"strings"
)

// Placeholder style used by a driver
type Placeholder int

const (
	Question Placeholder = iota // ?
	Dollar                      // $1, $2, ...
)

// Dialect describes one SQL engine
type Dialect struct {
	Name   string
	Driver string

	// Schema is executed one statement at a time; every statement must be idempotent.
	Schema []string

	// InsertDocument inserts (text_hash, content) and silently does nothing when the hash exists.
	InsertDocument string

	Placeholder Placeholder

	// Prepare runs before a connection is opened, e.g. to create the sqlite data directory.
	Prepare func(dsn string) error
}

func (d Dialect) rebind(q string) string {
	if d.Placeholder != Dollar {
		return q
	}
	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
