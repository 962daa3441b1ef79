package repository

import (
	"errors"

	"github.com/mattn/go-sqlite3"

	"github.com/jask/datatable/internal/bus"
)

// Op is the kind of write a Change reports.
type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
	// OpReset reports that every table was emptied. Table and ID are blank.
	OpReset Op = "reset"
)

// Change is published after a successful write.
type Change struct {
	Table string
	ID    string
	Op    Op
}

// Events carries Change notifications. A nil *Events drops them.
type Events = bus.Bus[Change]

// NewEvents returns an empty change bus.
func NewEvents() *Events { return bus.New[Change]() }

func publish(ev *Events, table, id string, op Op) {
	if ev == nil {
		return
	}
	ev.Publish(Change{Table: table, ID: id, Op: op})
}

// IsUniqueViolation reports whether err is a sqlite UNIQUE or primary key
// constraint failure.
func IsUniqueViolation(err error) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}
