package director

import "context"

// Group is one section of a query result.
type Group struct {
	Name  string
	Count int
}

// ChangeType classifies a granular result change.
type ChangeType int

const (
	ChangeInsert ChangeType = iota + 1
	ChangeDelete
	ChangeMove
	ChangeUpdate
)

func (c ChangeType) String() string {
	switch c {
	case ChangeInsert:
		return "insert"
	case ChangeDelete:
		return "delete"
	case ChangeMove:
		return "move"
	case ChangeUpdate:
		return "update"
	default:
		return "unknown"
	}
}

// SectionChange reports a group appearing or disappearing.
type SectionChange struct {
	Index int
	Name  string
	Type  ChangeType
}

// ObjectChange reports a single object change. From is meaningful for
// delete, move and update; To for insert, move and update.
type ObjectChange struct {
	Object any
	Type   ChangeType
	From   IndexPath
	To     IndexPath
}

// Observer receives change notifications from a Query, possibly on a
// goroutine other than the caller's.
type Observer interface {
	WillChangeContent()
	DidChangeSection(change SectionChange)
	DidChangeObject(change ObjectChange)
	DidChangeContent()
}

// Query is a filterable, observable result set.
type Query interface {
	SetFilter(expr string) error
	// Perform executes the query synchronously.
	Perform(ctx context.Context) error
	Groups() []Group
	// Object returns the object at (group, row), or nil.
	Object(path IndexPath) any
	// SetObserver installs the sole observer. nil releases the current one.
	SetObserver(o Observer)
}
