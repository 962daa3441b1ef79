package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// TagRepo handles tags.
type TagRepo struct {
	db     *sql.DB
	events *Events
}

func NewTagRepo(db *sql.DB, events *Events) *TagRepo { return &TagRepo{db: db, events: events} }

func (r *TagRepo) Upsert(ctx context.Context, t Tag) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO tags(id, name) VALUES (?, ?)
	ON CONFLICT(id) DO UPDATE SET name=excluded.name;
	`, t.ID, t.Name)
	if err != nil {
		return err
	}
	publish(r.events, "tags", t.ID, OpUpdate)
	return nil
}

// Ensure returns the tag called name, creating it with a name-derived ID
// when missing.
func (r *TagRepo) Ensure(ctx context.Context, name string) (Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Tag{}, errors.New("tag name required")
	}
	existing, err := r.ByName(ctx, name)
	if err != nil {
		return Tag{}, err
	}
	if existing != nil {
		return *existing, nil
	}
	t := Tag{ID: uuid.NewSHA1(uuid.NameSpaceOID, []byte("tag:"+strings.ToLower(name))).String(), Name: name}
	if err := r.Upsert(ctx, t); err != nil {
		return Tag{}, err
	}
	return t, nil
}

func (r *TagRepo) ByName(ctx context.Context, name string) (*Tag, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name FROM tags WHERE name = ?`, name)
	var t Tag
	if err := row.Scan(&t.ID, &t.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *TagRepo) List(ctx context.Context) ([]Tag, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM tags ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
