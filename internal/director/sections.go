package director

import (
	"fmt"
	"slices"
)

// The auxiliary section list is independent of the before and after
// sections, which are fixed at construction. Mutations never reload the
// widget and never move the data section.

// Append adds a section to the auxiliary list.
func (d *Director[T]) Append(s Section) *Director[T] {
	d.sections = append(d.sections, s)
	return d
}

// AppendSections adds several sections to the auxiliary list.
func (d *Director[T]) AppendSections(ss ...Section) *Director[T] {
	d.sections = append(d.sections, ss...)
	return d
}

// AppendRows wraps rows in a new auxiliary section.
func (d *Director[T]) AppendRows(rows ...Row) *Director[T] {
	return d.Append(NewSection(rows...))
}

// Insert places s at index, shifting later sections.
func (d *Director[T]) Insert(s Section, index int) *Director[T] {
	if index < 0 || index > len(d.sections) {
		panic(fmt.Sprintf("director: insert index %d out of range [0,%d]", index, len(d.sections)))
	}
	d.sections = slices.Insert(d.sections, index, s)
	return d
}

// Delete removes the section at index.
func (d *Director[T]) Delete(index int) *Director[T] {
	if index < 0 || index >= len(d.sections) {
		panic(fmt.Sprintf("director: delete index %d out of range [0,%d)", index, len(d.sections)))
	}
	d.sections = slices.Delete(d.sections, index, index+1)
	return d
}

// Clear empties the auxiliary list.
func (d *Director[T]) Clear() *Director[T] {
	d.sections = nil
	return d
}

func (d *Director[T]) IsEmpty() bool { return len(d.sections) == 0 }

// Sections returns a copy of the auxiliary list.
func (d *Director[T]) Sections() []Section { return slices.Clone(d.sections) }
