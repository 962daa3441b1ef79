package livequery

import "github.com/jask/datatable/internal/director"

type located[T any] struct {
	obj  T
	path director.IndexPath
}

func index[T any](groups []group[T], key func(T) string) map[string]located[T] {
	m := make(map[string]located[T])
	for g, grp := range groups {
		for r, it := range grp.items {
			m[key(it)] = located[T]{obj: it, path: director.IndexPath{Section: g, Row: r}}
		}
	}
	return m
}

// diff describes how to get from old to next. Deletes carry old paths,
// inserts new paths. An object whose path changed is a move; one that
// stayed put but differs is an update.
func diff[T any](old, next []group[T], key func(T) string, equal func(a, b T) bool) changeSet {
	var cs changeSet

	oldNames := make(map[string]bool, len(old))
	for _, g := range old {
		oldNames[g.name] = true
	}
	nextNames := make(map[string]bool, len(next))
	for _, g := range next {
		nextNames[g.name] = true
	}
	for i, g := range old {
		if !nextNames[g.name] {
			cs.sections = append(cs.sections, director.SectionChange{Index: i, Name: g.name, Type: director.ChangeDelete})
		}
	}
	for i, g := range next {
		if !oldNames[g.name] {
			cs.sections = append(cs.sections, director.SectionChange{Index: i, Name: g.name, Type: director.ChangeInsert})
		}
	}

	before := index(old, key)
	after := index(next, key)
	for g, grp := range old {
		for r, it := range grp.items {
			if _, ok := after[key(it)]; !ok {
				cs.objects = append(cs.objects, director.ObjectChange{
					Object: it,
					Type:   director.ChangeDelete,
					From:   director.IndexPath{Section: g, Row: r},
				})
			}
		}
	}
	for g, grp := range next {
		for r, it := range grp.items {
			to := director.IndexPath{Section: g, Row: r}
			prev, ok := before[key(it)]
			switch {
			case !ok:
				cs.objects = append(cs.objects, director.ObjectChange{Object: it, Type: director.ChangeInsert, To: to})
			case prev.path != to:
				cs.objects = append(cs.objects, director.ObjectChange{Object: it, Type: director.ChangeMove, From: prev.path, To: to})
			case !equal(prev.obj, it):
				cs.objects = append(cs.objects, director.ObjectChange{Object: it, Type: director.ChangeUpdate, From: prev.path, To: to})
			}
		}
	}
	return cs
}
