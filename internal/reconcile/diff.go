// Package reconcile compares and merges Android resource files by entry name.
package reconcile

import (
	"fmt"
	"sort"

	"github.com/konstantinfoerster/loco-importer-go/internal/android"
)

// IDSet is a set of entry names.
type IDSet map[string]struct{}

func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s.Add(id)
	}

	return s
}

func (s IDSet) Add(id string) {
	s[id] = struct{}{}
}

// Contains is safe to call on a nil set.
func (s IDSet) Contains(id string) bool {
	_, ok := s[id]

	return ok
}

// Sorted returns the names in ascending order.
func (s IDSet) Sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids
}

// IDDiff counts the names that differ between two versions of a resource file.
type IDDiff struct {
	Added   int
	Removed int
	Updated int
}

func (d IDDiff) HasChanges() bool {
	return d.Added > 0 || d.Removed > 0 || d.Updated > 0
}

func (d IDDiff) String() string {
	return fmt.Sprintf("To add: %d, to update: %d, to remove: %d", d.Added, d.Updated, d.Removed)
}

// Changeset lists the names behind an IDDiff.
type Changeset struct {
	Added   IDSet
	Removed IDSet
	Updated IDSet
}

func NewChangeset() Changeset {
	return Changeset{
		Added:   IDSet{},
		Removed: IDSet{},
		Updated: IDSet{},
	}
}

func (c Changeset) HasChanges() bool {
	return c.Count().HasChanges()
}

func (c Changeset) Count() IDDiff {
	return IDDiff{Added: len(c.Added), Removed: len(c.Removed), Updated: len(c.Updated)}
}

// Changes compares both files by entry name. Names in ignored are never reported.
func Changes(before, after *android.File, ignored IDSet) Changeset {
	beforeTexts := texts(before, ignored)
	afterTexts := texts(after, ignored)

	c := NewChangeset()
	for name, afterText := range afterTexts {
		beforeText, ok := beforeTexts[name]
		switch {
		case !ok:
			c.Added.Add(name)
		case beforeText != afterText:
			c.Updated.Add(name)
		}
	}
	for name := range beforeTexts {
		if _, ok := afterTexts[name]; !ok {
			c.Removed.Add(name)
		}
	}

	return c
}

func Diff(before, after *android.File, ignored IDSet) IDDiff {
	return Changes(before, after, ignored).Count()
}

// texts maps each name to its comparison text. The last entry wins on duplicate names.
func texts(f *android.File, ignored IDSet) map[string]string {
	m := make(map[string]string, len(f.Entries))
	for _, e := range f.Entries {
		if e.IsComment() || e.Name == "" || ignored.Contains(e.Name) {
			continue
		}
		m[e.Name] = e.Text()
	}

	return m
}
