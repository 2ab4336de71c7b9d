package reconcile

import (
	"sort"
	"strings"

	"github.com/konstantinfoerster/loco-importer-go/internal/android"
)

// Merge replaces entries of current with the entries of incoming.
//
// Without a selection every current entry is dropped except the ignored ones, and all incoming
// entries are added. An ignored entry that exists on both sides keeps its current version.
// With a selection only the selected names are replaced and ignored is not consulted. A
// selected name missing from incoming is removed.
//
// The result lists non-translatable entries first in their pre-merge order, followed by all
// other entries sorted by name. Comments are dropped.
func Merge(current, incoming *android.File, selected []string, ignored IDSet) *android.File {
	merged := &android.File{
		Prolog:    current.Prolog,
		RootAttrs: append([]android.Attr(nil), current.RootAttrs...),
		Indent:    current.Indent,
	}
	if incoming.Prolog != "" {
		merged.Prolog = incoming.Prolog
	}
	for _, a := range incoming.RootAttrs {
		if strings.HasPrefix(a.Name, "xmlns") && !hasAttr(merged.RootAttrs, a.Name) {
			merged.RootAttrs = append(merged.RootAttrs, a)
		}
	}

	var entries []*android.Entry
	if len(selected) == 0 {
		kept := IDSet{}
		for _, e := range current.Entries {
			if !e.IsComment() && ignored.Contains(e.Name) {
				entries = append(entries, e.Clone())
				kept.Add(e.Name)
			}
		}
		for _, e := range incoming.Entries {
			if !e.IsComment() && !kept.Contains(e.Name) {
				entries = append(entries, e.Clone())
			}
		}
	} else {
		sel := NewIDSet(selected...)
		for _, e := range current.Entries {
			if !e.IsComment() && !sel.Contains(e.Name) {
				entries = append(entries, e.Clone())
			}
		}
		for _, e := range incoming.Entries {
			if !e.IsComment() && sel.Contains(e.Name) {
				entries = append(entries, e.Clone())
			}
		}
	}

	merged.Entries = Order(entries)
	merged.EnsureNamespaces()

	return merged
}

// Order puts non-translatable entries first, keeping their relative order, followed by the
// remaining entries sorted by name.
func Order(entries []*android.Entry) []*android.Entry {
	pinned := make([]*android.Entry, 0, len(entries))
	sorted := make([]*android.Entry, 0, len(entries))
	for _, e := range entries {
		if e.Translatable {
			sorted = append(sorted, e)
		} else {
			pinned = append(pinned, e)
		}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	return append(pinned, sorted...)
}

func hasAttr(attrs []android.Attr, name string) bool {
	for _, a := range attrs {
		if a.Name == name {
			return true
		}
	}

	return false
}
