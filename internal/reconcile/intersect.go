package reconcile

import (
	"github.com/konstantinfoerster/loco-importer-go/internal/android"
)

const xmlDeclaration = `<?xml version="1.0" encoding="utf-8"?>` + "\n"

// Intersect keeps the names present in both files. Entries follow the baseline order and take
// their content from the feature file.
func Intersect(baseline, feature *android.File) *android.File {
	out := android.NewFile()
	out.Prolog = xmlDeclaration

	featureEntries := make(map[string]*android.Entry, len(feature.Entries))
	for _, e := range feature.Entries {
		if !e.IsComment() && e.Name != "" {
			featureEntries[e.Name] = e
		}
	}

	seen := IDSet{}
	for _, e := range baseline.Entries {
		if e.IsComment() || seen.Contains(e.Name) {
			continue
		}
		if f, ok := featureEntries[e.Name]; ok {
			out.Entries = append(out.Entries, f.Clone())
			seen.Add(e.Name)
		}
	}

	for _, attrs := range [][]android.Attr{baseline.RootAttrs, feature.RootAttrs} {
		for _, a := range attrs {
			if !hasAttr(out.RootAttrs, a.Name) {
				out.RootAttrs = append(out.RootAttrs, a)
			}
		}
	}
	out.EnsureNamespaces()

	return out
}
