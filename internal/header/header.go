// Package header brings back a committed file header that a remote export replaced.
package header

import (
	"context"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Differ returns the zero context diff of an uncommitted file.
type Differ interface {
	Diff(ctx context.Context, path string) (string, error)
}

type state int

const (
	beforeHeader state = iota
	inRemovedHeader
	inAddedHeader
	ended
)

var hunkHeader = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// Restoration is the header change found at the top of a file.
type Restoration struct {
	// Offset is the number of unchanged lines in front of the change, e.g. a shared xml declaration.
	Offset int
	// Removed are the committed header lines.
	Removed []string
	// Added are the header lines that replaced them.
	Added []string
	// Unexpected is set when an added line does not look like an xml declaration or comment.
	Unexpected bool
}

func (r Restoration) Changed() bool {
	return len(r.Removed) > 0 || len(r.Added) > 0
}

// Apply replaces the added lines found at Offset with the removed lines. It reports false when
// content does not carry the added lines there.
func (r Restoration) Apply(content string) (string, bool) {
	lines := strings.SplitAfter(content, "\n")
	if len(lines) < r.Offset+len(r.Added) {
		return content, false
	}
	for i, added := range r.Added {
		if strings.TrimSuffix(lines[r.Offset+i], "\n") != added {
			return content, false
		}
	}

	var b strings.Builder
	b.WriteString(strings.Join(lines[:r.Offset], ""))
	for _, removed := range r.Removed {
		b.WriteString(removed)
		b.WriteString("\n")
	}
	b.WriteString(strings.Join(lines[r.Offset+len(r.Added):], ""))

	return b.String(), true
}

// inProlog reports whether the unchanged lines in front of the change all belong to the prolog.
func (r Restoration) inProlog(content string) bool {
	lines := strings.SplitAfter(content, "\n")
	if len(lines) < r.Offset {
		return false
	}

	inComment := false
	for _, line := range lines[:r.Offset] {
		var ok bool
		ok, inComment = prologLine(strings.TrimSuffix(line, "\n"), inComment)
		if !ok {
			return false
		}
	}

	return true
}

// Walker reads a diff from the top and collects the header lines of the first hunk.
type Walker struct {
	// indent of the entries. An added line starting with indent followed by "<" is content.
	indent string
}

func NewWalker(indent string) *Walker {
	return &Walker{indent: indent}
}

// Walk only considers the first hunk. Everything after it is content.
func (w *Walker) Walk(diff string) Restoration {
	var r Restoration

	lines := strings.Split(diff, "\n")
	start := -1
	for i, line := range lines {
		if strings.HasPrefix(line, "@@") {
			start = i
			break
		}
	}
	if start < 0 {
		return r
	}
	offset, ok := unchangedPrefix(lines[start])
	if !ok {
		// a first hunk with different positions on both sides can't be mapped back
		r.Unexpected = true

		return r
	}
	r.Offset = offset

	st := beforeHeader
	collectRemoved := true
	inComment := false
	for _, line := range lines[start+1:] {
		if st == ended {
			break
		}

		kind, text := classify(line)
		switch {
		case kind == '-' && (st == beforeHeader || st == inRemovedHeader):
			st = inRemovedHeader
			if w.isContent(text) {
				collectRemoved = false
			}
			if collectRemoved {
				r.Removed = append(r.Removed, text)
			}
		case kind == '+':
			st = inAddedHeader
			if w.isContent(text) {
				st = ended

				continue
			}
			var ok bool
			ok, inComment = prologLine(text, inComment)
			if !ok {
				r.Unexpected = true
			}
			r.Added = append(r.Added, text)
		default:
			st = ended
		}
	}

	return r
}

func (w *Walker) isContent(line string) bool {
	return strings.HasPrefix(line, w.indent+"<") || strings.HasPrefix(strings.TrimSpace(line), "<resources")
}

func classify(line string) (byte, string) {
	if line == "" {
		return 0, ""
	}

	return line[0], line[1:]
}

// unchangedPrefix returns the number of lines in front of the first hunk. Both sides of the
// first hunk share these lines. A zero length range starts after the given line.
func unchangedPrefix(hunk string) (int, bool) {
	m := hunkHeader.FindStringSubmatch(hunk)
	if m == nil {
		return 0, false
	}

	oldPrefix, err := prefixOf(m[1], m[2])
	if err != nil {
		return 0, false
	}
	newPrefix, err := prefixOf(m[3], m[4])
	if err != nil {
		return 0, false
	}
	if oldPrefix != newPrefix {
		return 0, false
	}

	return oldPrefix, true
}

func prefixOf(start, length string) (int, error) {
	s, err := strconv.Atoi(start)
	if err != nil {
		return 0, err
	}
	if length == "0" {
		return s, nil
	}

	return max(s-1, 0), nil
}

// prologLine reports whether a line can be part of a file prolog and whether a comment is still
// open after it.
func prologLine(line string, inComment bool) (bool, bool) {
	trimmed := strings.TrimSpace(line)
	if inComment {
		return true, !strings.Contains(trimmed, "-->")
	}

	switch {
	case trimmed == "":
		return true, false
	case strings.HasPrefix(trimmed, "<?xml"):
		return true, false
	case strings.HasPrefix(trimmed, "<!--"):
		return true, !strings.Contains(trimmed[4:], "-->")
	default:
		return false, false
	}
}

// Restore puts the committed header back into the file at path.
func Restore(ctx context.Context, d Differ, path, indent string) (Restoration, error) {
	diff, err := d.Diff(ctx, path)
	if err != nil {
		return Restoration{}, err
	}

	r := NewWalker(indent).Walk(diff)
	if !r.Changed() {
		return r, nil
	}

	// #nosec G304 path is a resource file of the configured project
	content, err := os.ReadFile(path)
	if err != nil {
		return r, errors.Wrapf(err, "failed to read %s", path)
	}
	if !r.inProlog(string(content)) {
		// the first change is below the header
		return Restoration{}, nil
	}

	restored, ok := r.Apply(string(content))
	if !ok {
		r.Unexpected = true

		return r, nil
	}

	if err := os.WriteFile(path, []byte(restored), 0600); err != nil {
		return r, errors.Wrapf(err, "failed to write %s", path)
	}

	return r, nil
}
