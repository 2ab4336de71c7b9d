// Package workflow registers a project in the translations validation CI workflow.
package workflow

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	githubDir = ".github"
	fileName  = "translations-validation.yml"

	settingsAnchor   = "cat <<EOF > settings.yml"
	projectsAnchor   = "projects:"
	validationAnchor = "- name: Run validation"
)

// Project describes the validation job added to the workflow.
type Project struct {
	Name string
	// Root of the project. It is written relative to the workflow repository.
	Root string
	// Command is the importer sub command validating the strings, app or core.
	Command string
}

// FindRoot returns the closest directory, starting at dir, that contains a .github directory.
func FindRoot(dir string) (string, bool) {
	current, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}

	for {
		if info, err := os.Stat(filepath.Join(current, githubDir)); err == nil && info.IsDir() {
			return current, true
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", false
		}
		current = parent
	}
}

// Register adds the project to the workflow file of the closest repository. Missing files or
// anchors are only logged, the workflow can be edited by hand.
func Register(p Project) error {
	root, ok := FindRoot(p.Root)
	if !ok {
		log.Warn().Msg("Could not update string validation CI workflow. Do it manually")

		return nil
	}

	path := filepath.Join(root, githubDir, "workflows", fileName)
	// #nosec G304 the workflow path is derived from the project root
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Warn().Str("file", path).Msg("Could not update string validation CI workflow. Do it manually")

			return nil
		}

		return errors.Wrapf(err, "failed to read %s", path)
	}

	rel, err := filepath.Rel(root, p.Root)
	if err != nil {
		return errors.Wrapf(err, "failed to resolve %s relative to %s", p.Root, root)
	}

	content, ok := InsertAfter(string(data), settingsBlock(p.Name, filepath.ToSlash(rel)), settingsAnchor, projectsAnchor)
	if !ok {
		log.Warn().Str("file", path).Msgf("Could not find '%s' followed by '%s'", settingsAnchor, projectsAnchor)
	}
	content, ok = InsertBefore(content, validationBlock(p), validationAnchor)
	if !ok {
		log.Warn().Str("file", path).Msgf("Could not find '%s'", validationAnchor)
	}

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	log.Info().Str("file", path).Str("project", p.Name).Msg("added project to the validation workflow")

	return nil
}

func settingsBlock(name, rel string) []string {
	return []string{
		"  " + name + ":",
		fmt.Sprintf(`    projectRoot: "${PR_PATH}/%s"`, rel),
	}
}

func validationBlock(p Project) []string {
	return []string{
		"- name: Run validation for " + p.Name,
		"  run: |",
		"    loco-importer --config settings.yml project " + p.Name,
		"    loco-importer --config settings.yml " + p.Command + " --check --verbose",
	}
}

// InsertAfter adds block after the line matching the last anchor. Anchors must match the trimmed
// start of consecutive lines. The block is indented like the matched line.
func InsertAfter(content string, block []string, anchors ...string) (string, bool) {
	lines := strings.SplitAfter(content, "\n")
	at := matchSequence(lines, anchors)
	if at < 0 {
		return content, false
	}

	head := append([]string(nil), lines[:at+1]...)
	if !strings.HasSuffix(head[at], "\n") {
		head[at] += "\n"
	}

	return join(head, indentBlock(block, indentOf(lines[at])), lines[at+1:]), true
}

// InsertBefore adds block in front of the first line starting with anchor, indented like it.
func InsertBefore(content string, block []string, anchor string) (string, bool) {
	lines := strings.SplitAfter(content, "\n")
	at := matchSequence(lines, []string{anchor})
	if at < 0 {
		return content, false
	}

	return join(lines[:at], indentBlock(block, indentOf(lines[at])), lines[at:]), true
}

// matchSequence returns the index of the last line of the first run of consecutive lines
// starting with the anchors.
func matchSequence(lines []string, anchors []string) int {
	if len(anchors) == 0 {
		return -1
	}

	for i := 0; i+len(anchors) <= len(lines); i++ {
		matched := true
		for j, anchor := range anchors {
			if !strings.HasPrefix(strings.TrimLeft(lines[i+j], " \t"), anchor) {
				matched = false

				break
			}
		}
		if matched {
			return i + len(anchors) - 1
		}
	}

	return -1
}

func indentOf(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}

func indentBlock(block []string, indent string) []string {
	out := make([]string, 0, len(block))
	for _, l := range block {
		out = append(out, indent+l+"\n")
	}

	return out
}

func join(before, block, after []string) string {
	var b strings.Builder
	for _, part := range [][]string{before, block, after} {
		for _, l := range part {
			b.WriteString(l)
		}
	}

	return b.String()
}
