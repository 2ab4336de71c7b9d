package updater

import (
	"fmt"
	"io"

	"github.com/konstantinfoerster/loco-importer-go/internal/reconcile"
)

const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorBlue  = "\033[34m"
)

// LocaleDiff is the diff of one value folder.
type LocaleDiff struct {
	Locale string
	Diff   reconcile.IDDiff
}

type Result struct {
	// Diffs compare the local files with the remote before merging.
	Diffs []LocaleDiff
	// Remaining compare the local files with the remote after a merge of selected ids.
	Remaining []LocaleDiff
	// ErrorCount is the number of validation errors.
	ErrorCount int
	// CreatedFiles are the locale files that did not exist before the run.
	CreatedFiles []string
}

func (r *Result) Passed() bool {
	return r.ErrorCount == 0
}

type printer struct {
	out   io.Writer
	color bool
}

func (p printer) println(a ...any) {
	_, _ = fmt.Fprintln(p.out, a...)
}

func (p printer) printf(format string, a ...any) {
	_, _ = fmt.Fprintf(p.out, format, a...)
}

func (p printer) paint(n int, color string) string {
	if !p.color || n == 0 {
		return fmt.Sprint(n)
	}

	return color + fmt.Sprint(n) + colorReset
}

func (p printer) formatDiff(d reconcile.IDDiff) string {
	return fmt.Sprintf("To add: %s, to update: %s, to remove: %s",
		p.paint(d.Added, colorGreen), p.paint(d.Updated, colorBlue), p.paint(d.Removed, colorRed))
}

// diffReport prints one line when every locale has the same diff, one line per locale otherwise.
func (p printer) diffReport(diffs []LocaleDiff) {
	if len(diffs) == 0 {
		return
	}

	p.println()
	p.println("Status compared to the remote")

	allEqual := true
	for _, d := range diffs[1:] {
		if d.Diff != diffs[0].Diff {
			allEqual = false

			break
		}
	}

	if allEqual {
		p.println(p.formatDiff(diffs[0].Diff))

		return
	}
	for _, d := range diffs {
		p.printf("[%s]: %s\n", d.Locale, p.formatDiff(d.Diff))
	}
}

func (p printer) validationReport(errorCount int, verbose bool) {
	if errorCount == 0 {
		p.println("Found no error")

		return
	}

	suffix := ""
	if errorCount > 1 {
		suffix = "s"
	}
	p.printf("\nFound %d error%s\n", errorCount, suffix)

	if verbose {
		p.println()
		p.println("[verbose]")
		p.println("To fix this issue:")
		p.println("  • Correct the strings and re-import translations into the project.")
		p.println("  • If this is a false positive, add the string ID to loco.validation.exceptions in the " +
			"settings, then confirm with the project maintainers.")
	}
}
