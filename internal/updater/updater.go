// Package updater imports remote strings into a project and validates them.
package updater

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/konstantinfoerster/loco-importer-go/internal/android"
	"github.com/konstantinfoerster/loco-importer-go/internal/header"
	"github.com/konstantinfoerster/loco-importer-go/internal/loco"
	"github.com/konstantinfoerster/loco-importer-go/internal/reconcile"
	"github.com/konstantinfoerster/loco-importer-go/internal/validation"
	"github.com/konstantinfoerster/loco-importer-go/internal/workflow"
	"github.com/rs/zerolog/log"
)

var ErrValidation = errors.New("validation failed")

// Fetcher provides the res folder of the remote strings.
type Fetcher interface {
	Download(ctx context.Context, key, featureTag string) (loco.Downloads, error)
	Extract(d loco.Downloads) (string, error)
	Cleanup() error
}

// Repo gives access to the version control of the project.
type Repo interface {
	header.Differ
	Restore(ctx context.Context, path string) error
	IsTracked(ctx context.Context, path string) bool
}

type Settings struct {
	ValueFolders []string
	IgnoredIDs   []string
	Indent       string
	// Color enables ANSI colors in the diff report.
	Color bool
}

type Options struct {
	// TargetIDs restrict the merge to these names. Empty means a full sync.
	TargetIDs  []string
	FeatureTag string
	// CheckOnly skips the download and only validates the local files.
	CheckOnly bool
	Verbose   bool
}

type Updater struct {
	settings  Settings
	ignored   reconcile.IDSet
	fetcher   Fetcher
	repo      Repo
	validator *validation.Validator
	out       printer
	state     State
}

func New(s Settings, fetcher Fetcher, repo Repo, validator *validation.Validator, out io.Writer) *Updater {
	if s.Indent == "" {
		s.Indent = android.DefaultIndent
	}

	return &Updater{
		settings:  s,
		ignored:   reconcile.NewIDSet(s.IgnoredIDs...),
		fetcher:   fetcher,
		repo:      repo,
		validator: validator,
		out:       printer{out: out, color: s.Color},
		state:     Idle,
	}
}

func (u *Updater) State() State {
	return u.state
}

func (u *Updater) transition(to State) {
	log.Debug().Stringer("from", u.state).Stringer("to", to).Msg("state changed")
	u.state = to
}

// Run imports the strings of the strategy unless only a check is requested, then validates the
// local files. A failed download stops the run before any local file is touched. Validation
// errors are returned as ErrValidation together with the result.
func (u *Updater) Run(ctx context.Context, s loco.UpdateStrategy, opts Options) (*Result, error) {
	result := &Result{}
	defer u.transition(Done)

	if !opts.CheckOnly {
		if err := u.update(ctx, s, opts, result); err != nil {
			return result, err
		}
		u.out.println()
	}

	u.transition(Validating)
	u.out.println("Searching for errors in imported strings")
	count, err := u.validator.ValidateTree(s.TargetFolder, u.settings.ValueFolders)
	result.ErrorCount = count
	if err != nil {
		return result, err
	}

	u.out.validationReport(count, opts.Verbose)
	if !result.Passed() {
		return result, fmt.Errorf("%w: found %d errors", ErrValidation, count)
	}

	return result, nil
}

func (u *Updater) update(ctx context.Context, s loco.UpdateStrategy, opts Options, result *Result) error {
	u.transition(Fetching)
	downloads, err := u.fetcher.Download(ctx, s.APIKey, opts.FeatureTag)
	if err != nil {
		return err
	}
	defer func() {
		if err := u.fetcher.Cleanup(); err != nil {
			log.Warn().Err(err).Msg("failed to delete downloaded strings")
		}
	}()

	u.transition(Extracting)
	remoteRes, err := u.fetcher.Extract(downloads)
	if err != nil {
		return err
	}

	u.transition(Merging)
	targets := make([]string, 0, len(u.settings.ValueFolders))
	for _, folder := range u.settings.ValueFolders {
		locale, err := android.LocaleOf(folder)
		if err != nil {
			return err
		}

		target := android.Path(s.TargetFolder, folder)
		diff, created, err := u.mergeLocale(ctx, target, android.Path(remoteRes, folder), opts.TargetIDs)
		if err != nil {
			return fmt.Errorf("failed to update %s strings: %w", locale, err)
		}

		result.Diffs = append(result.Diffs, LocaleDiff{Locale: locale.Acronym(), Diff: diff})
		if created {
			result.CreatedFiles = append(result.CreatedFiles, target)
		}
		targets = append(targets, target)
	}

	u.transition(RestoringHeaders)
	for _, target := range targets {
		r, err := header.Restore(ctx, u.repo, target, u.settings.Indent)
		if err != nil {
			return err
		}
		if r.Unexpected {
			log.Warn().Str("file", target).
				Msg("When trying to bring back the previous header, an unexpected diff with added lines has been detected")
		}
	}

	if len(result.CreatedFiles) > 0 {
		err := workflow.Register(workflow.Project{Name: s.Project, Root: s.RepoDir, Command: string(s.Module)})
		if err != nil {
			log.Warn().Err(err).Msg("Could not update string validation CI workflow. Do it manually")
		}
	}
	log.Info().Str("project", s.Name()).Msg("String resources updated")

	if len(opts.TargetIDs) > 0 {
		u.transition(DiffReporting)
		remaining, err := u.remaining(s.TargetFolder, remoteRes)
		if err != nil {
			return err
		}
		result.Remaining = remaining
		u.out.diffReport(remaining)
	}

	return nil
}

// mergeLocale resets the local file to its committed state, or creates it, and merges the
// remote file into it. The returned diff compares the local file with the remote before merging.
func (u *Updater) mergeLocale(ctx context.Context, target, remote string, ids []string) (reconcile.IDDiff, bool, error) {
	created := false
	if _, err := os.Stat(target); err == nil {
		if u.repo.IsTracked(ctx, target) {
			if err := u.repo.Restore(ctx, target); err != nil {
				return reconcile.IDDiff{}, false, err
			}
		}
	} else if errors.Is(err, os.ErrNotExist) {
		if err := createEmpty(target); err != nil {
			return reconcile.IDDiff{}, false, err
		}
		created = true
	} else {
		return reconcile.IDDiff{}, false, err
	}

	current, err := android.ParseFile(target)
	if err != nil {
		return reconcile.IDDiff{}, created, err
	}
	incoming, err := android.ParseFile(remote)
	if err != nil {
		return reconcile.IDDiff{}, created, err
	}

	diff := reconcile.Diff(current, incoming, u.ignored)
	merged := reconcile.Merge(current, incoming, ids, u.ignored)
	merged.Indent = u.settings.Indent
	if err := merged.WriteFile(target); err != nil {
		return diff, created, err
	}

	return diff, created, nil
}

func (u *Updater) remaining(localRes, remoteRes string) ([]LocaleDiff, error) {
	diffs := make([]LocaleDiff, 0, len(u.settings.ValueFolders))
	for _, folder := range u.settings.ValueFolders {
		locale, err := android.LocaleOf(folder)
		if err != nil {
			return nil, err
		}

		local, err := android.ParseFile(android.Path(localRes, folder))
		if err != nil {
			return nil, err
		}
		remote, err := android.ParseFile(android.Path(remoteRes, folder))
		if err != nil {
			return nil, err
		}

		diffs = append(diffs, LocaleDiff{Locale: locale.Acronym(), Diff: reconcile.Diff(local, remote, u.ignored)})
	}

	return diffs, nil
}

func createEmpty(path string) error {
	return android.NewFile().WriteFile(path)
}
