// Package git runs the few git commands needed to inspect and reset resource files.
package git

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Repo executes git inside Dir. Paths may be absolute or relative to Dir.
type Repo struct {
	Dir string
}

func NewRepo(dir string) *Repo {
	return &Repo{Dir: dir}
}

// Diff returns the uncommitted change of a single file with zero context lines.
func (r *Repo) Diff(ctx context.Context, path string) (string, error) {
	out, err := r.run(ctx, "diff", "--no-color", "-U0", "--", path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to diff %s", path)
	}

	return out, nil
}

// Restore discards all uncommitted changes of the file.
func (r *Repo) Restore(ctx context.Context, path string) error {
	if _, err := r.run(ctx, "restore", "--", path); err != nil {
		return errors.Wrapf(err, "failed to restore %s", path)
	}

	return nil
}

// IsTracked reports whether the file is known to git.
func (r *Repo) IsTracked(ctx context.Context, path string) bool {
	_, err := r.run(ctx, "ls-files", "--error-unmatch", "--", path)

	return err == nil
}

func (r *Repo) run(ctx context.Context, args ...string) (string, error) {
	// #nosec G204 the arguments are fixed subcommands and file paths
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Debug().Strs("args", args).Str("dir", r.Dir).Msg("running git")
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", errors.Wrap(err, msg)
		}

		return "", errors.WithStack(err)
	}

	return stdout.String(), nil
}
