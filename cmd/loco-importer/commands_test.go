package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const settings = `
logging:
  level: warn
defaultProject: mail
projects:
  mail:
    projectRoot: ./mail
  calendar:
    projectRoot: ./calendar
`

func execute(t *testing.T, args ...string) string {
	t.Helper()

	out := &bytes.Buffer{}
	root := newRootCmd(out)
	root.SetArgs(args)
	require.NoError(t, root.ExecuteContext(context.Background()))

	return out.String()
}

func TestProjectCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(settings), 0600))

	assert.Equal(t, "  calendar\n* mail\n", execute(t, "--config", path, "project"))

	assert.Equal(t, "Selected project calendar\n", execute(t, "--config", path, "project", "calendar"))
	assert.Equal(t, "* calendar\n  mail\n", execute(t, "--config", path, "project"))
}

func TestProjectCommandUnknownProject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(settings), 0600))

	root := newRootCmd(&bytes.Buffer{})
	root.SetArgs([]string{"--config", path, "project", "unknown"})

	assert.ErrorContains(t, root.ExecuteContext(context.Background()), "unknown project: unknown")
}

func TestVersionCommandNeedsNoConfig(t *testing.T) {
	out := execute(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "version")

	assert.Contains(t, out, "loco-importer version dev")
}
