package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/konstantinfoerster/loco-importer-go/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const settings = `
logging:
  level: DEBUG
loco:
  baseUrl: http://localhost/api/
  scratchDir: /tmp/loco
  ignoredIds: [appName]
  client:
    timeout: 5s
  validation:
    forbiddenSequences: ["...", "TODO"]
global:
  coreKey: core-secret
projects:
  mail:
    projectRoot: /src/mail
    locoKey: mail-secret
  drive:
    projectRoot: /src/drive
    tag: upload
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	return path
}

func TestLoad(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, settings))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.LevelOrDefault())
	assert.Equal(t, "http://localhost/api", cfg.Loco.BaseURLOrDefault())
	assert.Equal(t, "/tmp/loco", cfg.Loco.ScratchDirOrDefault())
	assert.Equal(t, []string{"appName"}, cfg.Loco.IgnoredIDsOrDefault())
	assert.Equal(t, 5*time.Second, cfg.Loco.Client.Timeout)
	assert.Equal(t, []string{"...", "TODO"}, cfg.Loco.Validation.ForbiddenSequencesOrDefault())
	assert.Equal(t, "core-secret", cfg.Global.CoreKey)
	assert.Equal(t, []string{"drive", "mail"}, cfg.ProjectNames())

	p, err := cfg.Project("drive")
	require.NoError(t, err)
	assert.Equal(t, config.Project{ProjectRoot: "/src/drive", Tag: "upload"}, p)
}

func TestLoadFails(t *testing.T) {
	cases := []struct {
		name    string
		path    func(t *testing.T) string
		errPart string
	}{
		{
			name:    "missing file",
			path:    func(t *testing.T) string { return filepath.Join(t.TempDir(), "missing.yaml") },
			errPart: "no such file",
		},
		{
			name:    "directory",
			path:    func(t *testing.T) string { return t.TempDir() },
			errPart: "is a directory",
		},
		{
			name:    "invalid yaml",
			path:    func(t *testing.T) string { return writeConfig(t, "projects: [") },
			errPart: "unmarshal failed",
		},
		{
			name:    "project without root",
			path:    func(t *testing.T) string { return writeConfig(t, "projects:\n  mail:\n    locoKey: a\n") },
			errPart: "mail > global > projectRoot",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := config.Load(tc.path(t))

			require.ErrorContains(t, err, tc.errPart)
		})
	}
}

func TestDefaults(t *testing.T) {
	cfg := config.Config{}

	assert.Equal(t, "info", cfg.Logging.LevelOrDefault())
	assert.Equal(t, "https://localise.biz/api", cfg.Loco.BaseURLOrDefault())
	assert.Equal(t, "android", cfg.Loco.BaseTagOrDefault())
	assert.Equal(t, "    ", cfg.Loco.IndentOrDefault())
	assert.Equal(t, filepath.Join(os.TempDir(), "ink_archive"), cfg.Loco.ScratchDirOrDefault())
	assert.Equal(t, []string{"values", "values-de", "values-es", "values-fr", "values-it"},
		cfg.Loco.ValueFoldersOrDefault())
	assert.Equal(t, []string{"..."}, cfg.Loco.Validation.ForbiddenSequencesOrDefault())
	assert.Equal(t, []string{
		"appName",
		"notification_channel_id_draft_service",
		"notification_channel_id_general",
		"notification_channel_id_sync_messages_service",
		"matomo",
		"sentry",
		"notifications_upload_channel_id",
	}, cfg.Loco.IgnoredIDsOrDefault())
}

func TestEmptyIgnoredIDsProtectNothing(t *testing.T) {
	l := config.Loco{IgnoredIDs: []string{}}

	assert.Empty(t, l.IgnoredIDsOrDefault())
}

func TestProjectSelection(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, settings))
	require.NoError(t, err)

	_, err = cfg.CurrentProject()
	require.ErrorIs(t, err, config.ErrMissingSetting)

	require.NoError(t, cfg.SelectProject("drive"))
	current, err := cfg.CurrentProject()
	require.NoError(t, err)
	assert.Equal(t, "drive", current)

	err = cfg.SelectProject("unknown")
	require.ErrorIs(t, err, config.ErrUnknownProject)
}

func TestCurrentProjectFallbacks(t *testing.T) {
	cases := []struct {
		name    string
		cfg     config.Config
		want    string
		wantErr error
	}{
		{
			name: "default project",
			cfg: config.Config{
				DefaultProject: "b",
				Projects:       map[string]config.Project{"a": {}, "b": {}},
			},
			want: "b",
		},
		{
			name: "single project",
			cfg:  config.Config{Projects: map[string]config.Project{"a": {}}},
			want: "a",
		},
		{
			name: "unknown default project",
			cfg: config.Config{
				DefaultProject: "c",
				Projects:       map[string]config.Project{"a": {}},
			},
			wantErr: config.ErrUnknownProject,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := tc.cfg.CurrentProject()

			assert.Equal(t, tc.want, actual)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}
