package updater_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/konstantinfoerster/loco-importer-go/internal/android"
	"github.com/konstantinfoerster/loco-importer-go/internal/config"
	"github.com/konstantinfoerster/loco-importer-go/internal/loco"
	"github.com/konstantinfoerster/loco-importer-go/internal/reconcile"
	"github.com/konstantinfoerster/loco-importer-go/internal/storage"
	"github.com/konstantinfoerster/loco-importer-go/internal/test"
	"github.com/konstantinfoerster/loco-importer-go/internal/updater"
	"github.com/konstantinfoerster/loco-importer-go/internal/validation"
	"github.com/konstantinfoerster/loco-importer-go/internal/web"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const apiKey = "secret"

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	os.Exit(m.Run())
}

type fakeRepo struct {
	tracked    map[string]bool
	diffs      map[string]string
	restoreErr error
	restored   []string
}

func (r *fakeRepo) Diff(_ context.Context, path string) (string, error) {
	return r.diffs[path], nil
}

func (r *fakeRepo) Restore(_ context.Context, path string) error {
	if r.restoreErr != nil {
		return r.restoreErr
	}
	r.restored = append(r.restored, path)

	return nil
}

func (r *fakeRepo) IsTracked(_ context.Context, path string) bool {
	return r.tracked[path]
}

type env struct {
	project loco.UpdateStrategy
	scratch string
	out     *bytes.Buffer
	updater *updater.Updater
}

func newEnv(t *testing.T, archive []byte, repo *fakeRepo) *env {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/export/archive/xml.zip", func(w http.ResponseWriter, r *http.Request) {
		if archive == nil || r.URL.Query().Get("key") != apiKey {
			w.WriteHeader(http.StatusNotFound)

			return
		}
		w.Header().Set("Content-Type", web.MimeTypeZip)
		_, _ = w.Write(archive)
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	scratch := filepath.Join(t.TempDir(), "scratch")
	store, err := storage.NewLocalStorage(storage.Config{Location: scratch, Mode: storage.REPLACE})
	require.NoError(t, err)

	folders := []string{"values", "values-fr"}
	client := loco.NewClient(ts.URL+"/api", web.NewClient(web.Config{}, nil))
	fetcher := loco.NewFetcher(client, store, "android", folders, "    ")

	strategy, err := loco.AppStrategy("mail", config.Project{ProjectRoot: t.TempDir(), LocoKey: apiKey}, true)
	require.NoError(t, err)

	out := &bytes.Buffer{}
	settings := updater.Settings{ValueFolders: folders, IgnoredIDs: []string{"c"}, Indent: "    "}
	u := updater.New(settings, fetcher, repo, validation.FromConfig(config.Validation{}, out), out)

	return &env{project: strategy, scratch: scratch, out: out, updater: u}
}

func (e *env) path(folder string) string {
	return android.Path(e.project.TargetFolder, folder)
}

func remoteArchive(t *testing.T) []byte {
	return test.ExportArchive(t, map[string]string{
		"values":    "<resources>\n  <string name=\"a\">1</string>\n  <string name=\"b\">2</string>\n</resources>",
		"values-fr": "<resources>\n  <string name=\"a\">1fr</string>\n  <string name=\"b\">2fr</string>\n</resources>",
	})
}

func TestRunFullSync(t *testing.T) {
	repo := &fakeRepo{tracked: map[string]bool{}}
	e := newEnv(t, remoteArchive(t), repo)
	local := test.WriteFile(t, e.path("values"), "<resources>\n"+
		"    <string name=\"c\" translatable=\"false\">keep</string>\n"+
		"    <string name=\"a\">0</string>\n"+
		"</resources>\n")
	repo.tracked[local] = true

	result, err := e.updater.Run(context.Background(), e.project, updater.Options{})

	require.NoError(t, err)
	assert.Equal(t, []updater.LocaleDiff{
		{Locale: "en", Diff: reconcile.IDDiff{Added: 1, Removed: 0, Updated: 1}},
		{Locale: "fr", Diff: reconcile.IDDiff{Added: 2}},
	}, result.Diffs)
	assert.Equal(t, []string{e.path("values-fr")}, result.CreatedFiles)
	assert.Empty(t, result.Remaining)
	assert.True(t, result.Passed())
	assert.Equal(t, []string{local}, repo.restored)
	assert.Equal(t, updater.Done, e.updater.State())

	assert.Equal(t, "<resources>\n"+
		"    <string name=\"c\" translatable=\"false\">keep</string>\n"+
		"    <string name=\"a\">1</string>\n"+
		"    <string name=\"b\">2</string>\n"+
		"</resources>\n", test.FileContent(t, local))
	assert.Equal(t, "<resources>\n"+
		"    <string name=\"a\">1fr</string>\n"+
		"    <string name=\"b\">2fr</string>\n"+
		"</resources>\n", test.FileContent(t, e.path("values-fr")))

	assert.NoDirExists(t, e.scratch)
	assert.Contains(t, e.out.String(), "Found no error")
	assert.NotContains(t, e.out.String(), "Status compared to the remote")
}

func TestRunSelectiveSyncReportsRemainingDiff(t *testing.T) {
	e := newEnv(t, remoteArchive(t), &fakeRepo{})
	test.WriteFile(t, e.path("values"), "<resources>\n    <string name=\"a\">0</string>\n</resources>\n")
	test.WriteFile(t, e.path("values-fr"), "<resources>\n    <string name=\"a\">0</string>\n</resources>\n")

	result, err := e.updater.Run(context.Background(), e.project, updater.Options{TargetIDs: []string{"a"}})

	require.NoError(t, err)
	assert.Equal(t, []updater.LocaleDiff{
		{Locale: "en", Diff: reconcile.IDDiff{Added: 1}},
		{Locale: "fr", Diff: reconcile.IDDiff{Added: 1}},
	}, result.Remaining)
	assert.Empty(t, result.CreatedFiles)
	assert.Contains(t, e.out.String(), "Status compared to the remote\nTo add: 1, to update: 0, to remove: 0\n")
	assert.Equal(t, "<resources>\n    <string name=\"a\">1fr</string>\n</resources>\n", test.FileContent(t, e.path("values-fr")))
}

func TestRunSelectiveSyncReportsPerLocale(t *testing.T) {
	e := newEnv(t, remoteArchive(t), &fakeRepo{})
	test.WriteFile(t, e.path("values"), "<resources>\n    <string name=\"b\">2</string>\n</resources>\n")
	test.WriteFile(t, e.path("values-fr"), "<resources>\n    <string name=\"x\">x</string>\n</resources>\n")

	_, err := e.updater.Run(context.Background(), e.project, updater.Options{TargetIDs: []string{"a"}})

	require.NoError(t, err)
	assert.Contains(t, e.out.String(), "[en]: To add: 0, to update: 0, to remove: 0\n")
	assert.Contains(t, e.out.String(), "[fr]: To add: 1, to update: 0, to remove: 1\n")
}

func TestRunRestoresHeader(t *testing.T) {
	archive := test.ExportArchive(t, map[string]string{
		"values":    "<?xml version=\"1.0\" encoding=\"utf-8\"?>\n<!-- Loco export -->\n<resources>\n  <string name=\"a\">1</string>\n</resources>\n",
		"values-fr": "<resources>\n  <string name=\"a\">1fr</string>\n</resources>\n",
	})
	repo := &fakeRepo{diffs: map[string]string{}}
	e := newEnv(t, archive, repo)
	local := test.WriteFile(t, e.path("values"), "<!-- License -->\n<resources>\n    <string name=\"a\">0</string>\n</resources>\n")
	test.WriteFile(t, e.path("values-fr"), "<resources>\n    <string name=\"a\">0</string>\n</resources>\n")
	repo.diffs[local] = "diff --git a/strings.xml b/strings.xml\n--- a/strings.xml\n+++ b/strings.xml\n" +
		"@@ -1 +1,2 @@\n-<!-- License -->\n+<?xml version=\"1.0\" encoding=\"utf-8\"?>\n+<!-- Loco export -->\n"

	_, err := e.updater.Run(context.Background(), e.project, updater.Options{})

	require.NoError(t, err)
	assert.Equal(t, "<!-- License -->\n<resources>\n    <string name=\"a\">1</string>\n</resources>\n", test.FileContent(t, local))
}

func TestRunFetchFailureKeepsLocalFiles(t *testing.T) {
	e := newEnv(t, nil, &fakeRepo{})
	content := "<resources>\n    <string name=\"a\">0</string>\n</resources>\n"
	local := test.WriteFile(t, e.path("values"), content)

	result, err := e.updater.Run(context.Background(), e.project, updater.Options{})

	require.ErrorIs(t, err, loco.ErrFetch)
	assert.Empty(t, result.Diffs)
	assert.Equal(t, content, test.FileContent(t, local))
	assert.Equal(t, updater.Done, e.updater.State())
}

func TestRunRestoreFailureIsFatal(t *testing.T) {
	repo := &fakeRepo{tracked: map[string]bool{}, restoreErr: errors.New("local changes")}
	e := newEnv(t, remoteArchive(t), repo)
	local := test.WriteFile(t, e.path("values"), "<resources>\n    <string name=\"a\">0</string>\n</resources>\n")
	repo.tracked[local] = true

	_, err := e.updater.Run(context.Background(), e.project, updater.Options{})

	require.ErrorContains(t, err, "failed to update en strings: local changes")
	assert.NoFileExists(t, e.path("values-fr"))
	assert.NoDirExists(t, e.scratch)
}

func TestRunCheckOnly(t *testing.T) {
	e := newEnv(t, nil, &fakeRepo{})
	test.WriteFile(t, e.path("values"), "<resources>\n    <string name=\"a\">Loading...</string>\n</resources>\n")
	test.WriteFile(t, e.path("values-fr"), "<resources>\n    <string name=\"a\">Votre adresse mail</string>\n</resources>\n")

	result, err := e.updater.Run(context.Background(), e.project, updater.Options{CheckOnly: true, Verbose: true})

	require.ErrorIs(t, err, updater.ErrValidation)
	assert.Equal(t, 1, result.ErrorCount)
	assert.False(t, result.Passed())
	assert.Contains(t, e.out.String(), "[en] a: found forbidden sequence [...]\n")
	assert.Contains(t, e.out.String(), "Found 1 error\n")
	assert.Contains(t, e.out.String(), "[verbose]")
}

func TestRunCheckOnlyFailsOnMissingFile(t *testing.T) {
	e := newEnv(t, nil, &fakeRepo{})

	_, err := e.updater.Run(context.Background(), e.project, updater.Options{CheckOnly: true})

	require.Error(t, err)
	assert.NotErrorIs(t, err, updater.ErrValidation)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", updater.Idle.String())
	assert.Equal(t, "restoring-headers", updater.RestoringHeaders.String())
	assert.Equal(t, "State(42)", updater.State(42).String())
}
