package test

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

// ZipContent builds an in-memory zip archive. Keys are slash separated archive paths.
func ZipContent(t *testing.T, files map[string]string) []byte {
	t.Helper()

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	slices.Sort(names)

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, name := range names {
		f, err := w.Create(name)
		require.NoError(t, err, fmt.Sprintf("failed to add %s to zip", name))
		_, err = f.Write([]byte(files[name]))
		require.NoError(t, err, fmt.Sprintf("failed to write %s to zip", name))
	}
	require.NoError(t, w.Close(), "failed to finish zip")

	return buf.Bytes()
}

// ExportArchive builds a zip shaped like a Loco android export. Keys are value folder names
// like values or values-fr.
func ExportArchive(t *testing.T, folders map[string]string) []byte {
	t.Helper()

	files := make(map[string]string, len(folders))
	for folder, content := range folders {
		files["project-android/res/"+folder+"/strings.xml"] = content
	}

	return ZipContent(t, files)
}

func WriteFile(t *testing.T, path string, content string) string {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0750), "failed to create dirs")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600), fmt.Sprintf("failed to write %s", path))

	return path
}

func FileContent(t *testing.T, path string) string {
	t.Helper()

	content, err := os.ReadFile(path)
	require.NoError(t, err, fmt.Sprintf("failed to read data from %s", path))

	return string(content)
}
