package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/konstantinfoerster/loco-importer-go/internal/aio"
	"github.com/pkg/errors"
)

const readByteLimit int64 = 64 * 1024 * 1024 // 64 MiB

// Unzip extracts src into dest and returns the paths of all extracted files.
// Entries pointing outside of dest and archives bigger than 64 MiB are rejected.
func Unzip(src string, dest string) ([]string, error) {
	var files []string

	r, err := zip.OpenReader(src)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open archive %s", src)
	}
	defer aio.Close(r)

	if err = os.MkdirAll(dest, 0750); err != nil {
		return nil, err
	}

	var oneKiB int64 = 1024
	var readBytes int64
	for _, f := range r.File {
		unsafeZipUncompressedSize := f.UncompressedSize64
		if unsafeZipUncompressedSize > math.MaxInt64 {
			return nil, fmt.Errorf("cannot write file, uncompressed size is > maxInt64")
		}
		// #nosec G115 checked above
		zipUncompressedSize := int64(unsafeZipUncompressedSize)

		path, err := sanitizeArchivePath(dest, f.Name)
		if err != nil {
			return nil, err
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(path, 0750); err != nil {
				return nil, err
			}

			continue
		}

		// prevent zip bombs
		readBytes += zipUncompressedSize
		if readBytes > readByteLimit {
			return nil, fmt.Errorf("cannot write next file, reached limit of %dMiB", readByteLimit/oneKiB/oneKiB)
		}

		d, err := writeFile(f, path, zipUncompressedSize)
		if err != nil {
			return nil, err
		}
		files = append(files, d)
	}

	return files, nil
}

func writeFile(zippedFile *zip.File, destFile string, readBytesN int64) (_ string, err error) {
	destFile = filepath.Clean(destFile)

	if err := os.MkdirAll(filepath.Dir(destFile), 0750); err != nil {
		return "", err
	}

	// #nosec G304 sanitizeArchivePath keeps the file inside the destination
	f, err := os.OpenFile(destFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return "", err
	}
	defer aio.CloseWith(&err, f)

	rc, err := zippedFile.Open()
	if err != nil {
		return "", err
	}
	defer aio.Close(rc)

	if _, err := io.CopyN(f, rc, readBytesN); err != nil {
		return "", err
	}

	if err := f.Sync(); err != nil {
		return "", err
	}

	return destFile, nil
}

func sanitizeArchivePath(dest, filename string) (string, error) {
	path := filepath.Join(dest, filename)
	if strings.HasPrefix(path, filepath.Clean(dest)+string(os.PathSeparator)) {
		return path, nil
	}

	// Zip slip
	return "", fmt.Errorf("illegal file path %s", path)
}

// ResFolder returns the res directory of an extracted export. The export contains exactly one
// top level directory which holds the res tree.
func ResFolder(extracted string) (string, error) {
	entries, err := os.ReadDir(extracted)
	if err != nil {
		return "", errors.Wrapf(err, "failed to list %s", extracted)
	}

	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	if len(dirs) != 1 {
		return "", fmt.Errorf("unexpected directory count inside %s, expected 1 but found %d", extracted, len(dirs))
	}

	res := filepath.Join(extracted, dirs[0], "res")
	if info, err := os.Stat(res); err != nil || !info.IsDir() {
		return "", fmt.Errorf("missing res directory in %s", filepath.Join(extracted, dirs[0]))
	}

	return res, nil
}
