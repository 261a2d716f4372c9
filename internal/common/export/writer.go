// internal/common/export/writer.go
package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	apperrors "churn-predictor/internal/common/errors"
)

// Writer saves the export artifact of a completed request under a fixed
// directory. Each write replaces the previous file, so the file on disk
// always matches the latest presented result.
type Writer struct {
	fs       afero.Fs
	dir      string
	filename string
}

// NewWriter writes through fs; nil means the OS filesystem.
func NewWriter(fs afero.Fs, dir, filename string) *Writer {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if dir == "" {
		dir = "."
	}
	return &Writer{fs: fs, dir: dir, filename: filename}
}

// Path is where Write puts the artifact.
func (w *Writer) Path() string {
	return filepath.Join(w.dir, w.filename)
}

// Write stores data atomically: a temp file in the target directory is
// renamed over the destination. Failures are EXPORT_FAILED.
func (w *Writer) Write(data []byte) (string, error) {
	path := w.Path()
	if w.filename == "" || filepath.Base(w.filename) != w.filename {
		return "", apperrors.NewExportFailedError(path, fmt.Errorf("invalid file name %q", w.filename))
	}
	if err := w.fs.MkdirAll(w.dir, 0o755); err != nil {
		return "", apperrors.NewExportFailedError(path, err)
	}

	tmp, err := afero.TempFile(w.fs, w.dir, "."+w.filename+".*")
	if err != nil {
		return "", apperrors.NewExportFailedError(path, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = w.fs.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", apperrors.NewExportFailedError(path, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", apperrors.NewExportFailedError(path, err)
	}
	if err := w.fs.Chmod(tmpName, 0o644); err != nil && !os.IsNotExist(err) {
		cleanup()
		return "", apperrors.NewExportFailedError(path, err)
	}
	if err := w.fs.Rename(tmpName, path); err != nil {
		cleanup()
		return "", apperrors.NewExportFailedError(path, err)
	}
	return path, nil
}
