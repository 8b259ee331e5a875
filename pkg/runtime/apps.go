package runtime

import (
	"os"
	"path/filepath"
)

// FileAppReader is the default AppReader: it looks up
// "<dir>/<name>/<name>.apb" on disk, the per-app subdirectory layout
// spec.md §6.1 mandates (original_source/src/systems/reader.rs:51's
// `format!("apps/{app_name}/{app_name}.apb")`).
type FileAppReader struct {
	dir string
}

// NewFileAppReader returns an AppReader rooted at dir.
func NewFileAppReader(dir string) *FileAppReader {
	return &FileAppReader{dir: dir}
}

// ReadApp reads appName's raw .apb bytes from disk.
func (f *FileAppReader) ReadApp(appName string) ([]byte, error) {
	return os.ReadFile(filepath.Join(f.dir, appName, appName+".apb"))
}
