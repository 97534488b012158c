package worm

import (
	"io/fs"
	"os"
	"path/filepath"
)

// LocalFS reads script templates from the local file system.
// Names are resolved against BaseDir, or the working directory when it is empty.
type LocalFS struct {
	BaseDir string
}

// Open implements fs.FS.
func (f LocalFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	return os.Open(filepath.Join(f.BaseDir, filepath.FromSlash(name)))
}

// WorkingDirFS returns a LocalFS rooted at the current working directory.
func WorkingDirFS() (LocalFS, error) {
	dir, err := os.Getwd()
	if err != nil {
		return LocalFS{}, err
	}
	return LocalFS{BaseDir: dir}, nil
}
