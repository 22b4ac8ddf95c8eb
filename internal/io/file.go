package ioutils

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// SetupError reports that the destination directory could not be prepared.
// It is fatal to a run: no entry is processed after it.
type SetupError struct {
	Dir string
	Err error
}

func (e *SetupError) Error() string {
	return "prepare destination " + e.Dir + ": " + e.Err.Error()
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x). If the directory
// already exists, no error is returned. Any other failure, including the path
// existing as a regular file, is returned as *SetupError.
//
// Example:
//
//	err := EnsureDir("public/memes")
//	// Creates public and public/memes if needed
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return &SetupError{Dir: path, Err: err}
	}
	info, err := os.Stat(path)
	if err != nil {
		return &SetupError{Dir: path, Err: err}
	}
	if !info.IsDir() {
		return &SetupError{Dir: path, Err: errors.New("not a directory")}
	}
	return nil
}

// Resolver maps entry names to paths inside one base directory.
//
// Resolve is a pure function of the base directory and the name; Exists
// consults the file system.
type Resolver struct {
	baseDir string
}

// NewResolver returns a Resolver rooted at baseDir.
func NewResolver(baseDir string) *Resolver {
	return &Resolver{baseDir: baseDir}
}

// BaseDir returns the directory the resolver is rooted at.
func (r *Resolver) BaseDir() string {
	return r.baseDir
}

// Resolve returns the destination path for name.
func (r *Resolver) Resolve(name string) string {
	return filepath.Join(r.baseDir, name)
}

// Exists reports whether something is already present at name's destination.
// Presence alone counts: contents are not inspected.
func (r *Resolver) Exists(name string) bool {
	return FileExists(r.Resolve(name))
}

// FileExists reports whether path exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// WriteFileAtomic writes data to path so that path only ever appears with
// the complete contents.
//
// The data goes to a hidden temporary file in the same directory, which is
// synced, closed and then renamed onto path. On any failure the temporary
// file is removed and path is left untouched. The file ends up with mode 0644.
//
// Example:
//
//	err := WriteFileAtomic("public/memes/drake_no.jpg", data)
func WriteFileAtomic(path string, data []byte) (err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+base+".*.part")
	if err != nil {
		return errors.Wrap(err, "create temporary file")
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return errors.Wrap(err, "write temporary file")
	}
	if err = tmp.Sync(); err != nil {
		return errors.Wrap(err, "sync temporary file")
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "close temporary file")
	}
	if err = os.Chmod(tmpPath, 0644); err != nil {
		return errors.Wrap(err, "set file mode")
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return errors.Wrap(err, "move file into place")
	}
	return nil
}

// partialSuffix ends the temporary files WriteFileAtomic creates.
const partialSuffix = ".part"

// isPartial reports whether name looks like a WriteFileAtomic temporary
// file: ".<name>.<digits>.part".
func isPartial(name string) bool {
	if !strings.HasPrefix(name, ".") || !strings.HasSuffix(name, partialSuffix) {
		return false
	}
	stem := strings.TrimSuffix(name[1:], partialSuffix)
	i := strings.LastIndexByte(stem, '.')
	if i <= 0 || i == len(stem)-1 {
		return false
	}
	for _, r := range stem[i+1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// RemovePartials deletes temporary files left in dir by writes that never
// finished, e.g. because the process was killed. It returns the names it
// removed. Directories and other files are left alone.
func RemovePartials(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "read destination")
	}

	var removed []string
	for _, e := range entries {
		if !e.Type().IsRegular() || !isPartial(e.Name()) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil && !os.IsNotExist(err) {
			return removed, errors.Wrapf(err, "remove %s", e.Name())
		}
		removed = append(removed, e.Name())
	}
	return removed, nil
}
