package fs

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
)

// File is the part of *os.File the artifact writer needs.
type File interface {
	io.WriteCloser
	Sync() error
}

// FileSystem is the set of calls LocalStore makes against the disk.
type FileSystem interface {
	OpenFile(name string, flag int, perm os.FileMode) (File, error)
	Remove(name string) error
	Rename(oldpath, newpath string) error
	MkdirAll(path string, perm os.FileMode) error
	ReadDir(name string) ([]os.DirEntry, error)
}

// LocalFS implements FileSystem with the os package.
type LocalFS struct{}

func (LocalFS) OpenFile(name string, flag int, perm os.FileMode) (File, error) {
	return os.OpenFile(name, flag, perm)
}

func (LocalFS) Remove(name string) error                     { return os.Remove(name) }
func (LocalFS) Rename(oldpath, newpath string) error         { return os.Rename(oldpath, newpath) }
func (LocalFS) MkdirAll(path string, perm os.FileMode) error { return os.MkdirAll(path, perm) }
func (LocalFS) ReadDir(name string) ([]os.DirEntry, error)   { return os.ReadDir(name) }

// Default is the os-backed file system.
var Default FileSystem = LocalFS{}

var tmpSeq atomic.Uint64

// TempSuffix marks files WriteAtomic has not renamed into place yet.
const TempSuffix = ".partial"

// WriteAtomic writes data next to name and renames it into place once it is
// synced, creating parent directories as needed. Each call uses its own
// temporary name, so concurrent writers of one artifact do not interleave.
func WriteAtomic(fsys FileSystem, name string, data []byte, perm os.FileMode) (err error) {
	if err := fsys.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return err
	}

	tmp := name + "." + strconv.FormatUint(tmpSeq.Add(1), 10) + TempSuffix
	f, err := fsys.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = fsys.Remove(tmp)
		}
	}()

	if _, err = f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return fsys.Rename(tmp, name)
}
