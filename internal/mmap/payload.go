package mmap

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"
)

var (
	// ErrClosed is returned by every accessor once the payload is closed.
	ErrClosed = errors.New("mmap: payload is closed")
	// ErrOutOfRange is returned for sections outside the mapped bytes.
	ErrOutOfRange = errors.New("mmap: section out of range")
)

// Payload is a read-only mapping of one file.
type Payload struct {
	path    string
	data    []byte
	release func() error
	closed  atomic.Bool
}

// Open maps the file at path. The kernel is told the bytes will be read
// front to back, which is how every tile decoder walks them.
func Open(path string) (*Payload, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("mmap: %s is a directory", path)
	}

	p := &Payload{path: path}
	size := fi.Size()
	if size == 0 {
		return p, nil
	}
	if int64(int(size)) != size {
		return nil, fmt.Errorf("mmap: %s: %d bytes do not fit the address space", path, size)
	}

	p.data, p.release, err = mapFile(f, int(size))
	if err != nil {
		return nil, fmt.Errorf("mmap: %s: %w", path, err)
	}
	// Advice failures only cost read-ahead.
	_ = adviseSequential(p.data)
	return p, nil
}

// Path returns the mapped file name.
func (p *Payload) Path() string { return p.path }

// Len returns the payload size in bytes.
func (p *Payload) Len() int { return len(p.data) }

// Bytes returns the whole payload, or nil once closed.
func (p *Payload) Bytes() []byte {
	if p.closed.Load() {
		return nil
	}
	return p.data
}

// Section returns n bytes starting at off without copying.
func (p *Payload) Section(off, n int) ([]byte, error) {
	if p.closed.Load() {
		return nil, ErrClosed
	}
	if off < 0 || n < 0 || off > len(p.data)-n {
		return nil, fmt.Errorf("%w: [%d:%d] of %d bytes", ErrOutOfRange, off, off+n, len(p.data))
	}
	return p.data[off : off+n], nil
}

// ReadAt copies from the payload at off.
func (p *Payload) ReadAt(b []byte, off int64) (int, error) {
	if p.closed.Load() {
		return 0, ErrClosed
	}
	if off < 0 {
		return 0, fmt.Errorf("%w: offset %d", ErrOutOfRange, off)
	}
	if off >= int64(len(p.data)) {
		return 0, io.EOF
	}
	n := copy(b, p.data[off:])
	if n < len(b) {
		return n, io.EOF
	}
	return n, nil
}

// Close unmaps the payload. Closing twice is a no-op.
func (p *Payload) Close() error {
	if p.closed.Swap(true) || p.release == nil {
		return nil
	}
	return p.release()
}
