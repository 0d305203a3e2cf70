package resolve

import (
	"strings"
	"sync"

	"github.com/dl/fileinfo/internal/input"
)

// Descriptor is a resolved file: canonical path, folder, name and content.
// It is read-only after Resolve returns it and must be released with Close.
// The zero value and the nil pointer behave as a closed descriptor.
type Descriptor struct {
	full      string
	folder    string
	nameStart int

	data   []byte
	closer func() error

	once   sync.Once
	closed bool
}

func newDescriptor(full string, res input.ReadResult) *Descriptor {
	i := splitName(full)
	return &Descriptor{
		full:      full,
		folder:    strings.Clone(full[:i]),
		nameStart: i,
		data:      res.Data,
		closer:    res.Closer,
	}
}

// FullPath returns the canonical absolute path.
func (d *Descriptor) FullPath() string {
	if d == nil || d.closed {
		return ""
	}
	return d.full
}

// FolderPath returns the directory part of FullPath including the trailing
// separator. It has its own storage.
func (d *Descriptor) FolderPath() string {
	if d == nil || d.closed {
		return ""
	}
	return d.folder
}

// FileName returns the last component of FullPath. It shares FullPath's
// storage and has no lifetime of its own.
func (d *Descriptor) FileName() string {
	if d == nil || d.closed {
		return ""
	}
	return d.full[d.nameStart:]
}

// Buffer returns the file content. The slice must not be used after Close.
func (d *Descriptor) Buffer() []byte {
	if d == nil || d.closed {
		return nil
	}
	return d.data
}

// Terminated returns the content followed by its NUL terminator.
func (d *Descriptor) Terminated() []byte {
	if d == nil || d.closed {
		return nil
	}
	return d.data[:len(d.data)+1]
}

// Len returns the content length in bytes, excluding the terminator.
func (d *Descriptor) Len() int {
	if d == nil || d.closed {
		return 0
	}
	return len(d.data)
}

// Close releases the content buffer. Only the first call does anything.
func (d *Descriptor) Close() error {
	if d == nil {
		return nil
	}
	var err error
	d.once.Do(func() {
		if d.closer != nil {
			err = d.closer()
		}
		d.closed = true
		d.full, d.folder, d.nameStart = "", "", 0
		d.data, d.closer = nil, nil
	})
	return err
}
