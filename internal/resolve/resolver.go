package resolve

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/charmbracelet/log"

	"github.com/dl/fileinfo/internal/input"
)

var (
	// ErrNotFound means the path does not exist or could not be canonicalized.
	ErrNotFound = errors.New("file not found")
	// ErrUnreadable means the path exists but could not be opened for reading.
	ErrUnreadable = errors.New("file not readable")
)

// Resolver builds Descriptors.
type Resolver struct {
	reader input.Reader
	logger *log.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithReader sets the reader used to load file content.
func WithReader(r input.Reader) Option {
	return func(res *Resolver) {
		res.reader = r
	}
}

// WithLogger sets the logger used for debug traces.
func WithLogger(l *log.Logger) Option {
	return func(res *Resolver) {
		res.logger = l
	}
}

// New creates a Resolver. Without options it reads through an adaptive
// reader and logs nothing.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		reader: input.NewAdaptiveReader(input.DefaultMmapThreshold),
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve resolves rel, prefixing base when rel starts with an explicit
// relative marker, and loads the file. An empty base means no base.
//
// A path that cannot be canonicalized yields ErrNotFound. A path that exists
// but cannot be opened yields ErrUnreadable. Other errors are I/O failures
// while reading.
func (r *Resolver) Resolve(rel, base string) (*Descriptor, error) {
	working := WorkingPath(rel, base)

	full, err := Canonicalize(working)
	if err != nil {
		r.logger.Debug("unresolved", "path", working, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	r.logger.Debug("resolved", "path", working, "full", full)

	res, err := r.reader.Read(full)
	if err != nil {
		var oe *input.OpenError
		switch {
		case errors.As(err, &oe) && errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
		case oe != nil:
			return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
		}
		return nil, err
	}
	return newDescriptor(full, res), nil
}

// GetFileInfo resolves rel against currentDirectory (nil for none) with a
// default Resolver. It returns nil when the file cannot be resolved or read.
func GetFileInfo(rel string, currentDirectory *string) *Descriptor {
	var base string
	if currentDirectory != nil {
		base = *currentDirectory
	}
	d, err := New().Resolve(rel, base)
	if err != nil {
		return nil
	}
	return d
}

// FreeFileInfo releases a descriptor returned by GetFileInfo. nil is allowed.
func FreeFileInfo(d *Descriptor) {
	d.Close()
}
