package input

// ReadResult holds the data read from a file and a cleanup function.
//
// Data is nil when the file could not be opened. On a successful read Data
// has exactly the file's length and the byte just past it, Data[:len(Data)+1],
// is always 0. An empty file yields a non-nil, zero-length Data.
type ReadResult struct {
	Data   []byte
	Closer func() error
}

// Present reports whether the read produced content (possibly empty).
func (r ReadResult) Present() bool {
	return r.Data != nil
}

// Terminated returns the content including its trailing NUL byte,
// or nil if the read produced no content.
func (r ReadResult) Terminated() []byte {
	if r.Data == nil {
		return nil
	}
	return r.Data[:len(r.Data)+1]
}

// noopCloser is a package-level no-op closer to avoid allocating a func literal per file.
func noopCloser() error { return nil }

// Reader reads file content into a byte slice.
// Implementations return Data with spare capacity for the NUL terminator.
type Reader interface {
	Read(path string) (ReadResult, error)
}

// OpenError is returned by readers when the file cannot be opened for
// reading. It is the "no content" case rather than an I/O failure.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return "open " + e.Path + ": " + e.Err.Error()
}

func (e *OpenError) Unwrap() error {
	return e.Err
}
