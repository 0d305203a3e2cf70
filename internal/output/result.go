package output

import "github.com/dl/fileinfo/internal/resolve"

// Result is the outcome of resolving one requested path.
type Result struct {
	// Path is the path as requested, before resolution.
	Path       string
	SeqNum     int
	Descriptor *resolve.Descriptor
	Err        error
}

// Found reports whether the path resolved to a readable file.
func (r *Result) Found() bool {
	return r.Err == nil && r.Descriptor != nil
}

// Close releases the descriptor, if any.
func (r *Result) Close() error {
	return r.Descriptor.Close()
}
