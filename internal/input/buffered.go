package input

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// BufferedReader reads files using unix.Open with O_NOATIME and unix.Pread
// into a freshly allocated buffer owned by the caller.
type BufferedReader struct{}

// NewBufferedReader creates a new BufferedReader.
func NewBufferedReader() *BufferedReader {
	return &BufferedReader{}
}

func (r *BufferedReader) Read(path string) (ReadResult, error) {
	fd, size, err := openRegular(path)
	if err != nil {
		return ReadResult{}, err
	}
	return readBuffered(fd, size, path)
}

// ReadFile loads the whole file at path. A file that cannot be opened is not
// an error: the result simply has no Data. Failures after the open succeeded
// are returned.
func ReadFile(path string) (ReadResult, error) {
	res, err := NewBufferedReader().Read(path)
	if err != nil {
		var oe *OpenError
		if errors.As(err, &oe) {
			return ReadResult{}, nil
		}
		return ReadResult{}, err
	}
	return res, nil
}

// readBuffered reads a file from an already-open fd into a buffer of size+1
// bytes and NUL-terminates it. Takes ownership of fd.
func readBuffered(fd int, size int64, path string) (ReadResult, error) {
	defer unix.Close(fd)

	buf := make([]byte, size+1)

	// pread until the expected size is consumed; short reads are normal
	var totalRead int
	for totalRead < int(size) {
		n, err := unix.Pread(fd, buf[totalRead:size], int64(totalRead))
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return ReadResult{}, fmt.Errorf("read %s: %w", path, err)
		}
		if n == 0 {
			break // file shrank underneath us
		}
		totalRead += n
	}
	buf[totalRead] = 0

	return ReadResult{
		Data:   buf[:totalRead:totalRead+1],
		Closer: noopCloser,
	}, nil
}

// openRegular opens path read-only and stats it. Anything that is not a
// regular file is reported as an OpenError.
func openRegular(path string) (int, int64, error) {
	fd, err := openFile(path)
	if err != nil {
		return -1, 0, &OpenError{Path: path, Err: err}
	}

	var stat unix.Stat_t
	if err := unix.Fstat(fd, &stat); err != nil {
		unix.Close(fd)
		return -1, 0, fmt.Errorf("stat %s: %w", path, err)
	}
	switch stat.Mode & unix.S_IFMT {
	case unix.S_IFREG:
	case unix.S_IFDIR:
		unix.Close(fd)
		return -1, 0, &OpenError{Path: path, Err: unix.EISDIR}
	default:
		unix.Close(fd)
		return -1, 0, &OpenError{Path: path, Err: unix.EINVAL}
	}
	return fd, stat.Size, nil
}

// openFile opens a file with O_NOATIME, falling back without it.
func openFile(path string) (int, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NOATIME|unix.O_CLOEXEC, 0)
	if err != nil {
		fd, err = unix.Open(path, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	}
	return fd, err
}
