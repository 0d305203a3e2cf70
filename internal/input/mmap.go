package input

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// DefaultMmapThreshold is the file size at which the adaptive reader
// switches from pread to mmap.
const DefaultMmapThreshold = 4 << 20

// MmapReader reads files by memory-mapping them with sequential-access hints.
type MmapReader struct{}

// NewMmapReader creates a new MmapReader.
func NewMmapReader() *MmapReader {
	return &MmapReader{}
}

func (r *MmapReader) Read(path string) (ReadResult, error) {
	fd, size, err := openRegular(path)
	if err != nil {
		return ReadResult{}, err
	}
	return readMmap(fd, size, path)
}

// readMmap memory-maps an already-opened fd of known size. Takes ownership of fd.
//
// The mapping is one byte longer than the file so the terminating NUL comes
// from the zero-filled tail of the last page. When the file ends exactly on
// a page boundary there is no such tail and the read falls back to pread.
func readMmap(fd int, size int64, path string) (ReadResult, error) {
	if size == 0 || size%int64(unix.Getpagesize()) == 0 {
		return readBuffered(fd, size, path)
	}

	unix.Fadvise(fd, 0, size, unix.FADV_SEQUENTIAL)

	data, err := unix.Mmap(fd, 0, int(size)+1, unix.PROT_READ, unix.MAP_PRIVATE|unix.MAP_POPULATE)
	if err != nil {
		return readBuffered(fd, size, path)
	}
	// the mapping outlives the descriptor
	unix.Close(fd)

	unix.Madvise(data, unix.MADV_SEQUENTIAL)

	return ReadResult{
		Data: data[:size:size+1],
		Closer: func() error {
			if err := unix.Munmap(data); err != nil {
				return fmt.Errorf("munmap %s: %w", path, err)
			}
			return nil
		},
	}, nil
}

// NewAdaptiveReader returns a Reader that opens the file once, stats it via fstat,
// then selects between buffered and mmap based on size.
func NewAdaptiveReader(mmapThreshold int64) Reader {
	if mmapThreshold <= 0 {
		mmapThreshold = DefaultMmapThreshold
	}
	return &adaptiveReader{
		threshold: mmapThreshold,
	}
}

type adaptiveReader struct {
	threshold int64
}

func (r *adaptiveReader) Read(path string) (ReadResult, error) {
	fd, size, err := openRegular(path)
	if err != nil {
		return ReadResult{}, err
	}
	if size >= r.threshold {
		return readMmap(fd, size, path)
	}
	return readBuffered(fd, size, path)
}
