package output

import (
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// Writer writes formatted output to a file descriptor using writev.
type Writer struct {
	fd int
}

// NewWriter creates a Writer that writes to stdout.
func NewWriter() *Writer {
	return &Writer{fd: int(os.Stdout.Fd())}
}

// NewFdWriter creates a Writer for an arbitrary open file descriptor.
func NewFdWriter(fd int) *Writer {
	return &Writer{fd: fd}
}

// Write writes all of data, retrying short writes.
func (w *Writer) Write(data []byte) (int, error) {
	total := 0
	for len(data) > 0 {
		n, err := unix.Writev(w.fd, [][]byte{data})
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return total, err
		}
		total += n
		data = data[n:]
	}
	return total, nil
}

// OrderedWriter receives results from a channel and writes them in sequence order.
// This keeps output deterministic even with parallel workers.
type OrderedWriter struct {
	w         io.Writer
	formatter Formatter
	buf       []byte
}

// NewOrderedWriter creates an OrderedWriter.
func NewOrderedWriter(w io.Writer, f Formatter) *OrderedWriter {
	return &OrderedWriter{
		w:         w,
		formatter: f,
	}
}

// WriteOrdered consumes results from the channel, buffering out-of-order results
// and writing them in sequence-number order. Each result's descriptor is
// closed once written. onResult, if set, sees every result in order before
// it is closed. The first write error is returned after the channel is drained.
func (ow *OrderedWriter) WriteOrdered(results <-chan Result, onResult func(Result)) error {
	nextSeq := 1
	pending := make(map[int]Result)
	var werr error

	flush := func(r Result) {
		if onResult != nil {
			onResult(r)
		}
		if werr == nil {
			werr = ow.writeResult(r)
		}
		r.Close()
	}

	for r := range results {
		if r.SeqNum != nextSeq {
			pending[r.SeqNum] = r
			continue
		}
		flush(r)
		nextSeq++
		// Flush any consecutive pending results
		for {
			p, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			flush(p)
			nextSeq++
		}
	}
	return werr
}

func (ow *OrderedWriter) writeResult(r Result) error {
	ow.buf = ow.formatter.Format(ow.buf[:0], r)
	_, err := ow.w.Write(ow.buf)
	return err
}
