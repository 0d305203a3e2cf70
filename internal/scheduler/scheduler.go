package scheduler

import (
	"runtime"
	"sync"

	"github.com/dl/fileinfo/internal/output"
	"github.com/dl/fileinfo/internal/resolve"
)

// Scheduler manages a pool of workers that resolve paths concurrently.
// Each resolve is independent; only the working directory is shared.
type Scheduler struct {
	workers  int
	resolver *resolve.Resolver
	baseDir  string
}

// New creates a Scheduler with the given number of workers.
// If workers is 0, defaults to NumCPU.
func New(workers int, r *resolve.Resolver, baseDir string) *Scheduler {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Scheduler{
		workers:  workers,
		resolver: r,
		baseDir:  baseDir,
	}
}

type job struct {
	path string
	seq  int
}

// Run resolves paths from the channel and returns results on the result channel.
// Results carry sequence numbers in input order, starting at 1, for ordered output.
// The receiver owns each result's descriptor.
func (s *Scheduler) Run(paths <-chan string) <-chan output.Result {
	jobs := make(chan job, s.workers)
	resultCh := make(chan output.Result, s.workers*2)

	go func() {
		defer close(jobs)
		seq := 0
		for p := range paths {
			seq++
			jobs <- job{path: p, seq: seq}
		}
	}()

	var wg sync.WaitGroup
	for range s.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				d, err := s.resolver.Resolve(j.path, s.baseDir)
				resultCh <- output.Result{
					Path:       j.path,
					SeqNum:     j.seq,
					Descriptor: d,
					Err:        err,
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	return resultCh
}

// Paths feeds a slice into a closed channel for Run.
func Paths(paths []string) <-chan string {
	ch := make(chan string, len(paths))
	for _, p := range paths {
		ch <- p
	}
	close(ch)
	return ch
}
