package motion

import (
	"image"
	"sync"
)

// cellJob is one grid cell, with the slot its offset is written to.
type cellJob struct {
	Index int
	Cell  image.Point
}

// errOnce keeps the first error reported by any worker.
type errOnce struct {
	mu  sync.Mutex
	err error
}

func (e *errOnce) set(err error) {
	e.mu.Lock()
	if e.err == nil {
		e.err = err
	}
	e.mu.Unlock()
}

func (e *errOnce) get() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

// worker receives cells, searches each one and stores the offset at the
// cell's index. Slots are disjoint, so offsets needs no lock.
func worker(wg *sync.WaitGroup, jobs <-chan cellJob, offsets []image.Point, errs *errOnce, search func(cell image.Point) (image.Point, error)) {
	defer wg.Done()
	for job := range jobs {
		if errs.get() != nil {
			continue
		}
		offset, err := search(job.Cell)
		if err != nil {
			errs.set(err)
			continue
		}
		offsets[job.Index] = offset
	}
}
