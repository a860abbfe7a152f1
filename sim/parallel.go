package sim

import (
	"runtime"
	"sync"

	"github.com/Starland9/sand-simulation/systems"
)

// parallelThreshold is the minimum particle count to use parallel
// processing. Below this, single-threaded is faster due to goroutine
// overhead.
const parallelThreshold = 64

type phaseKind uint8

const (
	phaseIntegrate phaseKind = iota
	phaseCohesion
)

// workChunk represents a range of particle indices for a worker.
type workChunk struct {
	start, end int
	dt         float32
	phase      phaseKind
}

// parallelState holds the persistent worker pool. Only the integration
// and cohesion passes are dispatched to it: both write exclusively to the
// particle they are iterating, so chunked execution is bitwise identical
// to serial. Collision stays on the stepping goroutine.
type parallelState struct {
	numWorkers int
	queryBufs  [][]int

	workChan chan workChunk
	doneChan chan struct{}
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
}

func newParallelState() *parallelState {
	numWorkers := runtime.GOMAXPROCS(0)
	queryBufs := make([][]int, numWorkers)
	for i := range queryBufs {
		queryBufs[i] = make([]int, 0, 128)
	}
	return &parallelState{
		numWorkers: numWorkers,
		queryBufs:  queryBufs,
	}
}

// startWorkers launches persistent worker goroutines.
func (p *parallelState) startWorkers(e *Engine) {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(e, i)
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (p *parallelState) stopWorkers() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker runs in a goroutine, processing chunks until stopped.
func (p *parallelState) worker(e *Engine, workerID int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			p.runChunk(e, workerID, chunk)
			p.doneChan <- struct{}{}
		}
	}
}

func (p *parallelState) runChunk(e *Engine, workerID int, c workChunk) {
	switch c.phase {
	case phaseIntegrate:
		systems.IntegrateRange(e.store, &e.profiles, &e.params, c.dt, c.start, c.end)
	case phaseCohesion:
		p.queryBufs[workerID] = systems.CohesionRange(
			e.store, e.grid, &e.profiles, c.dt, c.start, c.end, p.queryBufs[workerID])
	}
}

// runPhase executes one per-particle phase over n particles, serially for
// small counts, chunked over the pool otherwise.
func (p *parallelState) runPhase(e *Engine, n int, dt float32, phase phaseKind) {
	if n == 0 {
		return
	}
	if n < parallelThreshold {
		p.runChunk(e, 0, workChunk{start: 0, end: n, dt: dt, phase: phase})
		return
	}

	if !p.running {
		p.startWorkers(e)
	}

	chunkSize := (n + p.numWorkers - 1) / p.numWorkers
	dispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}
		p.workChan <- workChunk{start: start, end: end, dt: dt, phase: phase}
		dispatched++
	}

	for i := 0; i < dispatched; i++ {
		<-p.doneChan
	}
}
