// Package parallel runs data-parallel kernels over index ranges on a
// persistent pool of worker goroutines.
package parallel

import (
	"runtime"
	"sync"
)

// DefaultThreshold is the minimum range length worth splitting across
// workers. Below this, running inline is faster than the channel handoff.
const DefaultThreshold = 256

// ChunkFunc processes indices [start, end). slot identifies the chunk's
// position in the split and is in [0, Workers()); two chunks of the same Run
// never share a slot, so it can index per-worker scratch buffers.
type ChunkFunc func(slot, start, end int)

// workChunk is a range of indices for one worker.
type workChunk struct {
	slot, start, end int
	fn               ChunkFunc
}

// Pool holds persistent worker goroutines. A nil *Pool runs everything
// inline on the calling goroutine.
type Pool struct {
	// Threshold is the range length below which Run stays on the caller.
	Threshold int

	numWorkers int

	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool

	// runMu serialises Run calls so chunk completions are not mixed up.
	runMu sync.Mutex
}

// NewPool creates a pool with the given number of workers (0 = GOMAXPROCS).
// Workers start lazily on the first parallel Run.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pool{
		Threshold:  DefaultThreshold,
		numWorkers: workers,
	}
}

// Workers returns the number of chunk slots a Run may use.
func (p *Pool) Workers() int {
	if p == nil {
		return 1
	}
	return p.numWorkers
}

// start launches persistent worker goroutines.
func (p *Pool) start() {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// Stop signals all workers to exit and waits for them.
func (p *Pool) Stop() {
	if p == nil {
		return
	}
	p.runMu.Lock()
	defer p.runMu.Unlock()

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
func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			chunk.fn(chunk.slot, chunk.start, chunk.end)
			p.doneChan <- struct{}{}
		}
	}
}

// Run splits [0, n) into at most Workers() contiguous chunks and calls fn for
// each. It returns only after every chunk has finished, so writes made by fn
// are visible to the caller and to the next Run.
func (p *Pool) Run(n int, fn ChunkFunc) {
	if n <= 0 {
		return
	}
	if p == nil || p.numWorkers == 1 || n < p.Threshold {
		fn(0, 0, n)
		return
	}

	p.runMu.Lock()
	defer p.runMu.Unlock()

	if !p.running {
		p.start()
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

		p.workChan <- workChunk{slot: w, start: start, end: end, fn: fn}
		dispatched++
	}

	for i := 0; i < dispatched; i++ {
		<-p.doneChan
	}
}

// For calls fn(i) for every i in [0, n) using Run.
func (p *Pool) For(n int, fn func(i int)) {
	p.Run(n, func(_, start, end int) {
		for i := start; i < end; i++ {
			fn(i)
		}
	})
}
