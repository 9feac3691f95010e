package stages

import "github.com/pthm-cable/flip/parallel"

// Dispatcher runs stage kernels over an index range. A nil Dispatcher, or
// one without a pool, runs kernels on the calling goroutine.
type Dispatcher struct {
	pool *parallel.Pool
}

// NewDispatcher wraps a worker pool.
func NewDispatcher(pool *parallel.Pool) *Dispatcher {
	return &Dispatcher{pool: pool}
}

// Pool returns the underlying worker pool, which may be nil.
func (d *Dispatcher) Pool() *parallel.Pool {
	if d == nil {
		return nil
	}
	return d.pool
}

// Run invokes kernel once per index in [0, n) and returns after every
// invocation has completed.
func (d *Dispatcher) Run(n int, kernel func(i int)) {
	d.Pool().For(n, kernel)
}

// RunChecked is Run for kernels that can fail. Every invocation still runs;
// the error of the lowest failing index is returned.
func (d *Dispatcher) RunChecked(n int, kernel func(i int) error) error {
	errs := make([]error, d.Pool().Workers())
	first := make([]int, len(errs))
	d.Pool().Run(n, func(slot, start, end int) {
		for i := start; i < end; i++ {
			if err := kernel(i); err != nil && errs[slot] == nil {
				errs[slot] = err
				first[slot] = i
			}
		}
	})
	var err error
	lowest := n
	for s, e := range errs {
		if e != nil && first[s] < lowest {
			err, lowest = e, first[s]
		}
	}
	return err
}
