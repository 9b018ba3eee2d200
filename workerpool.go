package main

import "github.com/remeh/sizedwaitgroup"

// WorkerPool bounds concurrent offload of the per-session work generated
// when a new Job is broadcast (coinbase-halves rebinding and message
// encoding per recipient). The broadcasting caller blocks while the pool is
// at capacity and, via Wait, until every recipient has been handled.
type WorkerPool struct {
	swg sizedwaitgroup.SizedWaitGroup
}

func NewWorkerPool(size int) *WorkerPool {
	if size < 1 {
		size = 1
	}
	return &WorkerPool{swg: sizedwaitgroup.New(size)}
}

// Go runs fn on the pool, blocking only if the pool is already at capacity.
func (p *WorkerPool) Go(fn func()) {
	p.swg.Add()
	go func() {
		defer p.swg.Done()
		fn()
	}()
}

// Wait blocks until every fn passed to Go has returned.
func (p *WorkerPool) Wait() {
	p.swg.Wait()
}
