package generic

import "sync"

// Pool is a typed wrapper around sync.Pool. Values returned by Get may be
// freshly generated or recycled; callers reset state before use.
type Pool[T any] struct {
	pool sync.Pool
}

// NewPool creates a pool that calls generate when empty.
func NewPool[T any](generate func() T) *Pool[T] {
	return &Pool[T]{
		pool: sync.Pool{
			New: func() any {
				return generate()
			},
		},
	}
}

func (p *Pool[T]) Get() T {
	return p.pool.Get().(T)
}

func (p *Pool[T]) Put(value T) {
	p.pool.Put(value)
}
