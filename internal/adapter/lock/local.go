package lock

import (
	"context"
	"sync"

	"github.com/labtrack/labtrack/internal/ports"
)

// Local serializes booking per equipment inside one process.
type Local struct {
	mu    sync.Mutex
	slots map[int64]chan struct{}
}

func NewLocal() *Local {
	return &Local{slots: make(map[int64]chan struct{})}
}

var _ ports.EquipmentLocker = (*Local)(nil)

// Lock blocks until the equipment is free or ctx is done.
func (l *Local) Lock(ctx context.Context, equipmentID int64) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[equipmentID]
	if !ok {
		slot = make(chan struct{}, 1)
		l.slots[equipmentID] = slot
	}
	l.mu.Unlock()

	select {
	case slot <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() { <-slot })
	}, nil
}
