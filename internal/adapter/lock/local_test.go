package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_SerializesSameEquipment(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()

	var (
		inside  int32
		maxSeen int32
		wg      sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Lock(ctx, 1)
			if !assert.NoError(t, err) {
				return
			}
			defer release()

			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxSeen)
				if n <= m || atomic.CompareAndSwapInt32(&maxSeen, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxSeen)
}

func TestLocal_DifferentEquipmentDoesNotBlock(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()

	release1, err := l.Lock(ctx, 1)
	require.NoError(t, err)
	defer release1()

	timeout, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	release2, err := l.Lock(timeout, 2)
	require.NoError(t, err)
	release2()
}

func TestLocal_ContextCancelled(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()

	release, err := l.Lock(ctx, 1)
	require.NoError(t, err)

	timeout, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = l.Lock(timeout, 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	release()
	release() // second call is a no-op

	again, err := l.Lock(ctx, 1)
	require.NoError(t, err)
	again()
}
