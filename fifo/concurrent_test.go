package fifo

import (
	"encoding/binary"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingleProducerSingleConsumer(t *testing.T) {
	const total = 20000
	f := newTestFIFO(t, 16, 4, false)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		item := make([]byte, 4)
		for v := uint32(0); v < total; {
			binary.LittleEndian.PutUint32(item, v)
			if f.Write(item) {
				v++
				continue
			}
			runtime.Gosched()
		}
	}()

	buf := make([]byte, 4*5)
	next := uint32(0)
	for next < total {
		n := f.ReadN(buf, 5)
		if n == 0 {
			runtime.Gosched()
			continue
		}
		for i := 0; i < int(n); i++ {
			v := binary.LittleEndian.Uint32(buf[4*i:])
			require.Equal(t, next, v)
			next++
		}
	}
	wg.Wait()

	assert.True(t, f.Empty())
	st := f.Stats()
	assert.Equal(t, uint64(total), st.Written)
	assert.Equal(t, uint64(total), st.Read)
	assert.Zero(t, st.Corrections)
}

func TestMultipleProducers(t *testing.T) {
	const producers, perProducer = 4, 5000
	f := newTestFIFO(t, 32, 4, false, WithWriteLock(&sync.Mutex{}))

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(id uint32) {
			defer wg.Done()
			item := make([]byte, 4)
			for v := uint32(0); v < perProducer; {
				binary.LittleEndian.PutUint32(item, id<<24|v)
				if f.Write(item) {
					v++
					continue
				}
				runtime.Gosched()
			}
		}(uint32(p))
	}

	next := make([]uint32, producers)
	item := make([]byte, 4)
	for got := 0; got < producers*perProducer; {
		if !f.Read(item) {
			runtime.Gosched()
			continue
		}
		v := binary.LittleEndian.Uint32(item)
		id, seq := v>>24, v&0xFFFFFF
		require.Less(t, int(id), producers)
		require.Equal(t, next[id], seq, "producer %d out of order", id)
		next[id]++
		got++
	}
	wg.Wait()

	for id, n := range next {
		assert.Equal(t, uint32(perProducer), n, "producer %d", id)
	}
}

// TestConcurrentObservers reads the counters while both sides run.
func TestConcurrentObservers(t *testing.T) {
	const total = 5000
	f := newTestFIFO(t, 8, 1, false)
	done := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for v := 0; v < total; {
			if f.Write([]byte{byte(v)}) {
				v++
			} else {
				runtime.Gosched()
			}
		}
	}()
	go func() {
		defer wg.Done()
		item := make([]byte, 1)
		for v := 0; v < total; {
			if f.Read(item) {
				v++
			} else {
				runtime.Gosched()
			}
		}
	}()
	go func() {
		wg.Wait()
		close(done)
	}()

	for {
		select {
		case <-done:
			assert.True(t, f.Empty())
			return
		default:
			assert.LessOrEqual(t, f.Count(), f.Depth())
			_ = f.Stats()
			runtime.Gosched()
		}
	}
}
