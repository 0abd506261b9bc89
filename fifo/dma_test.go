package fifo

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/usbfifo/pkg"
)

func claim(t *testing.T, f *FIFO) *DMA {
	t.Helper()
	d, err := f.ClaimDMA()
	require.NoError(t, err)
	t.Cleanup(d.Release)
	return d
}

func TestClaimDMA(t *testing.T) {
	f := newTestFIFO(t, 4, 1, false)

	d, err := f.ClaimDMA()
	require.NoError(t, err)
	assert.Same(t, f, d.FIFO())

	_, err = f.ClaimDMA()
	assert.ErrorIs(t, err, pkg.ErrBusy)

	d.Release()
	d.Release()
	assert.Nil(t, d.FIFO())

	// A released handle does nothing.
	f.WriteN([]byte{1, 2}, 2)
	win, n := d.LinearReadInfo(0, 2)
	assert.Nil(t, win)
	assert.Zero(t, n)
	d.AdvanceReadPointer(1)
	d.AdvanceWritePointer(1)
	d.BackwardWritePointer(1)
	assert.Equal(t, uint16(2), f.Count())

	d2, err := f.ClaimDMA()
	require.NoError(t, err)
	d2.Release()
}

func TestLinearReadInfo(t *testing.T) {
	f := newTestFIFO(t, 5, 3, false)
	d := claim(t, f)

	win, n := d.LinearReadInfo(0, 5)
	assert.Nil(t, win, "empty")
	assert.Zero(t, n)

	moveCursors(t, f, 3)
	items := encode(3, 10, 11, 12, 13)
	require.Equal(t, uint16(4), f.WriteN(items, 4))

	// Stored items occupy slots 3, 4, 0, 1.
	first, n1 := d.LinearReadInfo(0, 5)
	require.Equal(t, uint16(2), n1)
	assert.Len(t, first, 6)
	second, n2 := d.LinearReadInfo(n1, 5-n1)
	require.Equal(t, uint16(2), n2)

	peeked := make([]byte, 12)
	require.Equal(t, uint16(4), f.PeekAtN(0, peeked, 4))
	assert.Equal(t, peeked, append(append([]byte{}, first...), second...))
	assert.Equal(t, items, peeked)

	win, n = d.LinearReadInfo(4, 1)
	assert.Nil(t, win, "offset past count")
	assert.Zero(t, n)

	win, n = d.LinearReadInfo(1, 1)
	assert.Equal(t, uint16(1), n)
	assert.Equal(t, encode(3, 11), win)

	d.AdvanceReadPointer(n1)
	assert.Equal(t, uint16(2), f.Count())
	got := make([]byte, 6)
	require.Equal(t, uint16(2), f.ReadN(got, 2))
	assert.Equal(t, encode(3, 12, 13), got)
}

func TestLinearReadInfoFull(t *testing.T) {
	f := newTestFIFO(t, 4, 1, false)
	d := claim(t, f)

	moveCursors(t, f, 2)
	f.WriteN([]byte{1, 2, 3, 4}, 4)

	win, n := d.LinearReadInfo(0, 4)
	assert.Equal(t, uint16(2), n)
	assert.Equal(t, []byte{1, 2}, win)
	assert.Equal(t, 2, cap(win), "window must not reach past its items")
}

func TestLinearWriteInfo(t *testing.T) {
	f := newTestFIFO(t, 5, 2, false)
	d := claim(t, f)
	moveCursors(t, f, 3)

	first, n1 := d.LinearWriteInfo(0, 5)
	require.Equal(t, uint16(2), n1)
	second, n2 := d.LinearWriteInfo(n1, 5-n1)
	require.Equal(t, uint16(3), n2)

	items := encode(2, seq(1, 5)...)
	k := copy(first, items)
	copy(second, items[k:])
	d.AdvanceWritePointer(n1 + n2)

	assert.True(t, f.Full())
	win, n := d.LinearWriteInfo(0, 1)
	assert.Nil(t, win, "no space")
	assert.Zero(t, n)

	got := make([]byte, 10)
	require.Equal(t, uint16(5), f.ReadN(got, 5))
	assert.Equal(t, items, got)
	assert.Equal(t, uint64(5+3), f.Stats().Written)
}

func TestLinearWriteInfoStopsAtReader(t *testing.T) {
	f := newTestFIFO(t, 6, 1, false)
	d := claim(t, f)

	f.WriteN([]byte{1, 2, 3, 4}, 4)
	f.ReadN(make([]byte, 3), 3)
	f.WriteN([]byte{5, 6, 7}, 3)
	// Writer at slot 1, reader at slot 3.
	win, n := d.LinearWriteInfo(0, 6)
	assert.Equal(t, uint16(2), n)
	assert.Len(t, win, 2)
}

func TestLinearWriteInfoOverwritable(t *testing.T) {
	f := newTestFIFO(t, 4, 1, true)
	d := claim(t, f)
	f.WriteN([]byte{1, 2, 3, 4}, 4)

	win, n := d.LinearWriteInfo(0, 4)
	require.Equal(t, uint16(3), n, "capped one lap ahead of the reader")
	copy(win, []byte{5, 6, 7})
	d.AdvanceWritePointer(n)
	assert.True(t, f.Overflowed())

	win, n = d.LinearWriteInfo(0, 1)
	assert.Nil(t, win, "writer is as far ahead as the cursor space allows")
	assert.Zero(t, n)

	got := make([]byte, 4)
	require.Equal(t, uint16(4), f.ReadN(got, 4))
	assert.Equal(t, []byte{4, 5, 6, 7}, got)

	win, n = d.LinearWriteInfo(0, 9)
	assert.Nil(t, win, "more than two laps")
	assert.Zero(t, n)

	_, n = d.LinearWriteInfo(0, 8)
	assert.Equal(t, uint16(1), n, "empty, writer at the last slot")
}

// TestDMAOverwriteModel drives an overwritable FIFO through linear write
// windows, the way a circular receive DMA would, and checks every read
// against a queue model.
func TestDMAOverwriteModel(t *testing.T) {
	const depth, size = 5, 2
	f := newTestFIFO(t, depth, size, true)
	d := claim(t, f)
	rng := rand.New(rand.NewSource(7))

	var (
		model   []uint32
		next    uint32
		dropped uint64
	)
	for step := 0; step < 2000; step++ {
		if rng.Intn(3) > 0 {
			want := uint16(rng.Intn(depth) + 1)
			var got uint16
			for got < want {
				win, k := d.LinearWriteInfo(got, want-got)
				if k == 0 {
					break
				}
				copy(win, encode(size, seq(next, next+uint32(k)-1)...))
				next += uint32(k)
				got += k
			}
			d.AdvanceWritePointer(got)
			model = append(model, seq(next-uint32(got), next)[:got]...)
			require.LessOrEqual(t, len(model), 2*depth-1, "step %d", step)
		} else {
			if len(model) > depth {
				dropped += uint64(len(model) - depth)
				model = model[len(model)-depth:]
			}
			m := uint16(rng.Intn(depth) + 1)
			buf := make([]byte, int(m)*size)
			n := f.ReadN(buf, m)
			require.Equal(t, min(int(m), len(model)), int(n), "step %d", step)
			require.Equal(t, encode(size, model[:n]...), buf[:int(n)*size], "step %d", step)
			model = model[n:]
		}
		require.Equal(t, uint16(min(len(model), depth)), f.Count(), "step %d", step)
	}
	assert.Equal(t, dropped, f.Stats().Overwritten)
}

func TestBackwardPointers(t *testing.T) {
	f := newTestFIFO(t, 4, 1, false)
	d := claim(t, f)

	f.WriteN([]byte{1, 2, 3}, 3)
	d.BackwardWritePointer(1)
	assert.Equal(t, uint16(2), f.Count())

	item := make([]byte, 1)
	require.True(t, f.Read(item))
	assert.Equal(t, byte(1), item[0])

	d.BackwardReadPointer(1)
	got := make([]byte, 2)
	require.Equal(t, uint16(2), f.ReadN(got, 2))
	assert.Equal(t, []byte{1, 2}, got)

	// Backward across the start of the cursor space.
	f.Clear()
	d.BackwardReadPointer(2)
	assert.Equal(t, uint16(2), f.Count())
}

func TestDMACorrectReadPointer(t *testing.T) {
	buf := make([]byte, 8)
	f, err := New(buf, 4, 2, false)
	require.NoError(t, err)
	d := claim(t, f)

	// A circular DMA ignores the reader and runs six items ahead.
	for i := uint32(0); i < 6; i++ {
		copy(buf[(i%4)*2:], encode(2, i+1))
	}
	d.AdvanceWritePointer(6)
	require.True(t, f.Overflowed())
	assert.Equal(t, uint16(4), f.Count())

	d.CorrectReadPointer()
	assert.False(t, f.Overflowed())
	st := f.Stats()
	assert.Equal(t, uint64(1), st.Corrections)
	assert.Equal(t, uint64(2), st.Overwritten)

	win, n := d.LinearReadInfo(0, 4)
	require.Equal(t, uint16(2), n)
	assert.Equal(t, encode(2, 3, 4), win)
}
