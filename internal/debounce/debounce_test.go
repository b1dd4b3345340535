package debounce

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NehoraiHadad/trail/internal/clock"
)

func newCell(t *testing.T) (*Cell[float64], *clock.Mock) {
	t.Helper()
	clk := clock.NewMock(time.Unix(0, 0))
	return New[float64](DefaultWindow, clk.Now), clk
}

func TestCellCoalescesRapidPuts(t *testing.T) {
	c, clk := newCell(t)

	assert.False(t, c.Put(10))
	clk.Advance(5 * time.Millisecond)
	assert.True(t, c.Put(20), "second put overwrites the first")
	clk.Advance(5 * time.Millisecond)
	assert.True(t, c.Put(30))

	_, ok := c.Ready()
	require.False(t, ok, "window restarts on every put")

	clk.Advance(DefaultWindow)
	v, ok := c.Ready()
	require.True(t, ok)
	assert.Equal(t, 30.0, v)
	assert.False(t, c.Pending())
	assert.Equal(t, uint64(3), c.Puts())
}

func TestCellTakeIgnoresWindow(t *testing.T) {
	c, _ := newCell(t)
	c.Put(7)

	v, ok := c.Take()
	require.True(t, ok)
	assert.Equal(t, 7.0, v)

	_, ok = c.Take()
	assert.False(t, ok, "cell is empty after take")
}

func TestCellCancel(t *testing.T) {
	c, clk := newCell(t)
	c.Put(1)
	assert.True(t, c.Cancel())
	assert.False(t, c.Cancel())

	clk.Advance(time.Second)
	_, ok := c.Ready()
	assert.False(t, ok)
}

func TestCellZeroWindow(t *testing.T) {
	c := New[int](0, nil)
	c.Put(3)
	v, ok := c.Ready()
	require.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestCellDue(t *testing.T) {
	c, clk := newCell(t)
	_, ok := c.Due()
	assert.False(t, ok)

	c.Put(1)
	due, ok := c.Due()
	require.True(t, ok)
	assert.Equal(t, clk.Now().Add(DefaultWindow), due)

	v, ok := c.Peek()
	assert.True(t, ok)
	assert.Equal(t, 1.0, v)
}
