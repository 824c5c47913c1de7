package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtentEmpty(t *testing.T) {
	assert.True(t, Extent{}.Empty())
	assert.True(t, Extent{0, 600}.Empty())
	assert.True(t, Extent{800, 0}.Empty())
	assert.False(t, Extent{1, 1}.Empty())
	assert.Equal(t, "800x600", Extent{800, 600}.String())
}

func TestResizeSignalTake(t *testing.T) {
	var s ResizeSignal
	assert.False(t, s.Take())

	s.Raise()
	s.Raise()
	assert.True(t, s.Pending())
	assert.True(t, s.Take())
	assert.False(t, s.Pending())
	assert.False(t, s.Take())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "out of date", StatusOutOfDate.String())
	assert.Equal(t, "Status(7)", Status(7).String())
}
