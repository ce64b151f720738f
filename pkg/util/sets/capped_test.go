package sets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCappedSet(t *testing.T) {
	s := NewCappedSet[int](2)
	assert.True(t, s.Add(1))
	assert.False(t, s.Add(1))
	assert.True(t, s.Add(2))
	assert.False(t, s.Add(3), "full set must drop new items")
	assert.Equal(t, 2, s.Len())
	assert.False(t, s.Add(1), "present items stay present when full")
}
