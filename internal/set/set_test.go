package set_test

import (
	"slices"
	"testing"

	"deedles.dev/wlcomp/internal/set"
	"github.com/stretchr/testify/assert"
)

func TestSet(t *testing.T) {
	s := set.New(1, 2, 3)
	assert.True(t, s.Has(2))
	assert.False(t, s.Has(4))

	s.Add(4)
	assert.True(t, s.Has(4))

	assert.True(t, s.Delete(1))
	assert.False(t, s.Delete(1))
	assert.False(t, s.Has(1))

	assert.Equal(t, []int{2, 3, 4}, slices.Sorted(s.All()))
}
