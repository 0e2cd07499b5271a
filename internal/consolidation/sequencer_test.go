package consolidation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequence(t *testing.T) {
	stops := []Stop{{OrderID: 1, Sequence: 9}, {OrderID: 2, Sequence: 9}, {OrderID: 3}}

	out := Sequence(stops)

	assert.Equal(t, []int{1, 2, 3}, sequences(out))
	assert.Equal(t, 9, stops[0].Sequence, "input must not be mutated")
}

func TestResequence(t *testing.T) {
	stops := []Stop{
		{OrderID: 1, Sequence: 4},
		{OrderID: 2, Sequence: 0},
		{OrderID: 3, Sequence: 2},
		{OrderID: 4, Sequence: 2},
	}

	out := Resequence(stops)

	assert.Equal(t, []int{1, 2, 3, 4}, sequences(out))
	assert.Equal(t, []int64{3, 4, 1, 2}, []int64{out[0].OrderID, out[1].OrderID, out[2].OrderID, out[3].OrderID})
}

func TestContiguous(t *testing.T) {
	assert.True(t, Contiguous(nil))
	assert.True(t, Contiguous([]Stop{{Sequence: 2}, {Sequence: 1}}))
	assert.False(t, Contiguous([]Stop{{Sequence: 1}, {Sequence: 1}}))
	assert.False(t, Contiguous([]Stop{{Sequence: 0}, {Sequence: 1}}))
	assert.False(t, Contiguous([]Stop{{Sequence: 1}, {Sequence: 3}}))
}

func sequences(stops []Stop) []int {
	out := make([]int, len(stops))
	for i, s := range stops {
		out[i] = s.Sequence
	}
	return out
}
