package quant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestHistogram(t *testing.T, pixels [][4]uint8) (*Histogram, *node) {
	t.Helper()
	h := newHistogram()
	var data []byte
	for _, p := range pixels {
		data = append(data, p[0], p[1], p[2], p[3])
	}
	require.NoError(t, h.feed(data, 0xFF, true))

	n := &node{headEntry: noEntry, splitEntry: noEntry}
	for i := len(h.entries) - 1; i >= 0; i-- {
		h.entries[i].nextInNode = n.headEntry
		n.headEntry = int32(i)
	}
	return h, n
}

func TestSumNodeSingleEntry(t *testing.T) {
	h, n := buildTestHistogram(t, [][4]uint8{{10, 20, 30, 255}})
	sumNode(h, n)

	assert.Equal(t, uint32(1), n.count)
	assert.InDelta(t, 0, n.err, 1e-9)
	assert.InDelta(t, 0, n.vdif, 1e-9)
}

func TestSumNodeEntryOrderPreservedCount(t *testing.T) {
	h, n := buildTestHistogram(t, [][4]uint8{
		{10, 20, 30, 255},
		{200, 210, 220, 255},
		{50, 60, 70, 255},
	})
	sumNode(h, n)

	assert.Equal(t, uint32(3), n.count)

	entries := n.entries(h)
	assert.Len(t, entries, 3)
}

func TestSumNodeProducesPositiveErrorForSpread(t *testing.T) {
	h, n := buildTestHistogram(t, [][4]uint8{
		{0, 0, 0, 255},
		{255, 255, 255, 255},
	})
	sumNode(h, n)
	assert.Greater(t, n.err, 0.0)
	assert.Greater(t, n.vdif, 0.0)
}

func TestSortByKeyOrdersAscending(t *testing.T) {
	h, n := buildTestHistogram(t, [][4]uint8{
		{200, 0, 0, 255},
		{10, 0, 0, 255},
		{100, 0, 0, 255},
	})
	n.sortByKey(h, sortByRed)

	entries := n.entries(h)
	require.Len(t, entries, 3)
	assert.Equal(t, uint8(10), h.entries[entries[0]].r8)
	assert.Equal(t, uint8(100), h.entries[entries[1]].r8)
	assert.Equal(t, uint8(200), h.entries[entries[2]].r8)
}

func TestSortByKeySingleEntryNoop(t *testing.T) {
	h, n := buildTestHistogram(t, [][4]uint8{{1, 2, 3, 255}})
	before := n.headEntry
	n.sortByKey(h, sortByRed)
	assert.Equal(t, before, n.headEntry)
}

func TestRethreadMatchesOrder(t *testing.T) {
	h, n := buildTestHistogram(t, [][4]uint8{
		{1, 0, 0, 255},
		{2, 0, 0, 255},
		{3, 0, 0, 255},
	})
	order := []int32{2, 0, 1}
	n.rethread(h, order)

	got := n.entries(h)
	assert.Equal(t, order, got)
}

func TestResidualZeroVarianceForSingleEntry(t *testing.T) {
	sum := perceptualColor{5, 5, 5, 5}
	sum2 := perceptualColor{25, 25, 25, 25}
	r := residual(sum2, sum, 1)
	assert.InDelta(t, 0, r.r, 1e-9)
	assert.InDelta(t, 0, r.g, 1e-9)
	assert.InDelta(t, 0, r.b, 1e-9)
	assert.InDelta(t, 0, r.a, 1e-9)
}

func TestNodeCapacityIsFixed(t *testing.T) {
	pool := newNodePool()
	assert.Len(t, pool, 256)
	for _, n := range pool {
		assert.Equal(t, int32(noEntry), n.headEntry)
		assert.Equal(t, int32(noEntry), n.splitEntry)
	}
}
