package quant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindNearestColorTieBreaksToLowestIndex(t *testing.T) {
	q := New()
	q.numColors = 2
	q.nodes[0].avg = perceptualColor{0, 0, 0, 0}
	q.nodes[1].avg = perceptualColor{0, 0, 0, 0}

	idx := q.findNearestColor(perceptualColor{0, 0, 0, 0})
	assert.Equal(t, 0, idx)
}

func TestFindNearestColorFallsBackBeyondThreshold(t *testing.T) {
	q := New()
	q.numColors = 1
	q.nodes[0].avg = perceptualColor{100, 100, 100, 100}

	idx := q.findNearestColor(perceptualColor{0, 0, 0, 0})
	assert.Equal(t, 0, idx)
}

func TestFindNearestColorExported(t *testing.T) {
	q := New()
	require.NoError(t, q.Feed([]byte{10, 20, 30, 255, 200, 210, 220, 255}))
	q.Quantize(2)

	idx := q.FindNearestColor(10, 20, 30, 255)
	assert.GreaterOrEqual(t, idx, 0)
	assert.Less(t, idx, 2)
}

func TestMapImageRejectsShortBuffer(t *testing.T) {
	q := New()
	require.NoError(t, q.Feed([]byte{1, 2, 3, 255}))
	q.Quantize(1)

	_, err := q.MapImage(2, []byte{1, 2, 3, 255})
	assert.ErrorIs(t, err, ErrInvalidPixelBuffer)
}

func TestMapImageOrderedRejectsShortBuffer(t *testing.T) {
	q := New()
	require.NoError(t, q.Feed([]byte{1, 2, 3, 255}))
	q.Quantize(1)

	_, err := q.MapImageOrdered(2, 2, []byte{1, 2, 3, 255})
	assert.ErrorIs(t, err, ErrInvalidPixelBuffer)
}

func TestDeriveDitherScaleZeroForSoleNode(t *testing.T) {
	q := New()
	q.numColors = 1
	q.nodes[0].avg = perceptualColor{0.5, 0.5, 0.5, 0.5}

	scale := q.deriveDitherScale(perceptualColor{0.5, 0.5, 0.5, 0.5})
	assert.Equal(t, perceptualColor{}, scale)
}

func TestDeriveDitherScaleNonZeroBetweenTwoNodes(t *testing.T) {
	q := New()
	q.numColors = 2
	q.nodes[0].avg = perceptualColor{0, 0, 0, 0}
	q.nodes[1].avg = perceptualColor{1, 1, 1, 1}

	scale := q.deriveDitherScale(perceptualColor{0.5, 0.5, 0.5, 0.5})
	assert.Greater(t, scale.r+scale.g+scale.b+scale.a, 0.0)
}
