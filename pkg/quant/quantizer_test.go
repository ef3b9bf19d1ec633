package quant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidPixels(n int, r, g, b, a byte) []byte {
	out := make([]byte, n*4)
	for i := 0; i < n; i++ {
		out[i*4+0] = r
		out[i*4+1] = g
		out[i*4+2] = b
		out[i*4+3] = a
	}
	return out
}

func TestQuantizeSingleSolidColor(t *testing.T) {
	q := New()
	require.NoError(t, q.Feed(solidPixels(64, 200, 100, 50, 255)))
	q.Quantize(16)

	pal := q.GetPalette(16)
	require.Len(t, pal, 64)

	// A single distinct color gives quantize_ex exactly one histogram
	// entry to work with; every further "split" it's asked to perform
	// just relocates that one entry to a fresh node, leaving the node
	// behind it empty but still reporting the same color (sumNode
	// deliberately doesn't reset avg on an empty node). quantize_ex has
	// no stopping condition, so all 16 requested entries end up
	// reporting the solid color — none are zero.
	for i := 0; i < 16; i++ {
		entry := pal[i*4 : i*4+4]
		assert.InDelta(t, 200, int(entry[0]), 2, "entry %d red", i)
		assert.InDelta(t, 100, int(entry[1]), 2, "entry %d green", i)
		assert.InDelta(t, 50, int(entry[2]), 2, "entry %d blue", i)
		assert.Equal(t, byte(255), entry[3], "entry %d alpha", i)
	}

	out, err := q.MapImageOrdered(8, 8, solidPixels(64, 200, 100, 50, 255))
	require.NoError(t, err)
	for _, idx := range out {
		assert.Equal(t, 0, idx)
	}
}

func TestQuantizeTwoColorCheckerboard(t *testing.T) {
	// 2x2: (255,0,0,255), (0,0,255,255) alternating.
	data := []byte{
		255, 0, 0, 255, 0, 0, 255, 255,
		0, 0, 255, 255, 255, 0, 0, 255,
	}
	q := New()
	require.NoError(t, q.Feed(data))
	q.Quantize(2)

	assert.Equal(t, 2, q.NumColors())

	out, err := q.MapImageOrdered(2, 2, data)
	require.NoError(t, err)
	require.Len(t, out, 4)

	counts := map[int]int{}
	for _, idx := range out {
		counts[idx]++
	}
	assert.Len(t, counts, 2)
	for _, c := range counts {
		assert.Equal(t, 2, c)
	}

	pal := q.GetPalette(2)
	decoded := [][]byte{pal[0:4], pal[4:8]}
	wantRed := []byte{255, 0, 0, 255}
	wantBlue := []byte{0, 0, 255, 255}
	matched := map[string]bool{}
	for _, entry := range decoded {
		if closeColor(entry, wantRed) {
			matched["red"] = true
		}
		if closeColor(entry, wantBlue) {
			matched["blue"] = true
		}
	}
	assert.True(t, matched["red"], "expected a palette entry near red, got %v", decoded)
	assert.True(t, matched["blue"], "expected a palette entry near blue, got %v", decoded)
}

func closeColor(got, want []byte) bool {
	for i := range want {
		d := int(got[i]) - int(want[i])
		if d < -2 || d > 2 {
			return false
		}
	}
	return true
}

// TestClampOverRequest checks quantize_ex's one real clamp: requests above
// 256 are capped at 256. It does NOT clamp to the number of distinct fed
// colors — quantize_ex has no stopping condition based on whether a node
// has anything useful left to split, so asking for more colors than there
// are distinct inputs still grows NumColors all the way to the request
// (here: 40 distinct colors, genuinely clamped only by the 256 ceiling).
func TestClampOverRequest(t *testing.T) {
	q := New()
	var data []byte
	for i := 0; i < 40; i++ {
		data = append(data, byte(i*6), byte(i*3), byte(255-i*6), 255)
	}
	require.NoError(t, q.Feed(data))

	q.Quantize(500)
	assert.Equal(t, 256, q.NumColors())
}

func TestGetPaletteShape(t *testing.T) {
	q := New()
	require.NoError(t, q.Feed(solidPixels(4, 10, 20, 30, 255)))
	q.Quantize(5)

	pal := q.GetPalette(5)
	assert.Len(t, pal, 20)
}

func TestIndexRangeWithinNumColors(t *testing.T) {
	q := New()
	var data []byte
	for i := 0; i < 30; i++ {
		data = append(data, byte(i*8), byte(i*5), byte(i*2), 255)
	}
	require.NoError(t, q.Feed(data))
	q.Quantize(6)

	out, err := q.MapImage(30, data)
	require.NoError(t, err)
	for _, idx := range out {
		assert.Less(t, idx, q.NumColors())
		assert.GreaterOrEqual(t, idx, 0)
	}

	ordered, err := q.MapImageOrdered(30, 1, data)
	require.NoError(t, err)
	for _, idx := range ordered {
		assert.Less(t, idx, q.NumColors())
	}
}

func TestPlainMapperMatchesDirectNearest(t *testing.T) {
	q := New()
	var data []byte
	for i := 0; i < 20; i++ {
		data = append(data, byte(i*12), byte(255-i*7), byte(i*3), 255)
	}
	require.NoError(t, q.Feed(data))
	q.Quantize(5)

	out, err := q.MapImage(20, data)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		want := q.FindNearestColor(data[i*4], data[i*4+1], data[i*4+2], data[i*4+3])
		assert.Equal(t, want, out[i])
	}
}

func TestMapImageOrderedDeterministic(t *testing.T) {
	q := New()
	var data []byte
	for i := 0; i < 64; i++ {
		data = append(data, byte(i*4), byte(i*2), byte(255-i*3), 255)
	}
	require.NoError(t, q.Feed(data))
	q.Quantize(8)

	a, err := q.MapImageOrdered(8, 8, data)
	require.NoError(t, err)
	b, err := q.MapImageOrdered(8, 8, data)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestExactIdentityCachingWithinBayerCell(t *testing.T) {
	q := New()
	// A 4x4 raster of byte-identical pixels; the four at even x, even y
	// land on Bayer cell 0.
	data := make([]byte, 0)
	for i := 0; i < 16; i++ {
		data = append(data, byte(i*16), byte(i*8), byte(255-i*16), 255)
	}
	require.NoError(t, q.Feed(data))
	q.Quantize(4)

	w, h := 4, 4
	pixels := make([]byte, w*h*4)
	for i := 0; i < w*h; i++ {
		copy(pixels[i*4:i*4+4], data[0:4])
	}
	out, err := q.MapImageOrdered(w, h, pixels)
	require.NoError(t, err)

	var cell0 []int
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x&1) == 0 && (y&1) == 0 {
				cell0 = append(cell0, out[y*w+x])
			}
		}
	}
	for _, idx := range cell0 {
		assert.Equal(t, cell0[0], idx)
	}
}

func TestTransparencyZeroAlphaContributesNoRGBWeight(t *testing.T) {
	q := New()
	data := append(solidPixels(10, 10, 20, 30, 255), solidPixels(10, 255, 255, 255, 0)...)
	require.NoError(t, q.Feed(data))
	q.Quantize(2)

	// With transparency mode, the a=0 entries premultiply to (0,0,0,0);
	// the opaque color should still recover losslessly.
	pal := q.GetPalette(2)
	found := false
	for i := 0; i < 2; i++ {
		if closeColor(pal[i*4:i*4+4], []byte{10, 20, 30, 255}) {
			found = true
		}
	}
	assert.True(t, found, "expected an un-premultiplied opaque entry near (10,20,30,255), got %v", pal)
}

func TestMeanErrorNonIncreasingUnderOptimization(t *testing.T) {
	q := New()
	var data []byte
	for i := 0; i < 50; i++ {
		data = append(data, byte(i*5), byte(255-i*4), byte(i*2), 255)
	}
	require.NoError(t, q.Feed(data))
	q.Quantize(6)

	prev := q.GetMeanError()
	for i := 0; i < 5; i++ {
		q.OptimizePalette(1)
		cur := q.GetMeanError()
		assert.LessOrEqual(t, cur, prev+1e-9)
		prev = cur
	}
}

func TestFeedInvalidBufferLength(t *testing.T) {
	q := New()
	err := q.Feed([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrInvalidPixelBuffer)
}

func TestFeedAccumulatesAcrossCalls(t *testing.T) {
	q := New()
	require.NoError(t, q.Feed(solidPixels(3, 1, 2, 3, 255)))
	require.NoError(t, q.Feed(solidPixels(4, 1, 2, 3, 255)))
	q.Quantize(1)
	assert.Equal(t, uint32(7), q.nodes[0].count)
}

func TestSetPaletteMarksOptimized(t *testing.T) {
	q := New()
	require.NoError(t, q.Feed(solidPixels(4, 5, 6, 7, 255)))
	pal := make([]byte, 8)
	pal[0], pal[1], pal[2], pal[3] = 10, 20, 30, 255
	pal[4], pal[5], pal[6], pal[7] = 200, 210, 220, 255
	q.SetPalette(pal, 2)
	assert.True(t, q.optimized)

	out, err := q.MapImage(4, solidPixels(4, 10, 20, 30, 255))
	require.NoError(t, err)
	for _, idx := range out {
		assert.Equal(t, 0, idx)
	}
}
