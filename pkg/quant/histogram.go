package quant

import "fmt"

// ErrInvalidPixelBuffer is returned when a caller hands the quantizer a
// pixel buffer whose length isn't a multiple of 4 (one byte per RGBA
// channel) or whose declared width*height doesn't match the buffer it
// came with. It is the only error the quantizer's hot path ever returns;
// everything else (empty histograms, degenerate split directions) is
// handled inline per the numeric-degeneracy rules in the algorithm itself.
var ErrInvalidPixelBuffer = fmt.Errorf("quant: pixel buffer length must be a multiple of 4")

const (
	hashBits = 16
	hashSize = 1 << hashBits
	hashMask = hashSize - 1

	noEntry = -1
)

// histogramEntry is one bucket of identical source RGBA quads. Its identity
// (r8,g8,b8,a8) is the exact, unmasked input byte pattern; its perceptual
// color is derived from the channel-masked bytes, so two entries with
// different identities can still carry the same perceptual color when
// numBitsPerChannel < 8. This asymmetry is load-bearing: see the
// channel-masking note on Histogram.feed.
type histogramEntry struct {
	r8, g8, b8, a8 uint8

	color perceptualColor
	count uint32

	// palIndex caches the plain (non-dithered) mapper's result for this
	// exact color. -1 means "not computed yet".
	palIndex int32

	// hasDitherScale/ditherScale cache the per-entry dither vector derived
	// by the ordered mapper on first encounter; ditherIndex[d] caches the
	// resulting palette index for Bayer cell d once computed.
	hasDitherScale bool
	ditherScale    perceptualColor
	ditherIndex    [4]int32

	nextInBucket int32
	nextInNode   int32
}

// Histogram is the quantizer's hash table from literal 32-bit RGBA quads to
// histogram entries. It owns the arena all entries live in; nodes reference
// entries by index, never by pointer, so splitting a node's chain is just
// re-threading nextInNode links.
type Histogram struct {
	buckets [hashSize]int32
	entries []histogramEntry
}

func newHistogram() *Histogram {
	h := &Histogram{}
	for i := range h.buckets {
		h.buckets[i] = noEntry
	}
	return h
}

// makeHash computes the 16-bit bucket index for a packed 32-bit RGBA value
// by five iterations of ExoQuant's mixing step. The computation is carried
// out in uint32 arithmetic so the implicit mod-2^32 wraparound matches the
// reference exactly.
func makeHash(rgba uint32) uint32 {
	for i := 0; i < 4; i++ {
		rgba -= (rgba >> 13) | (rgba << 19)
	}
	rgba -= (rgba >> 13) | (rgba << 19)
	return rgba & hashMask
}

func packRGBA(r, g, b, a uint8) uint32 {
	return uint32(r) | uint32(g)<<8 | uint32(b)<<16 | uint32(a)<<24
}

// findEntry locates the histogram entry with the exact identity (r,g,b,a),
// if any. Identity is always the raw unmasked bytes, independent of
// numBitsPerChannel.
func (h *Histogram) findEntry(r, g, b, a uint8) int32 {
	bucket := makeHash(packRGBA(r, g, b, a))
	idx := h.buckets[bucket]
	for idx != noEntry {
		e := &h.entries[idx]
		if e.r8 == r && e.g8 == g && e.b8 == b && e.a8 == a {
			return idx
		}
		idx = e.nextInBucket
	}
	return noEntry
}

// feed folds nPixels RGBA quads from data into the histogram, masking each
// channel by channelMask only when deriving the perceptual color — never
// when matching identity. Existing entries accumulate count; new colors
// get a fresh arena slot chained onto both their hash bucket and (by the
// caller, later) their owning node.
func (h *Histogram) feed(data []byte, channelMask uint8, transparency bool) error {
	if len(data)%4 != 0 {
		return fmt.Errorf("%w: got %d bytes", ErrInvalidPixelBuffer, len(data))
	}
	nPixels := len(data) / 4

	for i := 0; i < nPixels; i++ {
		r := data[i*4+0]
		g := data[i*4+1]
		b := data[i*4+2]
		a := data[i*4+3]

		bucket := makeHash(packRGBA(r, g, b, a))
		idx := h.buckets[bucket]
		var found int32 = noEntry
		for idx != noEntry {
			e := &h.entries[idx]
			if e.r8 == r && e.g8 == g && e.b8 == b && e.a8 == a {
				found = idx
				break
			}
			idx = e.nextInBucket
		}

		if found != noEntry {
			h.entries[found].count++
			continue
		}

		entry := histogramEntry{
			r8: r, g8: g, b8: b, a8: a,
			color:        newPerceptualColor(r, g, b, a, channelMask, transparency),
			count:        1,
			palIndex:     noEntry,
			nextInBucket: h.buckets[bucket],
			nextInNode:   noEntry,
		}
		entry.ditherIndex = [4]int32{noEntry, noEntry, noEntry, noEntry}

		h.entries = append(h.entries, entry)
		newIdx := int32(len(h.entries) - 1)
		h.buckets[bucket] = newIdx
	}

	return nil
}
