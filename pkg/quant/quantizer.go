package quant

import "math"

// Quantizer is an ExoQuant v0.7 adaptive color quantizer. It owns a fixed
// 2^16-bucket hash table, a pool of up to 256 cluster nodes, and every
// histogram entry fed to it. A Quantizer is strictly single-threaded and
// sequential: Feed, Quantize, QuantizeHQ, OptimizePalette and the mapper
// methods all mutate instance state, so callers sharing one instance
// across goroutines must serialize access externally.
type Quantizer struct {
	hist              *Histogram
	nodes             [256]node
	numColors         int
	numBitsPerChannel uint
	optimized         bool
	transparency      bool
}

// New returns a quantizer with 8 bits per channel and transparency
// (RGB-premultiplied-by-alpha) mode enabled, matching ExoQuant's defaults.
func New() *Quantizer {
	return &Quantizer{
		hist:              newHistogram(),
		nodes:             newNodePool(),
		numBitsPerChannel: 8,
		transparency:      true,
	}
}

// DisableTransparency switches off alpha premultiplication in perceptual
// space. It must be called before any Feed to have coherent meaning —
// changing it afterward does not retroactively reinterpret already-fed
// histogram entries.
func (q *Quantizer) DisableTransparency() {
	q.transparency = false
}

func (q *Quantizer) channelMask() uint8 {
	return uint8(uint(0xFF00) >> q.numBitsPerChannel)
}

// Feed folds a byte stream of consecutive RGBA quads into the histogram.
// It may be called multiple times and accumulates pixel counts across
// calls. Returns ErrInvalidPixelBuffer if len(data) isn't a multiple of 4.
func (q *Quantizer) Feed(data []byte) error {
	if err := q.hist.feed(data, q.channelMask(), q.transparency); err != nil {
		return err
	}
	q.optimized = false
	return nil
}

// Quantize grows the palette from its current size up to min(n, 256)
// colors by repeatedly splitting the node with the greatest estimated
// error reduction. It is safe to call repeatedly with increasing n.
//
// There is no early stop once every live node has stopped being
// worth splitting (e.g. the image has fewer distinct colors than n):
// NumColors is always driven up to min(n, 256) regardless, and any
// remaining "splits" relocate a singleton node's one entry wholesale,
// leaving the node it came from empty. See DESIGN.md Open Questions
// 6-7 for the resulting GetPalette behavior.
func (q *Quantizer) Quantize(n int) {
	q.quantizeEx(n, false)
}

// QuantizeHQ behaves like Quantize but runs one Lloyd-relaxation pass
// after every single split, trading speed for a tighter-fitting palette.
func (q *Quantizer) QuantizeHQ(n int) {
	q.quantizeEx(n, true)
}

func (q *Quantizer) quantizeEx(n int, hq bool) {
	if n > 256 {
		n = 256
	}

	if q.numColors == 0 {
		root := &q.nodes[0]
		root.headEntry = noEntry
		for b := range q.hist.buckets {
			idx := q.hist.buckets[b]
			for idx != noEntry {
				next := q.hist.entries[idx].nextInBucket
				q.hist.entries[idx].nextInNode = root.headEntry
				root.headEntry = idx
				idx = next
			}
		}
		sumNode(q.hist, root)
		q.numColors = 1
	}

	for i := q.numColors; i < n; i++ {
		besti := 0
		beste := q.nodes[0].vdif
		for j := 1; j < i; j++ {
			if q.nodes[j].vdif >= beste {
				beste = q.nodes[j].vdif
				besti = j
			}
		}

		src := &q.nodes[besti]
		dst := &q.nodes[i]
		dst.headEntry = noEntry

		// Entries strictly before src.splitEntry move to the new node as
		// a block; the rest stay. Re-threading is just pointer surgery,
		// no copying of entry data.
		idx := src.headEntry
		src.headEntry = noEntry
		for idx != noEntry && idx != src.splitEntry {
			next := q.hist.entries[idx].nextInNode
			q.hist.entries[idx].nextInNode = dst.headEntry
			dst.headEntry = idx
			idx = next
		}
		for idx != noEntry {
			next := q.hist.entries[idx].nextInNode
			q.hist.entries[idx].nextInNode = src.headEntry
			src.headEntry = idx
			idx = next
		}

		sumNode(q.hist, src)
		sumNode(q.hist, dst)

		q.numColors = i + 1
		if hq {
			q.optimizePalette(1)
		}
	}

	q.optimized = false
}

// optimizePalette runs iter passes of Lloyd relaxation: every histogram
// entry is reattached to the node whose mean is currently nearest it in
// perceptual space, then every live node's statistics are recomputed.
func (q *Quantizer) optimizePalette(iter int) {
	q.optimized = true

	for pass := 0; pass < iter; pass++ {
		for i := 0; i < q.numColors; i++ {
			q.nodes[i].headEntry = noEntry
		}

		for b := range q.hist.buckets {
			idx := q.hist.buckets[b]
			for idx != noEntry {
				next := q.hist.entries[idx].nextInBucket
				j := q.findNearestColor(q.hist.entries[idx].color)
				q.hist.entries[idx].nextInNode = q.nodes[j].headEntry
				q.nodes[j].headEntry = idx
				idx = next
			}
		}

		for i := 0; i < q.numColors; i++ {
			sumNode(q.hist, &q.nodes[i])
		}
	}
}

// OptimizePalette runs iter passes of Lloyd relaxation against the
// current node means and marks the palette optimized. Exposed so callers
// that want tighter control over refinement than the lazy
// GetPalette/mapper trigger can call it directly.
func (q *Quantizer) OptimizePalette(iter int) {
	q.optimizePalette(iter)
}

// SetPalette overrides the first nColors node means with an externally
// supplied RGBA palette (4 bytes per entry) and marks the quantizer
// optimized, bypassing Feed/Quantize entirely.
func (q *Quantizer) SetPalette(pal []byte, nColors int) {
	q.numColors = nColors
	for i := 0; i < nColors; i++ {
		r := float64(pal[i*4+0])
		g := float64(pal[i*4+1])
		b := float64(pal[i*4+2])
		a := float64(pal[i*4+3])
		q.nodes[i].avg = perceptualColor{
			r: r * scaleR / 255.9,
			g: g * scaleG / 255.9,
			b: b * scaleB / 255.9,
			a: a * scaleA / 255.9,
		}
	}
	q.optimized = true
}

// GetMeanError returns sqrt(sum(node.err) / sum(node.count)) * 256, a
// single scalar measure of how well the current palette fits the fed
// histogram. It decreases (or stays flat) as OptimizePalette iterates
// against a fixed palette size.
func (q *Quantizer) GetMeanError() float64 {
	var n uint32
	var errSum float64
	for i := 0; i < q.numColors; i++ {
		n += q.nodes[i].count
		errSum += q.nodes[i].err
	}
	if n == 0 {
		return 0
	}
	return math.Sqrt(errSum/float64(n)) * 256
}

// NumColors reports how many palette slots are currently live.
func (q *Quantizer) NumColors() int {
	return q.numColors
}
