package quant

import (
	"math"
	"sort"
)

// node is one future palette entry: a cluster of histogram entries chained
// by nextInNode, plus the aggregate statistics the driver uses to decide
// which node to split next and where. Exactly 256 of these exist in a
// fixed pool; only the first numColors are "live".
type node struct {
	headEntry  int32 // head of the intra-node entry chain, noEntry if empty
	splitEntry int32 // entry at/after which quantize() bisects this node

	count uint32
	avg   perceptualColor
	dir   perceptualColor
	err   float64
	vdif  float64
}

func newNodePool() [256]node {
	var pool [256]node
	for i := range pool {
		pool[i].headEntry = noEntry
		pool[i].splitEntry = noEntry
	}
	return pool
}

// entries collects, in chain order, the indices of all histogram entries
// currently owned by this node.
func (n *node) entries(h *Histogram) []int32 {
	var out []int32
	for idx := n.headEntry; idx != noEntry; idx = h.entries[idx].nextInNode {
		out = append(out, idx)
	}
	return out
}

// rethread rebuilds the node's nextInNode chain to match the given order.
func (n *node) rethread(h *Histogram, order []int32) {
	n.headEntry = noEntry
	for i := len(order) - 1; i >= 0; i-- {
		h.entries[order[i]].nextInNode = n.headEntry
		n.headEntry = order[i]
	}
}

// sortByKey re-threads the node's chain in ascending order of key(entry).
// The reference implementation sorts by recursively partitioning around
// the running mean of the key; since it is used purely to establish a
// total order (never to select a rank), a stable sort over a materialized
// index slice produces the same partition-relevant order with far less
// code and no recursion depth concerns.
func (n *node) sortByKey(h *Histogram, key func(*histogramEntry) float64) {
	order := n.entries(h)
	if len(order) < 2 {
		return
	}
	sort.SliceStable(order, func(i, j int) bool {
		return key(&h.entries[order[i]]) < key(&h.entries[order[j]])
	})
	n.rethread(h, order)
}

func sortByRed(e *histogramEntry) float64   { return e.color.r }
func sortByGreen(e *histogramEntry) float64 { return e.color.g }
func sortByBlue(e *histogramEntry) float64  { return e.color.b }
func sortByAlpha(e *histogramEntry) float64 { return e.color.a }

// sumNode recomputes n's aggregate statistics from its current entry
// chain: count, mean, per-channel variance, the axis/direction chosen for
// splitting, and the split boundary with the greatest estimated error
// reduction. This is the numeric heart of the algorithm; see spec §4.2 for
// the exact derivation this function implements step by step.
func sumNode(h *Histogram, n *node) {
	var total uint32
	var fsum, fsum2 perceptualColor

	for idx := n.headEntry; idx != noEntry; idx = h.entries[idx].nextInNode {
		e := &h.entries[idx]
		c := e.color.scale(float64(e.count))
		fsum = fsum.add(c)
		fsum2 = fsum2.add(perceptualColor{
			r: e.color.r * c.r,
			g: e.color.g * c.g,
			b: e.color.b * c.b,
			a: e.color.a * c.a,
		})
		total += e.count
	}

	n.count = total
	if total == 0 {
		// avg/dir are deliberately left untouched here, matching the
		// reference sum_node: an emptied node (one whose chain was fully
		// handed to a sibling by quantize) keeps reporting the last color
		// it held rather than resetting to zero. GetPalette relies on
		// this staying put for nodes beyond NumColors(); nodes within
		// NumColors() that end up empty (quantize was asked for more
		// colors than there are useful splits) surface as duplicate,
		// non-zero palette entries, not zero-filled ones.
		n.err = 0
		n.vdif = 0
		return
	}

	nf := float64(total)
	n.avg = perceptualColor{fsum.r / nf, fsum.g / nf, fsum.b / nf, fsum.a / nf}

	vc := perceptualColor{
		r: fsum2.r - fsum.r*n.avg.r,
		g: fsum2.g - fsum.g*n.avg.g,
		b: fsum2.b - fsum.b*n.avg.b,
		a: fsum2.a - fsum.a*n.avg.a,
	}
	v := vc.r + vc.g + vc.b + vc.a
	n.err = v
	n.vdif = -v

	switch {
	case vc.r > vc.g && vc.r > vc.b && vc.r > vc.a:
		n.sortByKey(h, sortByRed)
	case vc.g > vc.b && vc.g > vc.a:
		n.sortByKey(h, sortByGreen)
	case vc.b > vc.a:
		n.sortByKey(h, sortByBlue)
	default:
		n.sortByKey(h, sortByAlpha)
	}

	// Principal direction: walk the axis-sorted chain, flipping each
	// entry's deviation so it doesn't cancel against the running
	// direction, then normalize.
	var dir perceptualColor
	for idx := n.headEntry; idx != noEntry; idx = h.entries[idx].nextInNode {
		e := &h.entries[idx]
		tmp := e.color.sub(n.avg).scale(float64(e.count))
		if tmp.dot(dir) < 0 {
			tmp = tmp.scale(-1)
		}
		dir = dir.add(tmp)
	}

	lenSq := dir.dot(dir)
	var invLen float64
	if lenSq == 0 {
		invLen = math.Inf(1)
	} else {
		invLen = 1 / math.Sqrt(lenSq)
	}
	dir = dir.scale(invLen)
	n.dir = dir

	n.sortByKey(h, func(e *histogramEntry) float64 { return e.color.dot(dir) })

	// Walk the direction-sorted chain maintaining a running low-side
	// prefix; at each boundary (short of taking every entry) compute the
	// two-cluster residual and keep the boundary with the greatest gain.
	var sum, sum2 perceptualColor
	var n2 uint32
	best := n.vdif
	bestSplit := n.headEntry

	for idx := n.headEntry; idx != noEntry; idx = h.entries[idx].nextInNode {
		e := &h.entries[idx]
		if bestSplit == noEntry {
			bestSplit = idx
		}

		n2 += e.count
		c := e.color.scale(float64(e.count))
		sum = sum.add(c)
		sum2 = sum2.add(perceptualColor{
			r: e.color.r * c.r,
			g: e.color.g * c.g,
			b: e.color.b * c.b,
			a: e.color.a * c.a,
		})

		if n2 == total {
			break
		}

		loVar := residual(sum2, sum, n2)
		hiVar := residual(fsum2.sub(sum2), fsum.sub(sum), total-n2)
		nv := loVar.r + loVar.g + loVar.b + loVar.a + hiVar.r + hiVar.g + hiVar.b + hiVar.a

		if -nv > best {
			best = -nv
			bestSplit = noEntry
		}
	}

	if bestSplit == n.headEntry {
		bestSplit = h.entries[bestSplit].nextInNode
	}
	n.splitEntry = bestSplit
	n.vdif = best + v
}

// residual computes, per channel, sum2 - sum^2/count: the weighted
// variance contribution of one side of a candidate split.
func residual(sum2, sum perceptualColor, count uint32) perceptualColor {
	nf := float64(count)
	return perceptualColor{
		r: sum2.r - sum.r*sum.r/nf,
		g: sum2.g - sum.g*sum.g/nf,
		b: sum2.b - sum.b*sum.b/nf,
		a: sum2.a - sum.a*sum.a/nf,
	}
}
