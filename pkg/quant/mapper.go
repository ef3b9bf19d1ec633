package quant

// ditherMatrix holds the 2x2 ordered-dither offsets indexed by Bayer cell
// d = (x&1) + 2*(y&1).
var ditherMatrix = [4]float64{-0.375, 0.125, 0.375, -0.125}

// findNearestColor returns the index of the live node whose mean is
// closest to c in perceptual space, by linear scan. The initial "best"
// distance is 16 in the perceptual-scale metric; a query further than
// that from every node falls back to index 0. Ties keep the
// lowest-indexed node.
func (q *Quantizer) findNearestColor(c perceptualColor) int {
	best := 16.0
	besti := 0
	for i := 0; i < q.numColors; i++ {
		d := c.sqDist(q.nodes[i].avg)
		if d < best {
			best = d
			besti = i
		}
	}
	return besti
}

// FindNearestColor is the exported, raw-byte entry point to the
// nearest-neighbor mapper: it lifts (r,g,b,a) into perceptual space
// exactly as Feed would and returns the closest palette index.
func (q *Quantizer) FindNearestColor(r, g, b, a uint8) int {
	if !q.optimized {
		q.optimizePalette(4)
	}
	c := newPerceptualColor(r, g, b, a, q.channelMask(), q.transparency)
	return q.findNearestColor(c)
}

// MapImage maps nPixels RGBA quads to palette indices with no dithering.
// Each distinct color's index is computed once (via FindNearestColor) and
// cached on its histogram entry; every subsequent pixel with byte-identical
// RGBA reuses the cached index. Pixels absent from the histogram (Feed
// wasn't a superset of this input) fall back to computing the nearest
// color directly, bypassing the cache.
func (q *Quantizer) MapImage(nPixels int, data []byte) ([]int, error) {
	if len(data) < nPixels*4 {
		return nil, ErrInvalidPixelBuffer
	}
	if !q.optimized {
		q.optimizePalette(4)
	}

	out := make([]int, nPixels)
	for i := 0; i < nPixels; i++ {
		r := data[i*4+0]
		g := data[i*4+1]
		b := data[i*4+2]
		a := data[i*4+3]

		entryIdx := q.hist.findEntry(r, g, b, a)
		if entryIdx != noEntry && q.hist.entries[entryIdx].palIndex != noEntry {
			out[i] = int(q.hist.entries[entryIdx].palIndex)
			continue
		}

		c := newPerceptualColor(r, g, b, a, q.channelMask(), q.transparency)
		idx := q.findNearestColor(c)
		out[i] = idx
		if entryIdx != noEntry {
			q.hist.entries[entryIdx].palIndex = int32(idx)
		}
	}
	return out, nil
}

// MapImageOrdered maps a w x h raster to palette indices using a 2x2
// ordered (Bayer) dither. On first encounter of a color, a per-entry
// dither-scale vector is derived by probing neighboring nodes along the
// line from the query color to its nearest palette mean; that scale is
// then combined with one of four fixed offsets (selected by Bayer cell)
// and cached per cell so repeated pixels in the same cell are stable.
func (q *Quantizer) MapImageOrdered(width, height int, data []byte) ([]int, error) {
	if width < 0 || height < 0 || len(data) < width*height*4 {
		return nil, ErrInvalidPixelBuffer
	}
	if !q.optimized {
		q.optimizePalette(4)
	}

	out := make([]int, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			idx := y*width + x
			d := (x & 1) + 2*(y&1)

			r := data[idx*4+0]
			g := data[idx*4+1]
			b := data[idx*4+2]
			a := data[idx*4+3]

			entryIdx := q.hist.findEntry(r, g, b, a)
			p := newPerceptualColor(r, g, b, a, q.channelMask(), q.transparency)

			var scale perceptualColor
			if entryIdx != noEntry && q.hist.entries[entryIdx].hasDitherScale {
				scale = q.hist.entries[entryIdx].ditherScale
			} else {
				scale = q.deriveDitherScale(p)
				if entryIdx != noEntry {
					q.hist.entries[entryIdx].hasDitherScale = true
					q.hist.entries[entryIdx].ditherScale = scale
				}
			}

			if entryIdx != noEntry && q.hist.entries[entryIdx].ditherIndex[d] != noEntry {
				out[idx] = int(q.hist.entries[entryIdx].ditherIndex[d])
				continue
			}

			tmp := p.add(scale.scale(ditherMatrix[d]))
			chosen := q.findNearestColor(tmp)
			out[idx] = chosen
			if entryIdx != noEntry {
				q.hist.entries[entryIdx].ditherIndex[d] = int32(chosen)
			}
		}
	}

	return out, nil
}

// deriveDitherScale computes the dither-scale vector for a query color p
// not yet seen by the ordered mapper: with scale the offset from p to the
// nearest node's mean, probe p - scale/3, i.e. a third of that distance on
// the side of p away from the mean; if that probe still lands on the same
// node, probe p - 3*scale instead. If a different node is found, the scale is the
// (scaled, absolute) difference between the two nodes' means; otherwise
// the color sits squarely inside one node's basin and dithering is a
// no-op.
func (q *Quantizer) deriveDitherScale(p perceptualColor) perceptualColor {
	i := q.findNearestColor(p)
	scale := q.nodes[i].avg.sub(p)

	tmp := p.sub(scale.scale(1.0 / 3.0))
	j := q.findNearestColor(tmp)
	if j == i {
		tmp = p.sub(scale.scale(3.0))
		j = q.findNearestColor(tmp)
	}

	if j != i {
		return q.nodes[j].avg.sub(q.nodes[i].avg).scale(0.8).abs()
	}
	return perceptualColor{}
}
