package texture

import (
	"fmt"

	"github.com/n64dev/texquant/pkg/quant"
)

// EncodeCI quantizes a raster down to colorDepth colors (16 for CI4, 256
// for CI8) and returns the palette (as RGBA16-packed bytes, big-endian,
// two bytes per entry) and the ordered-dithered index stream (2 indexes
// packed per byte for CI4, one byte per index for CI8).
//
// The raster is first compressed to RGBA5551 precision before quantizing,
// matching the original converter's rationale: picking a palette against
// colors the target format can actually represent gives a tighter fit than
// quantizing the full 8888 source and rounding afterward.
func EncodeCI(width, height int, pix []byte, colorDepth int) (pal []byte, idx []byte, err error) {
	if err := checkRaster(width, height, pix); err != nil {
		return nil, nil, err
	}
	if colorDepth != 16 && colorDepth != 256 {
		return nil, nil, fmt.Errorf("texture: colorDepth must be 16 or 256, got %d", colorDepth)
	}

	compressed := compressTo5551Precision(width, height, pix)

	q := quant.New()
	if err := q.Feed(compressed); err != nil {
		return nil, nil, fmt.Errorf("texture: feeding quantizer: %w", err)
	}
	q.Quantize(colorDepth)

	rgba32Pal := q.GetPalette(colorDepth)
	pal = make([]byte, 0, colorDepth*2)
	for i := 0; i < colorDepth; i++ {
		v := PackRGBA5551(rgba32Pal[i*4+0], rgba32Pal[i*4+1], rgba32Pal[i*4+2], rgba32Pal[i*4+3])
		pal = append(pal, byte(v>>8), byte(v&0xFF))
	}

	indices, err := q.MapImageOrdered(width, height, compressed)
	if err != nil {
		return nil, nil, fmt.Errorf("texture: mapping image: %w", err)
	}

	if colorDepth == 256 {
		idx = make([]byte, len(indices))
		for i, v := range indices {
			idx[i] = byte(v)
		}
		return pal, idx, nil
	}

	// CI4: two 4-bit indexes packed per byte, high index first. An odd
	// final index is paired with a zero nibble.
	idx = make([]byte, 0, (len(indices)+1)/2)
	for i := 0; i < len(indices); i += 2 {
		hi := byte(indices[i]) & 0xF
		var lo byte
		if i+1 < len(indices) {
			lo = byte(indices[i+1]) & 0xF
		}
		idx = append(idx, hi<<4|lo)
	}
	return pal, idx, nil
}

// EncodeCI4 is EncodeCI with a fixed 16-color palette.
func EncodeCI4(width, height int, pix []byte) (pal, idx []byte, err error) {
	return EncodeCI(width, height, pix, 16)
}

// EncodeCI8 is EncodeCI with a fixed 256-color palette.
func EncodeCI8(width, height int, pix []byte) (pal, idx []byte, err error) {
	return EncodeCI(width, height, pix, 256)
}
