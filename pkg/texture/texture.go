// Package texture converts a decoded RGBA raster into the fixed-point pixel
// formats a retro console texture pipeline consumes: direct RGBA5551/RGBA32
// copies, intensity+alpha formats derived from HSV value, and CI4/CI8
// indexed formats built on top of pkg/quant. Every Encode* function takes a
// row-major RGBA8 raster (one byte per channel, 4 bytes per pixel) and
// returns the raw byte stream for that format; pkg/texture never decides how
// that stream is chunked or printed — see ArrayText for that.
package texture

import "fmt"

// ErrInvalidRaster is returned when a raster's pixel buffer doesn't match
// its declared width and height (len(pix) != width*height*4).
var ErrInvalidRaster = fmt.Errorf("texture: pixel buffer does not match width*height*4")

// Format names a supported output pixel format, matching the original
// conversion tool's format identifiers exactly.
type Format string

const (
	RGBA16 Format = "RGBA16"
	RGBA32 Format = "RGBA32"
	IA4    Format = "IA4"
	IA8    Format = "IA8"
	IA16   Format = "IA16"
	CI4    Format = "CI4"
	CI8    Format = "CI8"
)

// Formats lists every supported output format, in the CLI's canonical order.
var Formats = []Format{RGBA16, RGBA32, IA4, IA8, IA16, CI4, CI8}

// IsCI reports whether f produces a palette+index pair instead of a single
// data stream.
func (f Format) IsCI() bool {
	return f == CI4 || f == CI8
}

// Valid reports whether f is one of the supported Formats.
func (f Format) Valid() bool {
	for _, v := range Formats {
		if f == v {
			return true
		}
	}
	return false
}

func checkRaster(width, height int, pix []byte) error {
	if width < 0 || height < 0 || len(pix) != width*height*4 {
		return fmt.Errorf("%w: got %dx%d raster with %d bytes", ErrInvalidRaster, width, height, len(pix))
	}
	return nil
}
