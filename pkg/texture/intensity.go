package texture

import "github.com/lucasb-eyer/go-colorful"

// intensityAlpha returns a pixel's HSV value (brightness) and its alpha,
// both normalized to [0, 1]. Intensity is the HSV "value" of the source
// color, matching the original converter's use of a Blender-style Color.v.
func intensityAlpha(r, g, b, a uint8) (intensity, alpha float64) {
	c := colorful.Color{
		R: float64(r) / 255.0,
		G: float64(g) / 255.0,
		B: float64(b) / 255.0,
	}
	_, _, v := c.Hsv()
	return v, float64(a) / 255.0
}

// ia4Value packs one pixel into a 4-bit intensity+alpha nibble: 3 bits of
// intensity and a single alpha bit (opaque past the 50% threshold).
func ia4Value(r, g, b, a uint8) uint8 {
	intensity, alpha := intensityAlpha(r, g, b, a)
	v := uint8(int(intensity*0x7)&0x7) << 1
	if alpha > 0.5 {
		v |= 1
	}
	return v
}

// EncodeIA4 packs a raster into one byte per two pixels: each pixel
// contributes a 4-bit intensity+alpha nibble, high pixel first. An odd
// final pixel is paired with a zero nibble.
func EncodeIA4(width, height int, pix []byte) ([]byte, error) {
	if err := checkRaster(width, height, pix); err != nil {
		return nil, err
	}
	n := width * height
	out := make([]byte, 0, (n+1)/2)
	for i := 0; i < n; i += 2 {
		hi := ia4Value(pix[i*4+0], pix[i*4+1], pix[i*4+2], pix[i*4+3])
		var lo uint8
		if i+1 < n {
			lo = ia4Value(pix[(i+1)*4+0], pix[(i+1)*4+1], pix[(i+1)*4+2], pix[(i+1)*4+3])
		}
		out = append(out, hi<<4|lo)
	}
	return out, nil
}

// EncodeIA8 packs a raster into one byte per pixel: 4 bits of intensity and
// 4 bits of alpha.
func EncodeIA8(width, height int, pix []byte) ([]byte, error) {
	if err := checkRaster(width, height, pix); err != nil {
		return nil, err
	}
	out := make([]byte, width*height)
	for i := 0; i < width*height; i++ {
		intensity, alpha := intensityAlpha(pix[i*4+0], pix[i*4+1], pix[i*4+2], pix[i*4+3])
		hi := uint8(int(intensity*0xF) & 0xF)
		lo := uint8(int(alpha*0xF) & 0xF)
		out[i] = hi<<4 | lo
	}
	return out, nil
}

// EncodeIA16 packs a raster into two bytes per pixel: a full 8-bit
// intensity followed by a full 8-bit alpha. The original converter's
// equivalent truncates intensity/alpha to {0,1} before casting to int,
// which only ever emits 0x00 or 0x01 for any non-fully-saturated source —
// almost certainly a scaling omission rather than an intended format, so
// this scales both channels to 0-255 the way IA8 scales them to 0-15.
func EncodeIA16(width, height int, pix []byte) ([]byte, error) {
	if err := checkRaster(width, height, pix); err != nil {
		return nil, err
	}
	out := make([]byte, width*height*2)
	for i := 0; i < width*height; i++ {
		intensity, alpha := intensityAlpha(pix[i*4+0], pix[i*4+1], pix[i*4+2], pix[i*4+3])
		out[i*2+0] = uint8(int(intensity*0xFF) & 0xFF)
		out[i*2+1] = uint8(int(alpha*0xFF) & 0xFF)
	}
	return out, nil
}
