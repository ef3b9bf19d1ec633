// Package quant implements the ExoQuant v0.7 adaptive color quantizer: a
// recursive variance-maximizing palette builder with Lloyd refinement and
// ordered-dither palette mapping, ported from the reference Python/C
// implementation used by retro-console texture pipelines.
package quant

// perceptualColor is a 4-channel color in the quantizer's internal working
// space: R, G, B, A scaled by per-channel weights, with RGB optionally
// premultiplied by alpha. All quantizer math happens in this space; callers
// never see it directly.
type perceptualColor struct {
	r, g, b, a float64
}

// scaleR, scaleG, scaleB, scaleA are the fixed per-channel weights applied
// when a raw byte channel is lifted into perceptual space. Green is
// weighted above red and blue to roughly match perceived luminance
// contribution; these match the upstream ExoQuant constants exactly and
// must not be changed without changing the cache/compatibility contract
// of callers that depend on bit-exact palettes.
const (
	scaleR = 1.0
	scaleG = 1.2
	scaleB = 0.8
	scaleA = 1.0
)

func newPerceptualColor(r8, g8, b8, a8 uint8, channelMask uint8, transparency bool) perceptualColor {
	r := float64(r8&channelMask) / 255.0 * scaleR
	g := float64(g8&channelMask) / 255.0 * scaleG
	b := float64(b8&channelMask) / 255.0 * scaleB
	a := float64(a8) / 255.0 * scaleA
	if transparency {
		r *= a
		g *= a
		b *= a
	}
	return perceptualColor{r: r, g: g, b: b, a: a}
}

func (c perceptualColor) add(o perceptualColor) perceptualColor {
	return perceptualColor{c.r + o.r, c.g + o.g, c.b + o.b, c.a + o.a}
}

func (c perceptualColor) sub(o perceptualColor) perceptualColor {
	return perceptualColor{c.r - o.r, c.g - o.g, c.b - o.b, c.a - o.a}
}

func (c perceptualColor) scale(s float64) perceptualColor {
	return perceptualColor{c.r * s, c.g * s, c.b * s, c.a * s}
}

func (c perceptualColor) abs() perceptualColor {
	return perceptualColor{absf(c.r), absf(c.g), absf(c.b), absf(c.a)}
}

func (c perceptualColor) dot(o perceptualColor) float64 {
	return c.r*o.r + c.g*o.g + c.b*o.b + c.a*o.a
}

// sqDist returns the squared Euclidean distance between two perceptual
// colors, the metric find_nearest_color minimizes.
func (c perceptualColor) sqDist(o perceptualColor) float64 {
	d := c.sub(o)
	return d.dot(d)
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
