// Package palette describes an already-built palette for logging: given
// the RGBA bytes pkg/quant.Quantizer.GetPalette produces, it computes each
// entry's hue/saturation/lightness in HSL space and assigns it
// a semantic role by lightness rank, the way a human reviewing a texture's
// final palette would. It never builds a palette itself — that's
// pkg/quant's job — only reports on one.
package palette

import (
	"fmt"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
)

// Entry describes one palette slot.
type Entry struct {
	Index      int
	Hex        string
	Hue        float64 // 0-360 degrees
	Saturation float64 // 0-100%
	Lightness  float64 // 0-100%
	Role       string  // "dark_shadow", "shadow", "midtone", "light", "highlight"
}

// Describe converts n RGBA palette entries (4 bytes each, as returned by
// Quantizer.GetPalette) into a human-readable report, sorted by hue then
// lightness and annotated with a lightness-rank role, adapted from the
// hue/lightness sort and role assignment used to present k-means-extracted
// palettes.
func Describe(pal []byte, n int) ([]Entry, error) {
	if len(pal) < n*4 {
		return nil, fmt.Errorf("palette: need %d bytes for %d entries, got %d", n*4, n, len(pal))
	}

	entries := make([]Entry, n)
	for i := 0; i < n; i++ {
		r := float64(pal[i*4+0]) / 255.0
		g := float64(pal[i*4+1]) / 255.0
		b := float64(pal[i*4+2]) / 255.0
		c := colorful.Color{R: r, G: g, B: b}

		h, s, l := c.Hsl()
		entries[i] = Entry{
			Index:      i,
			Hex:        c.Hex(),
			Hue:        h,
			Saturation: s * 100,
			Lightness:  l * 100,
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if absf(entries[i].Hue-entries[j].Hue) < 5 {
			return entries[i].Lightness < entries[j].Lightness
		}
		return entries[i].Hue < entries[j].Hue
	})

	assignRoles(entries)
	return entries, nil
}

// assignRoles labels each entry by its rank in lightness order: the darkest
// fifth is "dark_shadow", the lightest fifth "highlight", with "shadow",
// "midtone" and "light" evenly splitting the middle.
func assignRoles(entries []Entry) {
	n := len(entries)
	if n == 0 {
		return
	}
	if n == 1 {
		entries[0].Role = "midtone"
		return
	}

	byLightness := make([]int, n)
	for i := range byLightness {
		byLightness[i] = i
	}
	sort.SliceStable(byLightness, func(i, j int) bool {
		return entries[byLightness[i]].Lightness < entries[byLightness[j]].Lightness
	})

	rank := make([]int, n)
	for r, idx := range byLightness {
		rank[idx] = r
	}

	for i := range entries {
		ratio := float64(rank[i]) / float64(n-1)
		switch {
		case ratio < 0.2:
			entries[i].Role = "dark_shadow"
		case ratio < 0.4:
			entries[i].Role = "shadow"
		case ratio < 0.6:
			entries[i].Role = "midtone"
		case ratio < 0.8:
			entries[i].Role = "light"
		default:
			entries[i].Role = "highlight"
		}
	}
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
