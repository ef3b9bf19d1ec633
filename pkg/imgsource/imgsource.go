// Package imgsource decodes a source art asset into the row-major RGBA8
// raster the rest of the pipeline (pkg/quant, pkg/texture) consumes. It
// registers decoders for PNG, JPEG, GIF (standard library) and BMP, TIFF
// (golang.org/x/image), and offers an optional bilinear resize step ahead
// of quantization so source art can be fit to a fixed console texture size.
package imgsource

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// Raster is a decoded image flattened to row-major, 8-bit-per-channel,
// straight (non-premultiplied) RGBA — exactly the buffer shape
// quant.Quantizer.Feed and every pkg/texture Encode* function expect.
type Raster struct {
	Width, Height int
	Pix           []byte
}

// Decode opens path and decodes it with the registered image codec for its
// contents (PNG, JPEG, GIF, BMP or TIFF, detected by file signature, not
// extension).
func Decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("imgsource: opening %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("imgsource: decoding %s: %w", path, err)
	}
	return img, nil
}

// Resize scales img to exactly width x height using bilinear interpolation.
// Zero width or height leaves the corresponding dimension unscaled relative
// to the other, matching resize.Resize's own convention.
func Resize(img image.Image, width, height int) image.Image {
	return resize.Resize(uint(width), uint(height), img, resize.Bilinear)
}

// ToRaster flattens img into row-major straight RGBA8 bytes. Unlike
// image.Image.At, which returns alpha-premultiplied 16-bit components, this
// always un-premultiplies through color.NRGBAModel so identical source
// bytes survive a decode/encode round trip.
func ToRaster(img image.Image) *Raster {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	r := &Raster{Width: width, Height: height, Pix: make([]byte, width*height*4)}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			nrgba := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			i := (y*width + x) * 4
			r.Pix[i+0] = nrgba.R
			r.Pix[i+1] = nrgba.G
			r.Pix[i+2] = nrgba.B
			r.Pix[i+3] = nrgba.A
		}
	}
	return r
}

// Load decodes path and flattens it to a Raster. If resizeW and resizeH are
// both positive, the decoded image is resized to exactly that size before
// flattening; a zero pair skips resizing entirely.
func Load(path string, resizeW, resizeH int) (*Raster, error) {
	img, err := Decode(path)
	if err != nil {
		return nil, err
	}
	if resizeW > 0 && resizeH > 0 {
		img = Resize(img, resizeW, resizeH)
	}
	return ToRaster(img), nil
}
