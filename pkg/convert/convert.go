// Package convert orchestrates a single end-to-end texture conversion:
// decode the source image, quantize and encode it to the requested
// console format, and render the result as C array-declaration text. It
// threads a structured logger and a per-conversion request ID through the
// pipeline, adapted from the request-tracking wrapper the tool layer this
// was grounded on uses for every operation.
package convert

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/willibrandon/mtlog"
	"github.com/willibrandon/mtlog/core"

	"github.com/n64dev/texquant/pkg/imgsource"
	"github.com/n64dev/texquant/pkg/palette"
	"github.com/n64dev/texquant/pkg/texture"
)

// Options configures one conversion.
type Options struct {
	ImagePath string
	Format    texture.Format
	Size      texture.Size

	// ResizeWidth/ResizeHeight, if both positive, resize the source image
	// before it's fed to the quantizer or any encoder.
	ResizeWidth  int
	ResizeHeight int
}

// Result is everything a caller needs to write a conversion's output file.
type Result struct {
	// Name is the sanitized <base>_<format> identifier used for the C
	// array name(s) and, by convention, the output filename.
	Name string

	// Text is the rendered C source fragment ready to write to disk.
	Text string

	// Palette is the human-readable palette report for CI4/CI8
	// conversions; nil for every other format.
	Palette []palette.Entry
}

var nonIdentifier = regexp.MustCompile(`[^0-9a-zA-Z_]+`)

// sanitizeName derives a C-identifier-safe texture name from an image path
// and output format, matching the original converter's tex_name derivation:
// strip the extension, append "_<FORMAT>", replace spaces with
// underscores, then drop every remaining non-identifier character.
func sanitizeName(imagePath string, format texture.Format) string {
	base := filepath.Base(imagePath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	name := fmt.Sprintf("%s_%s", base, format)
	name = strings.ReplaceAll(name, " ", "_")
	return nonIdentifier.ReplaceAllString(name, "")
}

// Run executes one conversion end to end: decode, encode, render. Every
// call gets its own short request ID pushed onto ctx for log correlation,
// and its duration is logged the way the tool layer this was grounded on
// times every operation.
func Run(ctx context.Context, logger core.Logger, opts Options) (*Result, error) {
	requestID := uuid.New().String()[:8]
	ctx = mtlog.PushProperty(ctx, "RequestID", requestID)
	ctx = mtlog.PushProperty(ctx, "Format", string(opts.Format))
	opLogger := logger.WithContext(ctx)

	start := time.Now()
	opLogger.InfoContext(ctx, "Conversion started for {Path}", opts.ImagePath)

	result, err := run(ctx, opLogger, opts)

	duration := time.Since(start)
	if err != nil {
		opLogger.ErrorContext(ctx, "Conversion failed after {Duration}: {Error}", duration, err)
		return nil, err
	}
	opLogger.InfoContext(ctx, "Conversion completed in {Duration}", duration)
	return result, nil
}

func run(ctx context.Context, logger core.Logger, opts Options) (*Result, error) {
	raster, err := imgsource.Load(opts.ImagePath, opts.ResizeWidth, opts.ResizeHeight)
	if err != nil {
		return nil, fmt.Errorf("convert: loading %s: %w", opts.ImagePath, err)
	}
	logger.Debug("Decoded {Width}x{Height} raster", raster.Width, raster.Height)

	name := sanitizeName(opts.ImagePath, opts.Format)

	if opts.Format.IsCI() {
		return runCI(ctx, logger, opts, raster, name)
	}
	return runDirect(opts, raster, name)
}

func runDirect(opts Options, raster *imgsource.Raster, name string) (*Result, error) {
	var data []byte
	var err error

	switch opts.Format {
	case texture.RGBA16:
		data, err = texture.EncodeRGBA16(raster.Width, raster.Height, raster.Pix)
	case texture.RGBA32:
		data, err = texture.EncodeRGBA32(raster.Width, raster.Height, raster.Pix)
	case texture.IA4:
		data, err = texture.EncodeIA4(raster.Width, raster.Height, raster.Pix)
	case texture.IA8:
		data, err = texture.EncodeIA8(raster.Width, raster.Height, raster.Pix)
	case texture.IA16:
		data, err = texture.EncodeIA16(raster.Width, raster.Height, raster.Pix)
	default:
		return nil, fmt.Errorf("convert: unsupported format %s", opts.Format)
	}
	if err != nil {
		return nil, fmt.Errorf("convert: encoding %s: %w", opts.Format, err)
	}

	return &Result{Name: name, Text: texture.ArrayText(name, data, opts.Size)}, nil
}

func runCI(ctx context.Context, logger core.Logger, opts Options, raster *imgsource.Raster, name string) (*Result, error) {
	colorDepth := 16
	if opts.Format == texture.CI8 {
		colorDepth = 256
	}

	pal, idx, err := texture.EncodeCI(raster.Width, raster.Height, raster.Pix, colorDepth)
	if err != nil {
		return nil, fmt.Errorf("convert: encoding %s: %w", opts.Format, err)
	}

	report, err := palette.Describe(rgba16PaletteToRGBA(pal), colorDepth)
	if err != nil {
		logger.Debug("Skipping palette report: {Error}", err)
	} else {
		for _, e := range report {
			logger.Debug("Palette[{Index}] {Hex} hue={Hue} sat={Saturation} light={Lightness} role={Role}",
				e.Index, e.Hex, e.Hue, e.Saturation, e.Lightness, e.Role)
		}
	}

	return &Result{
		Name:    name,
		Text:    texture.ArrayTextPair(name+"_pal", pal, name+"_indexes", idx),
		Palette: report,
	}, nil
}

// rgba16PaletteToRGBA expands a packed-5551 palette (as texture.EncodeCI
// produces) back to 8-bit-per-channel RGBA so pkg/palette can describe it.
func rgba16PaletteToRGBA(pal5551 []byte) []byte {
	n := len(pal5551) / 2
	out := make([]byte, n*4)
	for i := 0; i < n; i++ {
		v := uint16(pal5551[i*2])<<8 | uint16(pal5551[i*2+1])
		r, g, b, a := texture.UnpackRGBA5551(v)
		out[i*4+0] = r
		out[i*4+1] = g
		out[i*4+2] = b
		out[i*4+3] = a
	}
	return out
}
