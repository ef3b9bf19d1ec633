// Command texquant converts a source image into a retro console texture
// format, emitted as a ready-to-compile C array declaration.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/willibrandon/mtlog"
	"github.com/willibrandon/mtlog/core"
	"github.com/willibrandon/mtlog/sinks"

	"github.com/n64dev/texquant/pkg/config"
	"github.com/n64dev/texquant/pkg/convert"
	"github.com/n64dev/texquant/pkg/texture"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	BuildTime = "unknown"
)

const usage = `texquant <image-path> <format> <size>

Formats:
  RGBA16, RGBA32, IA4, IA8, IA16, CI4, CI8

Output sizes:
  U8, U16, U32
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("texquant", flag.ContinueOnError)
	showVersion := fs.Bool("version", false, "Show version information")
	debugMode := fs.Bool("debug", false, "Enable debug logging")
	resizeW := fs.Int("resize-width", 0, "Resize the source image to this width before conversion")
	resizeH := fs.Int("resize-height", 0, "Resize the source image to this height before conversion")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fmt.Print(usage)
			return 0
		}
		return 2
	}

	if *showVersion {
		fmt.Printf("texquant version %s (built %s)\n", Version, BuildTime)
		return 0
	}

	positional := fs.Args()
	if len(positional) == 0 {
		fmt.Print(usage)
		return 0
	}
	if strings.EqualFold(positional[0], "help") || positional[0] == "-h" || positional[0] == "--help" {
		fmt.Print(usage)
		return 0
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}
	if *debugMode {
		cfg.LogLevel = "debug"
	}
	logger := createLogger(cfg.LogLevel)

	imagePath := positional[0]

	formatArg := cfg.DefaultFormat
	if len(positional) > 1 {
		formatArg = strings.ToUpper(positional[1])
	}
	format := texture.Format(formatArg)
	if !format.Valid() {
		fmt.Fprintln(os.Stderr, "Choose from the following formats:")
		fmt.Fprintln(os.Stderr, joinFormats(texture.Formats))
		return 1
	}

	sizeArg := cfg.DefaultSize
	sizeExplicit := false
	if len(positional) > 2 {
		sizeArg = strings.ToUpper(positional[2])
		sizeExplicit = true
	}
	size, err := texture.ParseSize(sizeArg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Choose from the following sizes:")
		fmt.Fprintln(os.Stderr, joinSizes(texture.Sizes))
		return 1
	}

	if format.IsCI() && sizeExplicit {
		// cli.py blocked here with input("press enter to continue or ctrl
		// C to exit"); a build-pipeline CLI can't wait on a TTY, so this
		// logs a warning and proceeds instead.
		logger.Warning("Output sizes for {Format} are fixed: palette data is U16, index data is U8; the requested size is ignored", format)
	}

	logger.Information("Creating {Format} texture from {Path}", format, imagePath)

	result, err := convert.Run(context.Background(), logger, convert.Options{
		ImagePath:    imagePath,
		Format:       format,
		Size:         size,
		ResizeWidth:  *resizeW,
		ResizeHeight: *resizeH,
	})
	if err != nil {
		logger.Error("Conversion failed: {Error}", err)
		return 1
	}

	outputPath := result.Name + ".inc.c"
	if err := os.WriteFile(outputPath, []byte(result.Text), 0o644); err != nil {
		logger.Error("Failed to write {Path}: {Error}", outputPath, err)
		return 1
	}

	logger.Information("Success! Data written to {Path}", outputPath)
	return 0
}

func joinFormats(formats []texture.Format) string {
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

func joinSizes(sizes []texture.Size) string {
	names := make([]string, len(sizes))
	for i, s := range sizes {
		switch s {
		case texture.SizeU8:
			names[i] = "U8"
		case texture.SizeU16:
			names[i] = "U16"
		case texture.SizeU32:
			names[i] = "U32"
		}
	}
	return strings.Join(names, ", ")
}

// createLogger creates a configured logger instance.
func createLogger(logLevel string) core.Logger {
	sink := sinks.NewConsoleSink()

	var opts []mtlog.Option
	opts = append(opts, mtlog.WithSink(sink))

	switch logLevel {
	case "debug":
		opts = append(opts, mtlog.WithMinimumLevel(core.DebugLevel))
	case "info":
		opts = append(opts, mtlog.WithMinimumLevel(core.InformationLevel))
	case "warn":
		opts = append(opts, mtlog.WithMinimumLevel(core.WarningLevel))
	case "error":
		opts = append(opts, mtlog.WithMinimumLevel(core.ErrorLevel))
	default:
		opts = append(opts, mtlog.WithMinimumLevel(core.InformationLevel))
	}

	return mtlog.New(opts...)
}
