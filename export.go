package pixed

import (
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Format is an image encoding supported by Encode.
type Format int

// Supported formats.
const (
	FormatPNG Format = iota
	FormatBMP
	FormatTIFF
)

// String returns the usual file extension of the format without the dot.
func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatBMP:
		return "bmp"
	case FormatTIFF:
		return "tiff"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat maps a format name or file extension (with or without the
// leading dot, any case) to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "png":
		return FormatPNG, nil
	case "bmp":
		return FormatBMP, nil
	case "tif", "tiff":
		return FormatTIFF, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// FormatFromPath returns the format matching the extension of path.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// Encode writes r to w in format f. Pixels are written with straight alpha.
func Encode(w io.Writer, r *Raster, f Format) error {
	img := r.ToImage()
	switch f {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatBMP:
		return bmp.Encode(w, img)
	case FormatTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("%w: %v", ErrUnsupportedFormat, f)
	}
}

// WriteFile encodes r into path, choosing the format from the extension.
func WriteFile(path string, r *Raster) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	return writeEncoded(path, r, format)
}

// ExportLayer encodes the raw pixels of a layer, ignoring its opacity and
// visibility.
func ExportLayer(w io.Writer, l *Layer, f Format) error {
	return Encode(w, l.raster, f)
}

// ExportFrame encodes the flattened frame.
func ExportFrame(w io.Writer, fr *Frame, f Format) error {
	return Encode(w, fr.Flatten(), f)
}

// ExportFrames writes every frame of p as its own file in dir. Files are
// named prefix_NNN.ext with a zero-based, zero-padded index. It returns the
// written paths.
func ExportFrames(p *Project, dir, prefix string, f Format) ([]string, error) {
	if prefix == "" {
		prefix = "frame"
	}
	paths := make([]string, 0, len(p.frames))
	for i, fr := range p.frames {
		path := filepath.Join(dir, fmt.Sprintf("%s_%03d.%s", prefix, i, f))
		if err := writeEncoded(path, fr.Flatten(), f); err != nil {
			return paths, fmt.Errorf("frame %d: %w", i, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// ExportSpriteSheet encodes a rows x cols sheet of the flattened frames of p.
func ExportSpriteSheet(w io.Writer, p *Project, rows, cols int, bg Color, f Format) error {
	sheet, err := p.FrameSheet(0, len(p.frames)-1, rows, cols, bg)
	if err != nil {
		return err
	}
	return Encode(w, sheet, f)
}

// ExportLayerSheet encodes a rows x cols sheet of the layers of fr.
func ExportLayerSheet(w io.Writer, fr *Frame, rows, cols int, bg Color, f Format) error {
	sheet, err := fr.LayerSheet(rows, cols, bg)
	if err != nil {
		return err
	}
	return Encode(w, sheet, f)
}

func writeEncoded(path string, r *Raster, format Format) error {
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	if err := Encode(f, r, format); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
