package pixed

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// opaque fills r with a pattern that every format stores losslessly.
func opaque(r *Raster) {
	for y := 0; y < r.height; y++ {
		for x := 0; x < r.width; x++ {
			r.SetPixel(x, y, RGB(uint8(x*40), uint8(y*60), uint8(x^y)))
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"png", FormatPNG, false},
		{".PNG", FormatPNG, false},
		{"bmp", FormatBMP, false},
		{"tif", FormatTIFF, false},
		{".tiff", FormatTIFF, false},
		{"gif", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedFormat) {
					t.Errorf("ParseFormat(%q) error = %v, want ErrUnsupportedFormat", tt.in, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseFormat(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
			}
		})
	}

	if f, err := FormatFromPath("out/sheet.Tif"); err != nil || f != FormatTIFF {
		t.Errorf("FormatFromPath = %v, %v", f, err)
	}
	if s := Format(9).String(); s != "Format(9)" {
		t.Errorf("String() = %q", s)
	}
}

func TestEncodeDecode(t *testing.T) {
	src := NewRaster(5, 3)
	opaque(src)

	tests := []struct {
		format Format
		decode func(*bytes.Reader) (image.Image, error)
	}{
		{FormatPNG, func(r *bytes.Reader) (image.Image, error) { return png.Decode(r) }},
		{FormatBMP, func(r *bytes.Reader) (image.Image, error) { return bmp.Decode(r) }},
		{FormatTIFF, func(r *bytes.Reader) (image.Image, error) { return tiff.Decode(r) }},
	}
	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Encode(&buf, src, tt.format); err != nil {
				t.Fatal(err)
			}
			img, err := tt.decode(bytes.NewReader(buf.Bytes()))
			if err != nil {
				t.Fatal(err)
			}
			if got := FromImage(img); !got.Equal(src) {
				t.Error("decoded image differs from the source")
			}
		})
	}

	if err := Encode(&bytes.Buffer{}, src, Format(42)); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Encode(unknown) = %v, want ErrUnsupportedFormat", err)
	}
}

func TestEncodePNGKeepsStraightAlpha(t *testing.T) {
	src := NewRaster(2, 1)
	src.SetPixel(0, 0, RGBA(200, 100, 50, 128))
	src.SetPixel(1, 0, RGBA(10, 20, 30, 0))

	var buf bytes.Buffer
	if err := Encode(&buf, src, FormatPNG); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got := FromImage(img).Pixel(0, 0); got != RGBA(200, 100, 50, 128) {
		t.Errorf("semi-transparent pixel = %v", got)
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	src := NewRaster(3, 3)
	opaque(src)

	path := filepath.Join(dir, "out.png")
	if err := WriteFile(path, src); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if !FromImage(img).Equal(src) {
		t.Error("written file differs from the source")
	}

	if err := WriteFile(filepath.Join(dir, "out.jpg"), src); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("WriteFile(.jpg) = %v, want ErrUnsupportedFormat", err)
	}
}

func TestExportFrames(t *testing.T) {
	p := framedProject(t)
	dir := t.TempDir()

	paths, err := ExportFrames(p, dir, "", FormatBMP)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "frame_000.bmp"), filepath.Join(dir, "frame_001.bmp")}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v, want %v", paths, want)
	}
	for i, path := range paths {
		if path != want[i] {
			t.Errorf("paths[%d] = %q, want %q", i, path, want[i])
		}
		if _, err := os.Stat(path); err != nil {
			t.Error(err)
		}
	}

	if _, err := ExportFrames(p, filepath.Join(dir, "missing"), "x", FormatPNG); err == nil {
		t.Error("ExportFrames into a missing directory should fail")
	}
}

func TestExportSheets(t *testing.T) {
	p := NewProject(2, 2)
	p.ActiveLayer().Raster().Clear(Red)
	if _, err := p.AddFrame(""); err != nil {
		t.Fatal(err)
	}
	p.ActiveLayer().Raster().Clear(Blue)

	var buf bytes.Buffer
	if err := ExportSpriteSheet(&buf, p, 1, 3, White, FormatPNG); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	sheet := FromImage(img)
	if sheet.Width() != 6 || sheet.Height() != 2 {
		t.Fatalf("sheet size = %dx%d, want 6x2", sheet.Width(), sheet.Height())
	}
	for x, want := range []Color{Red, Red, Blue, Blue, White, White} {
		if got := sheet.Pixel(x, 1); got != want {
			t.Errorf("sheet pixel %d = %v, want %v", x, got, want)
		}
	}

	if err := ExportSpriteSheet(&buf, p, 0, 1, White, FormatPNG); !errors.Is(err, ErrInvalidGrid) {
		t.Errorf("ExportSpriteSheet(0 rows) = %v, want ErrInvalidGrid", err)
	}

	buf.Reset()
	if err := ExportLayerSheet(&buf, p.ActiveFrame(), 2, 1, Transparent, FormatTIFF); err != nil {
		t.Fatal(err)
	}
	if _, err := tiff.Decode(&buf); err != nil {
		t.Fatal(err)
	}

	buf.Reset()
	if err := ExportLayer(&buf, p.ActiveLayer(), FormatPNG); err != nil {
		t.Fatal(err)
	}
	buf.Reset()
	if err := ExportFrame(&buf, p.ActiveFrame(), FormatBMP); err != nil {
		t.Fatal(err)
	}
}
