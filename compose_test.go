package pixed

import (
	"testing"
)

// solidLayer returns a w x h layer filled with c.
func solidLayer(name string, w, h int, c Color) *Layer {
	l := NewLayer(name, w, h)
	l.raster.Clear(c)
	return l
}

func TestComposeLayersOrder(t *testing.T) {
	red := solidLayer("red", 2, 2, Red)
	blue := solidLayer("blue", 2, 2, Blue)

	tests := []struct {
		name   string
		layers []*Layer
		want   Color
	}{
		{"red over blue", []*Layer{red, blue}, Red},
		{"blue over red", []*Layer{blue, red}, Blue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComposeLayers(2, 2, tt.layers, 0, 1)
			if got.Pixel(1, 1) != tt.want {
				t.Errorf("pixel = %v, want %v", got.Pixel(1, 1), tt.want)
			}
		})
	}
}

func TestComposeLayersSkipsHiddenAndTransparent(t *testing.T) {
	blue := solidLayer("blue", 2, 2, Blue)

	t.Run("invisible at full opacity", func(t *testing.T) {
		red := solidLayer("red", 2, 2, Red)
		red.visible = false
		got := ComposeLayers(2, 2, []*Layer{red, blue}, 0, 1)
		if !got.Equal(ComposeLayers(2, 2, []*Layer{blue}, 0, 0)) {
			t.Error("hidden layer contributed to the composite")
		}
	})

	t.Run("visible at zero opacity", func(t *testing.T) {
		red := solidLayer("red", 2, 2, Red)
		red.opacity = 0
		got := ComposeLayers(2, 2, []*Layer{red, blue}, 0, 1)
		if !got.Equal(ComposeLayers(2, 2, []*Layer{blue}, 0, 0)) {
			t.Error("zero-opacity layer contributed to the composite")
		}
	})
}

func TestComposeLayersOpacity(t *testing.T) {
	red := solidLayer("red", 1, 1, Red)
	red.opacity = 0.5
	blue := solidLayer("blue", 1, 1, Blue)

	got := ComposeLayers(1, 1, []*Layer{red, blue}, 0, 1).Pixel(0, 0)
	if want := RGBA(128, 0, 127, 255); got != want {
		t.Errorf("half red over blue = %v, want %v", got, want)
	}
}

func TestComposeLayersDegenerate(t *testing.T) {
	red := solidLayer("red", 2, 2, Red)
	blank := NewRaster(2, 2)

	tests := []struct {
		name     string
		layers   []*Layer
		from, to int
	}{
		{"empty list", nil, 0, 0},
		{"inverted range", []*Layer{red}, 1, 0},
		{"range past the end", []*Layer{red}, 3, 5},
		{"range before the start", []*Layer{red}, -4, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComposeLayers(2, 2, tt.layers, tt.from, tt.to); !got.Equal(blank) {
				t.Error("expected a blank canvas")
			}
		})
	}

	t.Run("range is clamped", func(t *testing.T) {
		got := ComposeLayers(2, 2, []*Layer{red}, -3, 9)
		if got.Pixel(0, 0) != Red {
			t.Error("clamped range skipped the only layer")
		}
	})

	t.Run("default size", func(t *testing.T) {
		got := ComposeLayers(0, -1, nil, 0, 0)
		if got.Width() != DefaultCanvasSize || got.Height() != DefaultCanvasSize {
			t.Errorf("size = %dx%d, want default", got.Width(), got.Height())
		}
	})
}

func TestComposeLayersMismatchedSize(t *testing.T) {
	small := solidLayer("small", 1, 1, Red)
	big := solidLayer("big", 5, 5, Green)

	got := ComposeLayers(3, 3, []*Layer{small, big}, 0, 1)
	if got.Pixel(0, 0) != Red {
		t.Errorf("top-left = %v, want red", got.Pixel(0, 0))
	}
	if got.Pixel(2, 2) != Green {
		t.Errorf("bottom-right = %v, want green (clipped big layer)", got.Pixel(2, 2))
	}
}

func TestComposeFrames(t *testing.T) {
	a := NewFrame("a", 2, 2)
	a.layers[0].raster.SetPixel(0, 0, Red)
	b := NewFrame("b", 2, 2)
	b.layers[0].raster.Clear(Blue)

	got := ComposeFrames(2, 2, []*Frame{a, b}, 0, 1)
	if got.Pixel(0, 0) != Red || got.Pixel(1, 1) != Blue {
		t.Errorf("ComposeFrames pixels = %v, %v", got.Pixel(0, 0), got.Pixel(1, 1))
	}

	a.SetVisible(false)
	got = ComposeFrames(2, 2, []*Frame{a, b}, 0, 1)
	if got.Pixel(0, 0) != Blue {
		t.Error("hidden frame contributed to the composite")
	}

	a.SetVisible(true)
	a.SetOpacity(0)
	got = ComposeFrames(2, 2, []*Frame{a, b}, 0, 1)
	if got.Pixel(0, 0) != Blue {
		t.Error("zero-opacity frame contributed to the composite")
	}
}
