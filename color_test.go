package pixed

import (
	"image/color"
	"testing"
)

func TestHex(t *testing.T) {
	tests := []struct {
		in   string
		want Color
	}{
		{"#fff", White},
		{"f00", Red},
		{"#0f08", RGBA(0, 255, 0, 136)},
		{"#0000ff", Blue},
		{"1d3557", RGB(0x1d, 0x35, 0x57)},
		{"#FF000080", RGBA(255, 0, 0, 128)},
		{"", Black},
		{"#12345", Black},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Hex(tt.in); got != tt.want {
				t.Errorf("Hex(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestColorString(t *testing.T) {
	if got := RGBA(1, 0x23, 0xab, 0xff).String(); got != "#0123abff" {
		t.Errorf("String() = %q", got)
	}
}

func TestFromColor(t *testing.T) {
	tests := []struct {
		name string
		in   color.Color
		want Color
	}{
		{"nrgba passes through", color.NRGBA{R: 10, G: 20, B: 30, A: 40}, RGBA(10, 20, 30, 40)},
		{"opaque rgba", color.RGBA{R: 1, G: 2, B: 3, A: 255}, RGB(1, 2, 3)},
		{"premultiplied half red", color.RGBA{R: 128, A: 128}, RGBA(255, 0, 0, 128)},
		{"gray", color.Gray{Y: 7}, RGB(7, 7, 7)},
		{"self", Green, Green},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromColor(tt.in); got != tt.want {
				t.Errorf("FromColor(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
