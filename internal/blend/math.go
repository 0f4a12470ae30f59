package blend

// div255 divides x by 255 with rounding, without using division.
//
// Formula: ((x + 128) + ((x + 128) >> 8)) >> 8
//
// This is Alvy Ray Smith's formula and is exact for every product of two
// bytes, which keeps opaque and fully transparent compositing lossless.
func div255(x uint32) uint32 {
	t := x + 128
	return (t + (t >> 8)) >> 8
}

// mulDiv255 multiplies two bytes and divides by 255 exactly.
func mulDiv255(a, b byte) byte {
	return byte(div255(uint32(a) * uint32(b)))
}

// inv255 computes 255 - x (inverse alpha).
func inv255(x byte) byte {
	return 255 - x
}

// Opacity converts a [0, 1] opacity to a byte alpha scale, clamping
// out-of-range values.
func Opacity(o float64) byte {
	if o <= 0 {
		return 0
	}
	if o >= 1 {
		return 255
	}
	return byte(o*255 + 0.5)
}
