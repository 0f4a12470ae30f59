// Package blend implements source-over compositing for straight-alpha RGBA8
// pixels.
//
// Pixels are stored non-premultiplied, four bytes per pixel in R, G, B, A
// order. Blending premultiplies in integer space, applies the Porter-Duff
// source-over operator and converts the result back.
//
// Two shortcuts keep the common cases bit exact:
//   - an effective source alpha of 0 leaves the destination untouched
//   - an effective source alpha of 255 replaces the destination
//
// References:
//   - Porter-Duff: "Compositing Digital Images" (1984)
//   - W3C Compositing and Blending Level 1: https://www.w3.org/TR/compositing-1/
package blend

// Over composites one source pixel over one destination pixel in place.
// Both slices must hold at least 4 bytes. opacity scales the source alpha.
func Over(dst, src []byte, opacity byte) {
	sa := mulDiv255(src[3], opacity)
	if sa == 0 {
		return
	}
	if sa == 255 {
		dst[0], dst[1], dst[2], dst[3] = src[0], src[1], src[2], 255
		return
	}
	da := dst[3]
	if da == 0 {
		dst[0], dst[1], dst[2], dst[3] = src[0], src[1], src[2], sa
		return
	}

	// Alpha values scaled by 255 to keep the intermediate math integral.
	srcW := uint32(sa) * 255
	dstW := uint32(da) * uint32(inv255(sa))
	outW := srcW + dstW

	for i := 0; i < 3; i++ {
		num := uint32(src[i])*srcW + uint32(dst[i])*dstW
		dst[i] = byte((num + outW/2) / outW)
	}
	dst[3] = byte((outW + 127) / 255)
}

// OverRow composites a row of source pixels over a row of destination
// pixels. The shorter of the two rows bounds the operation.
func OverRow(dst, src []byte, opacity byte) {
	if opacity == 0 {
		return
	}
	n := len(dst)
	if len(src) < n {
		n = len(src)
	}
	n -= n % 4
	for i := 0; i < n; i += 4 {
		Over(dst[i:i+4], src[i:i+4], opacity)
	}
}
