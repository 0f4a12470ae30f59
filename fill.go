package pixed

// point is a pixel coordinate on the fill work stack.
type point struct{ x, y int }

// FloodFill recolours the 4-connected region of pixels equal to the seed
// pixel at (x, y) with c. It reports whether anything changed.
//
// The fill uses an explicit work stack and needs no visited set: a filled
// pixel no longer matches the target colour. For that reason the fill is a
// no-op when the seed already has colour c, and when (x, y) is outside the
// raster.
func FloodFill(r *Raster, x, y int, c Color) bool {
	if !r.InBounds(x, y) {
		return false
	}
	target := r.Pixel(x, y)
	if target == c {
		return false
	}

	stack := []point{{x, y}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if r.Pixel(p.x, p.y) != target {
			continue
		}
		r.SetPixel(p.x, p.y, c)

		if p.x > 0 {
			stack = append(stack, point{p.x - 1, p.y})
		}
		if p.x < r.width-1 {
			stack = append(stack, point{p.x + 1, p.y})
		}
		if p.y > 0 {
			stack = append(stack, point{p.x, p.y - 1})
		}
		if p.y < r.height-1 {
			stack = append(stack, point{p.x, p.y + 1})
		}
	}
	return true
}

// ReplaceColor recolours every pixel equal to target with c, connected or
// not, and returns the number of pixels changed.
func ReplaceColor(r *Raster, target, c Color) int {
	if target == c {
		return 0
	}
	n := 0
	for i := 0; i+3 < len(r.pix); i += 4 {
		if r.pix[i] == target.R && r.pix[i+1] == target.G && r.pix[i+2] == target.B && r.pix[i+3] == target.A {
			r.pix[i], r.pix[i+1], r.pix[i+2], r.pix[i+3] = c.R, c.G, c.B, c.A
			n++
		}
	}
	return n
}
