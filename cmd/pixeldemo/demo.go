package main

import (
	"github.com/gogpu/pixed"
	"github.com/gogpu/pixed/config"
)

// buildDemo draws a square bouncing across a sky with the editor's own
// tools, one frame per step, so the history and gesture paths are exercised
// exactly as an interactive session would.
func buildDemo(s config.Settings, frames int) (*pixed.Project, error) {
	p := pixed.NewProject(s.Width, s.Height, pixed.WithName("demo"), pixed.WithSettings(s))
	sky := pixed.Hex("#87ceeb")
	ball := pixed.Hex("#e63946")
	outline := pixed.Hex("#1d3557")

	bucket := pixed.NewBucket(sky)
	tb := pixed.NewDefaultToolbox(p)
	tb.Register(bucket)
	tb.Register(pixed.NewPencil(outline))

	w, h := p.Width(), p.Height()
	size := max(min(w, h)/4, 2)

	for i := 0; i < frames; i++ {
		if i > 0 {
			if _, err := p.AddFrame(""); err != nil {
				return nil, err
			}
		}
		f := p.ActiveFrame()

		// Background layer: a single bucket fill.
		bucket.Color = sky
		if err := tb.Select("bucket"); err != nil {
			return nil, err
		}
		if err := tb.Press(0, 0); err != nil {
			return nil, err
		}

		// Sprite layer above it.
		if _, err := f.AddLayer("ball"); err != nil {
			return nil, err
		}
		x := (w - size) * i / max(frames-1, 1)
		y := bounce(h-size, i, frames)
		if err := drawSquare(tb, bucket, x, y, size, ball); err != nil {
			return nil, err
		}
	}
	return p, p.SetActiveFrame(0)
}

// drawSquare outlines a square with one pencil stroke and fills its inside.
func drawSquare(tb *pixed.Toolbox, bucket *pixed.Bucket, x, y, size int, fill pixed.Color) error {
	if err := tb.Select("pencil"); err != nil {
		return err
	}
	x1, y1 := x+size-1, y+size-1
	if err := tb.Press(x, y); err != nil {
		return err
	}
	for _, pt := range [][2]int{{x1, y}, {x1, y1}, {x, y1}} {
		if err := tb.Drag(pt[0], pt[1]); err != nil {
			return err
		}
	}
	if err := tb.Release(x, y); err != nil {
		return err
	}

	if size > 2 {
		bucket.Color = fill
		if err := tb.Select("bucket"); err != nil {
			return err
		}
		if err := tb.Press(x+1, y+1); err != nil {
			return err
		}
	}
	return nil
}

// bounce returns a y offset in [0, maxY] following a parabola over the
// animation.
func bounce(maxY, i, n int) int {
	if n <= 1 {
		return maxY
	}
	t := float64(i) / float64(n-1)
	return int(float64(maxY) * (1 - 4*t*(1-t)))
}
