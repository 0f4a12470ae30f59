// Command pixeldemo builds a small animated project with the pixed editing
// engine and exports it as frames or a sprite sheet.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gogpu/pixed"
	"github.com/gogpu/pixed/config"
)

var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// options are shared by every subcommand.
type options struct {
	configPath string
	frames     int
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "pixeldemo",
		Short:         "Build and export a demo pixel-art animation",
		Version:       version,
		SilenceUsage:  true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML settings file (PIXED_* variables override it)")
	cmd.PersistentFlags().IntVar(&opts.frames, "frames", 6, "number of animation frames")

	cmd.AddCommand(newSheetCommand(opts))
	cmd.AddCommand(newFramesCommand(opts))
	cmd.AddCommand(newPlayCommand(opts))
	return cmd
}

func newSheetCommand(opts *options) *cobra.Command {
	var (
		rows, cols int
		out        string
		layers     bool
	)
	cmd := &cobra.Command{
		Use:   "sheet",
		Short: "Export the animation as a sprite sheet",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, p, err := setup(opts)
			if err != nil {
				return err
			}
			format, err := pixed.FormatFromPath(out)
			if err != nil {
				return err
			}
			if rows <= 0 || cols <= 0 {
				rows, cols = grid(p.FrameCount())
			}

			f, err := os.Create(out) //nolint:gosec // path is user-provided intentionally
			if err != nil {
				return err
			}
			if layers {
				err = pixed.ExportLayerSheet(f, p.ActiveFrame(), rows, cols, pixed.White, format)
			} else {
				err = pixed.ExportSpriteSheet(f, p, rows, cols, pixed.White, format)
			}
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%dx%d cells)\n", out, cols, rows)
			return nil
		},
	}
	cmd.Flags().IntVar(&rows, "rows", 0, "sheet rows (0 picks a square-ish grid)")
	cmd.Flags().IntVar(&cols, "cols", 0, "sheet columns (0 picks a square-ish grid)")
	cmd.Flags().StringVarP(&out, "out", "o", "sheet.png", "output file; the extension selects png, bmp or tiff")
	cmd.Flags().BoolVar(&layers, "layers", false, "tile the layers of the first frame instead of the frames")
	return cmd
}

func newFramesCommand(opts *options) *cobra.Command {
	var (
		dir, prefix, format string
	)
	cmd := &cobra.Command{
		Use:   "frames",
		Short: "Export every frame as its own image",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, p, err := setup(opts)
			if err != nil {
				return err
			}
			f, err := pixed.ParseFormat(format)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
			paths, err := pixed.ExportFrames(p, dir, prefix, f)
			if err != nil {
				return err
			}
			for _, path := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", "frames", "output directory")
	cmd.Flags().StringVar(&prefix, "prefix", "frame", "file name prefix")
	cmd.Flags().StringVarP(&format, "format", "f", "png", "image format: png, bmp or tiff")
	return cmd
}

func newPlayCommand(opts *options) *cobra.Command {
	var duration time.Duration
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Preview playback timing and report frame cache statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, p, err := setup(opts)
			if err != nil {
				return err
			}
			pl := pixed.NewPlayer(p, pixed.WithFPS(s.FPS), pixed.WithCacheSize(s.CacheSize))

			ctx, cancel := context.WithTimeout(cmd.Context(), duration)
			defer cancel()

			shown := 0
			err = pl.Run(ctx, func(i int, r *pixed.Raster) {
				shown++
				pixed.Logger().Debug("frame", "index", i, "size", fmt.Sprintf("%dx%d", r.Width(), r.Height()))
			})
			if err != nil && ctx.Err() == nil {
				return err
			}
			st := pl.CacheStats()
			fmt.Fprintf(cmd.OutOrStdout(), "showed %d frames at %d fps, cache hits %d misses %d\n",
				shown, pl.FPS(), st.Hits, st.Misses)
			return nil
		},
	}
	cmd.Flags().DurationVar(&duration, "duration", 2*time.Second, "how long to play")
	return cmd
}

// setup loads settings, configures logging and builds the demo project.
func setup(opts *options) (config.Settings, *pixed.Project, error) {
	s, err := config.Load(opts.configPath)
	if err != nil {
		return s, nil, err
	}
	level, err := s.Level()
	if err != nil {
		return s, nil, err
	}
	pixed.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	p, err := buildDemo(s, max(opts.frames, 1))
	return s, p, err
}

// grid returns a rows x cols grid close to square that holds n cells.
func grid(n int) (rows, cols int) {
	cols = 1
	for cols*cols < n {
		cols++
	}
	rows = (n + cols - 1) / cols
	return max(rows, 1), cols
}
