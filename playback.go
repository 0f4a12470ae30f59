package pixed

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gogpu/pixed/cache"
)

// DefaultFPS is the playback rate used when none is configured.
const DefaultFPS = 12

// Player steps through the frames of a project for animation preview.
//
// The frame list is read afresh on every tick, so frames added or removed
// during playback are picked up and the index is clamped or wrapped into
// the current bounds. Flattened frames are memoized by frame identity and
// revision; editing a frame invalidates its entry implicitly.
type Player struct {
	project *Project
	index   int
	fps     int
	loop    bool
	locker  sync.Locker
	frames  *cache.Cache[frameKey, *Raster]
}

type frameKey struct {
	id  uuid.UUID
	rev uint64
}

// PlayerOption configures a Player.
type PlayerOption func(*Player)

// WithFPS sets the playback rate in frames per second. Values <= 0 keep
// DefaultFPS.
func WithFPS(fps int) PlayerOption {
	return func(pl *Player) {
		if fps > 0 {
			pl.fps = fps
		}
	}
}

// WithLoop controls whether playback wraps to the first frame after the
// last one. Looping is on by default.
func WithLoop(loop bool) PlayerOption {
	return func(pl *Player) {
		pl.loop = loop
	}
}

// WithLocker makes Run hold l while it reads the project. Share the same
// lock with the goroutine that edits the project.
func WithLocker(l sync.Locker) PlayerOption {
	return func(pl *Player) {
		if l != nil {
			pl.locker = l
		}
	}
}

// WithCacheSize sets how many flattened frames are memoized.
func WithCacheSize(n int) PlayerOption {
	return func(pl *Player) {
		pl.frames = cache.New[frameKey, *Raster](n)
	}
}

// NewPlayer creates a player positioned on the project's active frame.
func NewPlayer(p *Project, opts ...PlayerOption) *Player {
	pl := &Player{
		project: p,
		index:   p.active,
		fps:     DefaultFPS,
		loop:    true,
		locker:  nopLocker{},
	}
	for _, opt := range opts {
		opt(pl)
	}
	if pl.frames == nil {
		pl.frames = cache.New[frameKey, *Raster](0)
	}
	return pl
}

// FPS returns the playback rate.
func (pl *Player) FPS() int { return pl.fps }

// Interval returns the time between two frames.
func (pl *Player) Interval() time.Duration {
	return time.Second / time.Duration(pl.fps)
}

// Index returns the current frame index, clamped into the current frame list.
func (pl *Player) Index() int {
	pl.index = min(max(pl.index, 0), max(len(pl.project.frames)-1, 0))
	return pl.index
}

// Seek moves to frame i, clamped into the frame list.
func (pl *Player) Seek(i int) {
	pl.index = i
	pl.Index()
}

// Tick advances to the next frame and returns its index. At the end of the
// list it wraps to 0 when looping and stays on the last frame otherwise.
func (pl *Player) Tick() int {
	n := len(pl.project.frames)
	if n == 0 {
		pl.index = 0
		return 0
	}
	next := pl.Index() + 1
	if next >= n {
		if pl.loop {
			next = 0
		} else {
			next = n - 1
		}
	}
	pl.index = next
	return next
}

// Done reports whether a non-looping player has reached the last frame.
func (pl *Player) Done() bool {
	return !pl.loop && pl.Index() >= len(pl.project.frames)-1
}

// Current returns the flattened current frame. The raster is shared with
// the cache and must not be modified.
func (pl *Player) Current() *Raster {
	f := pl.project.Frame(pl.Index())
	if f == nil {
		return NewRaster(pl.project.width, pl.project.height)
	}
	return pl.frames.GetOrCreate(frameKey{id: f.id, rev: f.revision}, f.Flatten)
}

// CacheStats returns statistics of the flattened frame cache.
func (pl *Player) CacheStats() cache.Stats { return pl.frames.Stats() }

// Run calls fn with the current frame, then advances once per interval
// until ctx is done or a non-looping player has shown its last frame.
// It returns ctx.Err() when cancelled and nil when playback finished.
func (pl *Player) Run(ctx context.Context, fn func(index int, r *Raster)) error {
	ticker := time.NewTicker(pl.Interval())
	defer ticker.Stop()

	pl.locker.Lock()
	i, r := pl.Index(), pl.Current()
	pl.locker.Unlock()
	fn(i, r)

	for {
		pl.locker.Lock()
		done := pl.Done()
		pl.locker.Unlock()
		if done {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		pl.locker.Lock()
		i = pl.Tick()
		r = pl.Current()
		pl.locker.Unlock()
		fn(i, r)
	}
}

type nopLocker struct{}

func (nopLocker) Lock()   {}
func (nopLocker) Unlock() {}
