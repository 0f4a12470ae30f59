package pixed

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FormatVersion is the version written into Metadata by Project.Data.
const FormatVersion = 1

// Metadata describes a saved project.
type Metadata struct {
	Version int       `json:"version"`
	SavedAt time.Time `json:"savedAt"`
}

// LayerData is the serializable form of a Layer. Pix holds straight-alpha
// RGBA8 rows, Stride bytes apart.
type LayerData struct {
	ID      string  `json:"id,omitempty"`
	Name    string  `json:"name"`
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	Stride  int     `json:"stride"`
	Pix     []byte  `json:"pix"`
	Opacity float64 `json:"opacity"`
	Visible bool    `json:"visible"`
}

// FrameData is the serializable form of a Frame.
type FrameData struct {
	ID      string      `json:"id,omitempty"`
	Name    string      `json:"name"`
	Width   int         `json:"width"`
	Height  int         `json:"height"`
	Active  int         `json:"active"`
	Opacity float64     `json:"opacity"`
	Visible bool        `json:"visible"`
	Layers  []LayerData `json:"layers"`
}

// ProjectData is the serializable form of a Project. History is not part
// of it.
type ProjectData struct {
	Metadata Metadata    `json:"metadata"`
	ID       string      `json:"id,omitempty"`
	Name     string      `json:"name"`
	Width    int         `json:"width"`
	Height   int         `json:"height"`
	Active   int         `json:"active"`
	Frames   []FrameData `json:"frames"`
}

// Data returns the serializable form of the layer. The pixels are copied.
func (l *Layer) Data() LayerData {
	pix := make([]byte, len(l.raster.pix))
	copy(pix, l.raster.pix)
	return LayerData{
		ID:      l.id.String(),
		Name:    l.name,
		Width:   l.raster.width,
		Height:  l.raster.height,
		Stride:  l.raster.Stride(),
		Pix:     pix,
		Opacity: l.opacity,
		Visible: l.visible,
	}
}

// LayerFromData rebuilds a detached layer. Rows are copied honouring the
// stride, so padded buffers are accepted. An empty ID assigns a new one.
func LayerFromData(d LayerData) (*Layer, error) {
	id, err := parseID(d.ID)
	if err != nil {
		return nil, err
	}
	if d.Width < 0 || d.Height < 0 {
		return nil, fmt.Errorf("%w: layer %q size %dx%d", ErrInvalidData, d.Name, d.Width, d.Height)
	}
	row := d.Width * 4
	stride := d.Stride
	if stride == 0 {
		stride = row
	}
	if stride < row {
		return nil, fmt.Errorf("%w: layer %q stride %d < %d", ErrInvalidData, d.Name, stride, row)
	}
	if d.Height > 0 && len(d.Pix) < stride*(d.Height-1)+row {
		return nil, fmt.Errorf("%w: layer %q has %d bytes of pixels", ErrInvalidData, d.Name, len(d.Pix))
	}

	r := NewRaster(d.Width, d.Height)
	for y := 0; y < d.Height; y++ {
		copy(r.pix[y*row:(y+1)*row], d.Pix[y*stride:y*stride+row])
	}
	return &Layer{
		id:      id,
		name:    cleanName(d.Name, "Layer"),
		raster:  r,
		opacity: clampUnit(d.Opacity),
		visible: d.Visible,
	}, nil
}

// Data returns the serializable form of the frame.
func (f *Frame) Data() FrameData {
	layers := make([]LayerData, len(f.layers))
	for i, l := range f.layers {
		layers[i] = l.Data()
	}
	return FrameData{
		ID:      f.id.String(),
		Name:    f.name,
		Width:   f.width,
		Height:  f.height,
		Active:  f.active,
		Opacity: f.opacity,
		Visible: f.visible,
		Layers:  layers,
	}
}

// FrameFromData rebuilds a detached frame. Every layer must match the frame
// size and layer IDs must be unique within the frame.
func FrameFromData(d FrameData) (*Frame, error) {
	id, err := parseID(d.ID)
	if err != nil {
		return nil, err
	}
	if d.Width <= 0 || d.Height <= 0 {
		return nil, fmt.Errorf("%w: frame %q size %dx%d", ErrInvalidData, d.Name, d.Width, d.Height)
	}
	if len(d.Layers) == 0 {
		return nil, fmt.Errorf("%w: frame %q has no layers", ErrInvalidData, d.Name)
	}

	f := newEmptyFrame(d.Name, d.Width, d.Height)
	f.id = id
	f.opacity = clampUnit(d.Opacity)
	f.visible = d.Visible
	seen := make(map[uuid.UUID]bool, len(d.Layers))
	for i, ld := range d.Layers {
		l, err := LayerFromData(ld)
		if err != nil {
			return nil, fmt.Errorf("frame %q layer %d: %w", d.Name, i, err)
		}
		if l.Width() != d.Width || l.Height() != d.Height {
			return nil, fmt.Errorf("%w: frame %q layer %d is %dx%d, want %dx%d",
				ErrInvalidData, d.Name, i, l.Width(), l.Height(), d.Width, d.Height)
		}
		if seen[l.id] {
			return nil, fmt.Errorf("%w: frame %q repeats layer id %s", ErrInvalidData, d.Name, l.id)
		}
		seen[l.id] = true
		f.attachLayer(i, l)
	}
	f.layerSeq = len(f.layers)
	if d.Active >= 0 && d.Active < len(f.layers) {
		f.active = d.Active
	}
	return f, nil
}

// Data returns the serializable form of the project, stamped with the
// current format version and time.
func (p *Project) Data() ProjectData {
	frames := make([]FrameData, len(p.frames))
	for i, f := range p.frames {
		frames[i] = f.Data()
	}
	return ProjectData{
		Metadata: Metadata{Version: FormatVersion, SavedAt: time.Now().UTC()},
		ID:       p.id.String(),
		Name:     p.name,
		Width:    p.width,
		Height:   p.height,
		Active:   p.active,
		Frames:   frames,
	}
}

// ProjectFromData rebuilds a project with empty history.
func ProjectFromData(d ProjectData, opts ...ProjectOption) (*Project, error) {
	if d.Metadata.Version > FormatVersion {
		return nil, fmt.Errorf("%w: format version %d is newer than %d", ErrInvalidData, d.Metadata.Version, FormatVersion)
	}
	id, err := parseID(d.ID)
	if err != nil {
		return nil, err
	}
	if d.Width <= 0 || d.Height <= 0 {
		return nil, fmt.Errorf("%w: project size %dx%d", ErrInvalidData, d.Width, d.Height)
	}
	if len(d.Frames) == 0 {
		return nil, fmt.Errorf("%w: project has no frames", ErrInvalidData)
	}

	frames := make([]*Frame, len(d.Frames))
	seen := make(map[uuid.UUID]bool, len(d.Frames)+1)
	seen[id] = true
	for i, fd := range d.Frames {
		f, err := FrameFromData(fd)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		if seen[f.id] {
			return nil, fmt.Errorf("%w: repeated frame id %s", ErrInvalidData, f.id)
		}
		seen[f.id] = true
		frames[i] = f
	}

	o := defaultProjectOptions()
	o.name = d.Name
	for _, opt := range opts {
		opt(&o)
	}
	p := newEmptyProject(o.name, d.Width, d.Height, o)
	// Re-key the project scope under the saved identity.
	if err := p.history.Remove(p.id); err != nil {
		return nil, err
	}
	p.id = id
	p.history.Init(p.id)

	for i, f := range frames {
		p.attachFrame(i, f)
	}
	p.frameSeq = len(frames)
	if d.Active >= 0 && d.Active < len(frames) {
		p.active = d.Active
	}
	p.syncActiveScope()
	return p, nil
}

func parseID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.New(), nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: id %q: %w", ErrInvalidData, s, err)
	}
	return id, nil
}
