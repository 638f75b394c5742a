package capture

import (
	"errors"
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"
	"math"
	"os"
)

// DefaultFrames is how many frames a recording keeps when nothing else is configured.
const DefaultFrames = 600

var (
	ErrNoFrames  = errors.New("no frames recorded")
	ErrBadLimits = errors.New("recorder needs a positive frame limit and frame rate")
)

// Recorder accumulates frames for an animated GIF that loops forever.
// It stops accepting frames once the limit is reached.
type Recorder struct {
	limit  int
	delay  int // hundredths of a second
	frames []*image.Paletted
}

// NewRecorder keeps at most limit frames, each shown for 1/fps seconds.
func NewRecorder(limit, fps int) (*Recorder, error) {
	if limit <= 0 || fps <= 0 {
		return nil, fmt.Errorf("%w: limit=%d fps=%d", ErrBadLimits, limit, fps)
	}
	delay := int(math.Round(100 / float64(fps)))
	if delay < 1 {
		delay = 1
	}
	return &Recorder{
		limit:  limit,
		delay:  delay,
		frames: make([]*image.Paletted, 0, limit),
	}, nil
}

// Add appends img and reports whether it was kept. Non paletted images are
// quantized to the Plan 9 palette.
func (r *Recorder) Add(img image.Image) bool {
	if r.Full() {
		return false
	}
	p, ok := img.(*image.Paletted)
	if !ok {
		b := img.Bounds()
		p = image.NewPaletted(b, palette.Plan9)
		draw.Draw(p, b, img, b.Min, draw.Src)
	}
	r.frames = append(r.frames, p)
	return true
}

func (r *Recorder) Full() bool { return len(r.frames) >= r.limit }

func (r *Recorder) Len() int { return len(r.frames) }

// Delay returns the per frame delay in hundredths of a second.
func (r *Recorder) Delay() int { return r.delay }

// Encode writes the recorded frames as an animated GIF.
func (r *Recorder) Encode(w io.Writer) error {
	if len(r.frames) == 0 {
		return ErrNoFrames
	}
	delays := make([]int, len(r.frames))
	for i := range delays {
		delays[i] = r.delay
	}
	anim := &gif.GIF{
		Image:     r.frames,
		Delay:     delays,
		LoopCount: 0,
	}
	if err := gif.EncodeAll(w, anim); err != nil {
		return fmt.Errorf("failed to encode gif: %w", err)
	}
	return nil
}

// Save encodes the recording into the file at path.
func (r *Recorder) Save(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()
	return r.Encode(f)
}
