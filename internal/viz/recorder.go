package viz

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"io"
	"os"
)

const (
	charW = 8
	charH = 16
)

// ErrNoFrames is returned when saving a recording that captured nothing.
var ErrNoFrames = errors.New("viz: no frames recorded")

// Recorder rasterizes canvas snapshots into an animated GIF.
type Recorder struct {
	frames []*image.Paletted
	// Delay between frames in hundredths of a second.
	Delay int
}

func NewRecorder(delay int) *Recorder {
	if delay <= 0 {
		delay = 2
	}
	return &Recorder{Delay: delay}
}

func (r *Recorder) Len() int { return len(r.frames) }

func (r *Recorder) Reset() { r.frames = r.frames[:0] }

// Capture copies the current canvas into a new frame, each dot drawn as a
// block of charW/2 × charH/4 pixels.
func (r *Recorder) Capture(c *Canvas) {
	img := image.NewPaletted(image.Rect(0, 0, c.Width*charW, c.Height*charH), color.Palette{color.Black, color.White})
	dotW, dotH := charW/2, charH/4
	pw, ph := c.PixelSize()
	for y := 0; y < ph; y++ {
		for x := 0; x < pw; x++ {
			if !c.IsSet(x, y) {
				continue
			}
			block := image.Rect(x*dotW, y*dotH, (x+1)*dotW, (y+1)*dotH)
			for py := block.Min.Y; py < block.Max.Y; py++ {
				for px := block.Min.X; px < block.Max.X; px++ {
					img.SetColorIndex(px, py, 1)
				}
			}
		}
	}
	r.frames = append(r.frames, img)
}

func (r *Recorder) Encode(w io.Writer) error {
	if len(r.frames) == 0 {
		return ErrNoFrames
	}
	anim := gif.GIF{LoopCount: 0}
	for _, f := range r.frames {
		anim.Image = append(anim.Image, f)
		anim.Delay = append(anim.Delay, r.Delay)
	}
	return gif.EncodeAll(w, &anim)
}

func (r *Recorder) Save(path string) error {
	if len(r.frames) == 0 {
		return ErrNoFrames
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := r.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
