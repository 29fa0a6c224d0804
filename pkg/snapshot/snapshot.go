// Package snapshot renders single frames of the water background without a
// display and writes them as image files.
package snapshot

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/draw"

	"wavebg/internal/logger"
	"wavebg/pkg/backend/software"
	"wavebg/pkg/config"
	"wavebg/pkg/wave"
)

// Render mounts a renderer on a software surface, lets elapsed time pass and
// returns the resulting width x height frame. With scale > 1 the frame is
// shaded at 1/scale resolution and upsampled.
func Render(width, height, scale int, elapsed time.Duration, log *logger.Logger) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("snapshot: invalid size %dx%d", width, height)
	}
	if scale < 1 {
		scale = 1
	}
	if log == nil {
		log = logger.Discard()
	}
	rw := max(1, width/scale)
	rh := max(1, height/scale)

	surface := software.NewSurface(rw, rh, wave.Shade)
	frames := software.NewFrames()
	clock := software.NewStepClock(time.Now())

	r := wave.New(surface, frames, wave.WithClock(clock), wave.WithLogger(log))
	if err := r.Mount(); err != nil {
		return nil, err
	}
	defer r.Unmount()

	clock.Advance(elapsed)
	if !frames.Step() {
		return nil, errors.New("snapshot: renderer scheduled no frame")
	}

	frame := surface.Image()
	if frame == nil {
		return nil, errors.New("snapshot: nothing was drawn")
	}
	if rw == width && rh == height {
		return frame, nil
	}

	log.Debugf("Upsampling %dx%d frame to %dx%d", rw, rh, width, height)
	out := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(out, out.Bounds(), frame, frame.Bounds(), draw.Src, nil)
	return out, nil
}

// Encode writes img to w in the named format: png, webp or tga.
func Encode(w io.Writer, img image.Image, format string) error {
	switch strings.ToLower(format) {
	case "png":
		return png.Encode(w, img)
	case "webp":
		return nativewebp.Encode(w, img, nil)
	case "tga":
		return tga.Encode(w, img)
	default:
		return fmt.Errorf("snapshot: unsupported format %q", format)
	}
}

// FormatFromPath guesses the format from a file extension, falling back to
// def.
func FormatFromPath(path, def string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "png"
	case ".webp":
		return "webp"
	case ".tga":
		return "tga"
	default:
		return def
	}
}

// Save renders the frame described by cfg and writes it to cfg.Output.
func Save(cfg config.SnapshotConfig, log *logger.Logger) error {
	if log == nil {
		log = logger.Discard()
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	elapsed := time.Duration(cfg.Time * float64(time.Second))
	start := time.Now()
	img, err := Render(cfg.Width, cfg.Height, cfg.Scale, elapsed, log)
	if err != nil {
		return err
	}
	log.Infof("Rendered %dx%d frame at t=%.3fs in %s", cfg.Width, cfg.Height, cfg.Time, time.Since(start).Round(time.Millisecond))

	if dir := filepath.Dir(cfg.Output); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("snapshot: create output directory: %w", err)
		}
	}

	f, err := os.Create(cfg.Output)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}

	if err := Encode(f, img, cfg.Format); err != nil {
		f.Close()
		return fmt.Errorf("snapshot: encode %s: %w", cfg.Format, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}

	log.Infof("Wrote %s", cfg.Output)
	return nil
}
