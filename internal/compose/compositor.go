// Package compose turns sparse lip and blink timelines into a dense,
// fixed-rate sequence of composited frames. Every frame is a pure function
// of its index and an immutable RenderConfig, so frames can be computed in
// parallel and still reach the encoder in index order, byte-identical to a
// sequential run.
package compose

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"math"
	"sync"

	"github.com/normanking/lipsync/internal/mapping"
	"github.com/normanking/lipsync/internal/timeline"
)

// Layer pairs a timeline with the table that resolves its labels.
type Layer struct {
	Timeline *timeline.Timeline
	Table    *mapping.Table
}

// RenderConfig describes one render. Immutable once handed to New.
type RenderConfig struct {
	FrameRate  int
	Duration   float64     // seconds
	Background image.Image // optional; canvas inferred from lips when nil
	Lips       Layer
	Blink      *Layer // optional; nil skips eyelid composition entirely
}

// Frame is one composited output frame.
type Frame struct {
	Index int
	Image *image.RGBA
}

// Sink consumes frames strictly in index order.
type Sink func(Frame) error

// Compositor produces composited frames from a validated RenderConfig.
type Compositor struct {
	cfg    RenderConfig
	base   *image.RGBA // background pre-converted, or nil for transparent
	bounds image.Rectangle
}

// New validates the configuration up front: positive frame rate, mapping
// completeness for both layers, and canvas dimension agreement across the
// background and every overlay table. Failures here mean zero frames are
// ever produced for a doomed render.
func New(cfg RenderConfig) (*Compositor, error) {
	if cfg.FrameRate <= 0 {
		return nil, fmt.Errorf("frame rate must be positive, got %d", cfg.FrameRate)
	}
	if cfg.Duration < 0 {
		return nil, fmt.Errorf("duration must be non-negative, got %f", cfg.Duration)
	}
	if cfg.Lips.Timeline == nil || cfg.Lips.Table == nil {
		return nil, fmt.Errorf("lip timeline and mapping are required")
	}

	if err := cfg.Lips.Table.Validate(cfg.Lips.Timeline); err != nil {
		return nil, err
	}
	if cfg.Blink != nil {
		if err := cfg.Blink.Table.Validate(cfg.Blink.Timeline); err != nil {
			return nil, err
		}
	}

	// The background fixes the canvas; without one the lip table does.
	var w, h int
	if cfg.Background != nil {
		b := cfg.Background.Bounds()
		w, h = b.Dx(), b.Dy()
	} else {
		w, h = cfg.Lips.Table.Size()
	}
	if err := checkTableSize(cfg.Lips.Table, w, h); err != nil {
		return nil, err
	}
	if cfg.Blink != nil {
		if err := checkTableSize(cfg.Blink.Table, w, h); err != nil {
			return nil, err
		}
	}

	c := &Compositor{cfg: cfg, bounds: image.Rect(0, 0, w, h)}
	if cfg.Background != nil {
		c.base = image.NewRGBA(c.bounds)
		draw.Draw(c.base, c.bounds, cfg.Background, cfg.Background.Bounds().Min, draw.Src)
	}
	return c, nil
}

func checkTableSize(t *mapping.Table, w, h int) error {
	tw, th := t.Size()
	if tw != w || th != h {
		return &mapping.DimensionMismatchError{
			Path:  t.Source(),
			Width: tw, Height: th,
			WantW: w, WantH: h,
		}
	}
	return nil
}

// FrameCount returns the number of output frames: ceil(duration × rate),
// so the last partial frame interval is still covered.
func (c *Compositor) FrameCount() int {
	return int(math.Ceil(c.cfg.Duration * float64(c.cfg.FrameRate)))
}

// Bounds returns the output canvas rectangle.
func (c *Compositor) Bounds() image.Rectangle { return c.bounds }

// FrameAt composites the frame for index i. The timestamp is derived from
// the index alone, never from accumulated state, so long renders do not
// drift and frames may be computed in any order.
func (c *Compositor) FrameAt(i int) (*image.RGBA, error) {
	t := float64(i) / float64(c.cfg.FrameRate)

	dst := image.NewRGBA(c.bounds)
	if c.base != nil {
		copy(dst.Pix, c.base.Pix)
	}

	mouth, err := c.cfg.Lips.Table.Resolve(c.cfg.Lips.Timeline.LabelAt(t))
	if err != nil {
		return nil, err
	}
	draw.Draw(dst, c.bounds, mouth, mouth.Bounds().Min, draw.Over)

	if c.cfg.Blink != nil {
		eyes, err := c.cfg.Blink.Table.Resolve(c.cfg.Blink.Timeline.LabelAt(t))
		if err != nil {
			return nil, err
		}
		draw.Draw(dst, c.bounds, eyes, eyes.Bounds().Min, draw.Over)
	}

	return dst, nil
}

// Render computes every frame across the given number of workers and hands
// them to the sink in strict index order. The first error, from a worker or
// the sink, cancels the remaining computation. Output is byte-identical
// regardless of worker count.
func (c *Compositor) Render(ctx context.Context, workers int, sink Sink) error {
	total := c.FrameCount()
	if total == 0 {
		return nil
	}
	if workers <= 1 {
		return c.renderSequential(ctx, total, sink)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int)
	results := make(chan Frame, workers)
	errs := make(chan error, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				img, err := c.FrameAt(i)
				if err != nil {
					errs <- err
					cancel()
					return
				}
				select {
				case results <- Frame{Index: i, Image: img}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := 0; i < total; i++ {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	// Resequence: workers finish out of order, the encoder is a single
	// sequential consumer. Pending is bounded by the worker count plus the
	// results buffer.
	var sinkErr error
	pending := make(map[int]*image.RGBA, workers)
	next := 0
	for frame := range results {
		if sinkErr != nil {
			continue // drain so workers can exit
		}
		pending[frame.Index] = frame.Image
		for img, ok := pending[next]; ok; img, ok = pending[next] {
			delete(pending, next)
			if err := sink(Frame{Index: next, Image: img}); err != nil {
				sinkErr = err
				cancel()
				break
			}
			next++
		}
	}

	if sinkErr != nil {
		return sinkErr
	}
	select {
	case err := <-errs:
		return err
	default:
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return nil
}

func (c *Compositor) renderSequential(ctx context.Context, total int, sink Sink) error {
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		img, err := c.FrameAt(i)
		if err != nil {
			return err
		}
		if err := sink(Frame{Index: i, Image: img}); err != nil {
			return err
		}
	}
	return nil
}
