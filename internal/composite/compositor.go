// Package composite samples a set of frame buffers at a point in time and draws
// the selected frames into fixed regions of one canvas.
package composite

import (
	"image"
	"sync"
	"time"

	"github.com/golang/groupcache/lru"
	"golang.org/x/image/draw"

	"github.com/lanikai/mosaic/internal/logging"
)

var log = logging.DefaultLogger.WithTag("composite")

// Compositor draws its bindings onto a fresh canvas for each requested time.
// Regions without a frame stay at the zero (black) background. Bindings are drawn
// in order, so a later binding wins where regions overlap.
type Compositor struct {
	width, height int
	bindings      []Binding

	scaler  draw.Scaler
	overlay bool

	// Scaled tiles keyed by binding index and frame sequence number. A stalled
	// source is re-served the same frame every tick; the cache spares rescaling it.
	mu    sync.Mutex
	tiles *lru.Cache
}

type Option func(*Compositor)

// WithScaler selects the interpolation used to fit frames into regions.
func WithScaler(s draw.Scaler) Option {
	return func(c *Compositor) { c.scaler = s }
}

// WithOverlay draws the sample time in the top-left corner of every canvas.
func WithOverlay(on bool) Option {
	return func(c *Compositor) { c.overlay = on }
}

// WithoutTileCache disables reuse of scaled tiles.
func WithoutTileCache() Option {
	return func(c *Compositor) { c.tiles = nil }
}

// New validates every region against the canvas and returns a Compositor.
func New(width, height int, bindings []Binding, opts ...Option) (*Compositor, error) {
	for _, b := range bindings {
		if err := b.Region.Validate(width, height); err != nil {
			return nil, err
		}
	}

	c := &Compositor{
		width:    width,
		height:   height,
		bindings: append([]Binding(nil), bindings...),
		scaler:   draw.BiLinear,
		tiles:    lru.New(2 * len(bindings)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Compositor) Bounds() image.Rectangle {
	return image.Rect(0, 0, c.width, c.height)
}

func (c *Compositor) Bindings() []Binding {
	return c.bindings
}

type tileKey struct {
	index int
	seq   uint64
}

// Compose samples every binding at t and returns the resulting canvas. Each
// buffer is queried with trimming, which is the only side effect.
func (c *Compositor) Compose(t time.Time) *image.RGBA {
	canvas := image.NewRGBA(c.Bounds())

	c.mu.Lock()
	defer c.mu.Unlock()

	for i, b := range c.bindings {
		f, ok := b.Buffer.LatestAtOrBefore(t, true)
		if !ok {
			log.Trace(5, "No frame from %s at %v", b.Name, t)
			continue
		}

		rect := b.Region.Rect()
		key := tileKey{i, f.Seq}
		if c.tiles != nil {
			if tile, hit := c.tiles.Get(key); hit {
				draw.Draw(canvas, rect, tile.(*image.RGBA), image.Point{}, draw.Src)
				continue
			}
		}

		tile := c.scale(f.Image, rect.Dx(), rect.Dy())
		draw.Draw(canvas, rect, tile, image.Point{}, draw.Src)
		if c.tiles != nil {
			c.tiles.Add(key, tile)
		}
	}

	if c.overlay {
		drawTimestamp(canvas, t)
	}
	return canvas
}

func (c *Compositor) scale(src image.Image, w, h int) *image.RGBA {
	tile := image.NewRGBA(image.Rect(0, 0, w, h))
	c.scaler.Scale(tile, tile.Bounds(), src, src.Bounds(), draw.Src, nil)
	return tile
}

// Compose is the stateless form of Compositor.Compose: it samples bindings at t
// onto a width x height canvas using bilinear interpolation. Regions are not
// validated; pixels falling outside the canvas are clipped.
func Compose(bindings []Binding, width, height int, t time.Time) *image.RGBA {
	c := &Compositor{
		width:    width,
		height:   height,
		bindings: bindings,
		scaler:   draw.BiLinear,
	}
	return c.Compose(t)
}
