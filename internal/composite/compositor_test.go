package composite

import (
	"image"
	"image/color"
	"image/draw"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanikai/mosaic/internal/media"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

var red = color.RGBA{255, 0, 0, 255}

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

// assertFilled checks every pixel of r on canvas against want.
func assertFilled(t *testing.T, canvas *image.RGBA, r image.Rectangle, want color.RGBA) {
	t.Helper()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if got := canvas.RGBAAt(x, y); got != want {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestTwoSourcesOneMissing(t *testing.T) {
	a, b := media.NewBuffer(0), media.NewBuffer(0)
	a.Append(media.Frame{Time: t0, Image: solid(100, 100, red)})

	c, err := New(640, 480, []Binding{
		{Name: "A", Buffer: a, Region: Region{0, 0, 320, 480}},
		{Name: "B", Buffer: b, Region: Region{320, 0, 320, 480}},
	}, WithScaler(scalers["nearest"]))
	require.NoError(t, err)

	canvas := c.Compose(t0.Add(500 * time.Millisecond))
	require.Equal(t, image.Rect(0, 0, 640, 480), canvas.Bounds())
	assertFilled(t, canvas, image.Rect(0, 0, 320, 480), red)
	assertFilled(t, canvas, image.Rect(320, 0, 640, 480), color.RGBA{})
}

func TestCanvasSizeWithoutFrames(t *testing.T) {
	c, err := New(64, 48, []Binding{
		{Name: "A", Buffer: media.NewBuffer(0), Region: Region{0, 0, 10, 10}},
	})
	require.NoError(t, err)

	canvas := c.Compose(t0)
	assert.Equal(t, image.Rect(0, 0, 64, 48), canvas.Bounds())
	for _, v := range canvas.Pix {
		if v != 0 {
			t.Fatal("canvas without frames must be all zero")
		}
	}
}

func TestFrameAfterSampleTimeIsIgnored(t *testing.T) {
	a := media.NewBuffer(0)
	a.Append(media.Frame{Time: t0.Add(time.Second), Image: solid(10, 10, red)})

	canvas := Compose([]Binding{{Name: "A", Buffer: a, Region: Region{0, 0, 10, 10}}}, 20, 10, t0)
	assert.Equal(t, image.Rect(0, 0, 20, 10), canvas.Bounds())
	assertFilled(t, canvas, image.Rect(0, 0, 20, 10), color.RGBA{})
}

func TestOverlapLastBindingWins(t *testing.T) {
	blue := color.RGBA{0, 0, 255, 255}
	a, b := media.NewBuffer(0), media.NewBuffer(0)
	a.Append(media.Frame{Time: t0, Image: solid(8, 8, red)})
	b.Append(media.Frame{Time: t0, Image: solid(8, 8, blue)})

	c, err := New(20, 10, []Binding{
		{Name: "A", Buffer: a, Region: Region{0, 0, 12, 10}},
		{Name: "B", Buffer: b, Region: Region{8, 0, 12, 10}},
	}, WithScaler(scalers["nearest"]))
	require.NoError(t, err)

	canvas := c.Compose(t0)
	assertFilled(t, canvas, image.Rect(0, 0, 8, 10), red)
	assertFilled(t, canvas, image.Rect(8, 0, 20, 10), blue)
}

func TestResizeToRegion(t *testing.T) {
	// A 2x1 source, left half red and right half green, nearest-neighbour scaled
	// into a 10x4 region keeps its halves.
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.SetRGBA(0, 0, red)
	src.SetRGBA(1, 0, color.RGBA{0, 255, 0, 255})

	a := media.NewBuffer(0)
	a.Append(media.Frame{Time: t0, Image: src})

	c, err := New(12, 6, []Binding{{Name: "A", Buffer: a, Region: Region{1, 1, 10, 4}}},
		WithScaler(scalers["nearest"]))
	require.NoError(t, err)

	canvas := c.Compose(t0)
	assertFilled(t, canvas, image.Rect(1, 1, 6, 5), red)
	assertFilled(t, canvas, image.Rect(6, 1, 11, 5), color.RGBA{0, 255, 0, 255})
	assertFilled(t, canvas, image.Rect(0, 0, 12, 1), color.RGBA{})
}

func TestStalledSourceReusesTile(t *testing.T) {
	a := media.NewBuffer(0)
	a.Append(media.Frame{Time: t0, Image: solid(30, 30, red)})

	c, err := New(40, 40, []Binding{{Name: "A", Buffer: a, Region: Region{5, 5, 20, 20}}})
	require.NoError(t, err)

	first := c.Compose(t0)
	assert.Equal(t, 1, c.tiles.Len())
	second := c.Compose(t0.Add(time.Second))
	assert.Equal(t, 1, c.tiles.Len())
	assert.Equal(t, first.Pix, second.Pix)
}

func TestNewRejectsRegionOutsideCanvas(t *testing.T) {
	_, err := New(100, 100, []Binding{{Name: "A", Buffer: media.NewBuffer(0), Region: Region{50, 0, 60, 10}}})
	assert.Error(t, err)
}

func TestRegionValidate(t *testing.T) {
	assert.NoError(t, Region{0, 0, 640, 480}.Validate(640, 480))
	assert.Error(t, Region{-1, 0, 10, 10}.Validate(640, 480))
	assert.Error(t, Region{0, 0, 0, 10}.Validate(640, 480))
	assert.Error(t, Region{0, 400, 10, 81}.Validate(640, 480))
}

func TestParseInterpolation(t *testing.T) {
	s, err := ParseInterpolation("")
	require.NoError(t, err)
	assert.Equal(t, scalers[DefaultInterpolation], s)

	_, err = ParseInterpolation("Nearest")
	assert.NoError(t, err)

	_, err = ParseInterpolation("lanczos")
	assert.Error(t, err)
}

func TestOverlayDrawsStrip(t *testing.T) {
	c, err := New(320, 40, nil, WithOverlay(true))
	require.NoError(t, err)

	canvas := c.Compose(t0)
	var lit int
	for y := 0; y < 19; y++ {
		for x := 0; x < 200; x++ {
			if canvas.RGBAAt(x, y).R == 0xff {
				lit++
			}
		}
	}
	assert.NotZero(t, lit, "timestamp text is drawn")
	assert.Equal(t, color.RGBA{}, canvas.RGBAAt(319, 39))
}
