package composite

import (
	"image"
	"image/color"
	"image/draw"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const overlayFormat = "2006-01-02 15:04:05.000"

// drawTimestamp writes t in white on a black strip at the top-left of canvas.
func drawTimestamp(canvas *image.RGBA, t time.Time) {
	face := basicfont.Face7x13
	text := t.Format(overlayFormat)

	d := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(color.White),
		Face: face,
	}
	width := d.MeasureString(text).Ceil()
	strip := image.Rect(0, 0, width+8, face.Height+6).Intersect(canvas.Bounds())
	draw.Draw(canvas, strip, image.NewUniform(color.Black), image.Point{}, draw.Src)

	d.Dot = fixed.P(4, 3+face.Ascent)
	d.DrawString(text)
}
