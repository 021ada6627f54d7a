// Package color converts raw camera pixel layouts into Go images.
package color

import (
	"image"

	"github.com/pkg/errors"
)

// YUYV is a packed 4:2:2 picture (a.k.a. YUY2). Each pair of horizontally
// adjacent pixels shares one chroma sample, laid out Y0 Cb Y1 Cr.
type YUYV struct {
	Packed []uint8
	Rect   image.Rectangle
	Stride int
}

// NewYUYV allocates and returns a YUYV image
func NewYUYV(r image.Rectangle) *YUYV {
	return &YUYV{
		Packed: make([]byte, 2*r.Dx()*r.Dy()),
		Rect:   r,
		Stride: 2 * r.Dx(),
	}
}

// WrapYUYV interprets p as a width x height YUYV picture with the given row
// stride. p is not copied.
func WrapYUYV(p []byte, width, height, stride int) (*YUYV, error) {
	if width <= 0 || height <= 0 || width%2 != 0 {
		return nil, errors.Errorf("invalid YUYV geometry %dx%d", width, height)
	}
	if stride < 2*width {
		stride = 2 * width
	}
	if len(p) < stride*(height-1)+2*width {
		return nil, errors.Errorf("short YUYV buffer: %d bytes for %dx%d", len(p), width, height)
	}
	return &YUYV{
		Packed: p,
		Rect:   image.Rect(0, 0, width, height),
		Stride: stride,
	}, nil
}

// YUYVToYCbCr unpacks src into dst, which must be a 4:2:2 image of the same
// size. No resampling happens: every sample is copied as is.
func YUYVToYCbCr(dst *image.YCbCr, src *YUYV) {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	for row := 0; row < h; row++ {
		in := src.Packed[row*src.Stride:]
		y := dst.Y[row*dst.YStride:]
		cb := dst.Cb[row*dst.CStride:]
		cr := dst.Cr[row*dst.CStride:]
		for col := 0; col < w/2; col++ {
			y[2*col] = in[4*col]
			cb[col] = in[4*col+1]
			y[2*col+1] = in[4*col+2]
			cr[col] = in[4*col+3]
		}
	}
}

// ToYCbCr returns a freshly allocated 4:2:2 copy of p.
func (p *YUYV) ToYCbCr() *image.YCbCr {
	img := image.NewYCbCr(image.Rect(0, 0, p.Rect.Dx(), p.Rect.Dy()), image.YCbCrSubsampleRatio422)
	YUYVToYCbCr(img, p)
	return img
}
