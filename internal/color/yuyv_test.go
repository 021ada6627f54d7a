package color

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYUYVToYCbCr(t *testing.T) {
	r := image.Rect(0, 0, 1280, 720)

	yuyv := NewYUYV(r)
	ycbcr := image.NewYCbCr(r, image.YCbCrSubsampleRatio422)

	// Write some sample data
	for i := range yuyv.Packed {
		yuyv.Packed[i] = byte(i)
	}

	YUYVToYCbCr(ycbcr, yuyv)

	// Verify luma
	for i := 0; i < 1280*720; i++ {
		if ycbcr.Y[i] != byte(2*i) {
			t.Fatalf("luma %d: got %d", i, ycbcr.Y[i])
		}
	}

	// Verify chroma
	for row := 0; row < 720; row++ {
		for col := 0; col < 1280/2; col++ {
			k := 1280/2*row + col
			if ycbcr.Cb[k] != byte(4*k+1) || ycbcr.Cr[k] != byte(4*k+3) {
				t.Fatalf("chroma (%d,%d): got %d/%d", row, col, ycbcr.Cb[k], ycbcr.Cr[k])
			}
		}
	}
}

func TestWrapYUYVPaddedStride(t *testing.T) {
	// 2x2 picture with 2 bytes of padding per row.
	p := []byte{
		10, 100, 20, 200, 0, 0,
		30, 110, 40, 210,
	}
	src, err := WrapYUYV(p, 2, 2, 6)
	require.NoError(t, err)

	img := src.ToYCbCr()
	assert.Equal(t, []byte{10, 20, 30, 40}, img.Y)
	assert.Equal(t, []byte{100, 110}, img.Cb)
	assert.Equal(t, []byte{200, 210}, img.Cr)
}

func TestWrapYUYVErrors(t *testing.T) {
	_, err := WrapYUYV(make([]byte, 8), 3, 1, 0)
	assert.Error(t, err, "odd width")

	_, err = WrapYUYV(make([]byte, 7), 2, 2, 4)
	assert.Error(t, err, "short buffer")
}

func BenchmarkYUYVToYCbCrAt720P(b *testing.B) {
	r := image.Rect(0, 0, 1280, 720)
	yuyv := NewYUYV(r)
	ycbcr := image.NewYCbCr(r, image.YCbCrSubsampleRatio422)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		YUYVToYCbCr(ycbcr, yuyv)
	}
}
