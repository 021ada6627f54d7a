//go:build gocv

package sink

import (
	"image"

	"gocv.io/x/gocv"
)

// Builds with OpenCV accept any fourcc the local OpenCV supports (XVID, MP4V,
// H264, ...), like the classic cv2.VideoWriter.
func init() {
	fallbackWriter = openOpenCV
}

type opencvFile struct {
	vw *gocv.VideoWriter
}

func openOpenCV(path string, opts FileOptions) (FileSink, error) {
	vw, err := gocv.VideoWriterFile(path, opts.Format, float64(opts.FPS), opts.Width, opts.Height, true)
	if err != nil {
		return nil, err
	}
	if !vw.IsOpened() {
		vw.Close()
		return nil, errUnsupportedFormat
	}
	return &opencvFile{vw: vw}, nil
}

func (f *opencvFile) WriteFrame(img image.Image) error {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return err
	}
	defer mat.Close()
	return f.vw.Write(mat)
}

func (f *opencvFile) Close() error {
	return f.vw.Close()
}
