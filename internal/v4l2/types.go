//go:build linux && (amd64 || arm64)

package v4l2

import (
	"encoding/binary"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Structure layouts from <linux/videodev2.h>, for 64-bit targets.

var nativeEndian = binary.NativeEndian

const (
	V4L2_BUF_TYPE_VIDEO_CAPTURE = 1
	V4L2_MEMORY_MMAP            = 1
	V4L2_FIELD_ANY              = 0

	V4L2_CID_BASE  = 0x00980900
	V4L2_CID_HFLIP = V4L2_CID_BASE + 20
	V4L2_CID_VFLIP = V4L2_CID_BASE + 21
)

var (
	V4L2_PIX_FMT_MJPEG = fourcc('M', 'J', 'P', 'G')
	V4L2_PIX_FMT_YUYV  = fourcc('Y', 'U', 'Y', 'V')
)

const (
	VIDIOC_S_FMT     = 0xC0D05605
	VIDIOC_REQBUFS   = 0xC0145608
	VIDIOC_QUERYBUF  = 0xC0585609
	VIDIOC_QBUF      = 0xC058560F
	VIDIOC_DQBUF     = 0xC0585611
	VIDIOC_STREAMON  = 0x40045612
	VIDIOC_STREAMOFF = 0x40045613
	VIDIOC_S_CTRL    = 0xC008561C
)

func fourcc(a, b, c, d byte) uint32 {
	return uint32(a) | uint32(b)<<8 | uint32(c)<<16 | uint32(d)<<24
}

type v4l2_requestbuffers struct {
	count        uint32
	typ          uint32
	memory       uint32
	capabilities uint32
	flags        uint8
	reserved     [3]uint8
}

type v4l2_buffer struct {
	index     uint32
	typ       uint32
	bytesused uint32
	flags     uint32
	field     uint32
	timestamp unix.Timeval
	timecode  [16]byte
	sequence  uint32
	memory    uint32
	m         [8]byte // union { offset; userptr; planes; fd }
	length    uint32
	reserved2 uint32
	requestFD uint32
}

type v4l2_format struct {
	typ uint32
	_   uint32
	fmt [200]byte // union, 8-byte aligned
}

type v4l2_pix_format struct {
	width        uint32
	height       uint32
	pixelformat  uint32
	field        uint32
	bytesperline uint32
	sizeimage    uint32
	colorspace   uint32
	priv         uint32
	flags        uint32
	ycbcr_enc    uint32
	quantization uint32
	xfer_func    uint32
}

func (p *v4l2_pix_format) marshal() (out [200]byte) {
	fields := (*[12]uint32)(unsafe.Pointer(p))
	for i, v := range fields {
		nativeEndian.PutUint32(out[4*i:], v)
	}
	return
}

func unmarshalPixFormat(b *[200]byte) (p v4l2_pix_format) {
	fields := (*[12]uint32)(unsafe.Pointer(&p))
	for i := range fields {
		fields[i] = nativeEndian.Uint32(b[4*i:])
	}
	return
}

type v4l2_control struct {
	id    uint32
	value int32
}
