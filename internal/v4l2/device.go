//go:build linux && (amd64 || arm64)

package v4l2

import (
	"io"
	"sync"
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"
)

// A V4L2 character device.
type device struct {
	// Number of requested kernel driver buffers.
	numBuffers int

	// Device path, usually "/dev/video0".
	path string

	// File descriptor of v4l2 device.
	fd int

	// Memory-mapped buffers, one per kernel buffer.
	mmap [][]byte

	mu sync.Mutex
}

// Negotiated capture format.
type format struct {
	width, height int
	pixelformat   uint32
	bytesperline  int
}

func openDevice(path string) (*device, error) {
	fd, err := unix.Open(path, unix.O_RDWR, 0666)
	if err != nil {
		return nil, err
	}

	return &device{
		numBuffers: 2,
		path:       path,
		fd:         fd,
	}, nil
}

func (dev *device) Close() error {
	if err := dev.Stop(); err != nil {
		unix.Close(dev.fd)
		return err
	}

	return unix.Close(dev.fd)
}

func (dev *device) ioctl(request uint, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(
		unix.SYS_IOCTL,
		uintptr(dev.fd),
		uintptr(request),
		uintptr(arg),
	)
	if errno != 0 {
		return errno
	}
	return nil
}

// Query buffer parameters.
func (dev *device) queryBuffer(n uint32) (length, offset uint32, err error) {
	qb := v4l2_buffer{
		index:  n,
		typ:    V4L2_BUF_TYPE_VIDEO_CAPTURE,
		memory: V4L2_MEMORY_MMAP,
	}
	if err = dev.ioctl(VIDIOC_QUERYBUF, unsafe.Pointer(&qb)); err != nil {
		return
	}

	length = qb.length
	offset = nativeEndian.Uint32(qb.m[0:4])
	return
}

// Request specified number of kernel buffers memory-mapped to user-space.
func (dev *device) requestBuffers(n int) error {
	rb := v4l2_requestbuffers{
		count:  uint32(n),
		typ:    V4L2_BUF_TYPE_VIDEO_CAPTURE,
		memory: V4L2_MEMORY_MMAP,
	}
	return dev.ioctl(VIDIOC_REQBUFS, unsafe.Pointer(&rb))
}

func (dev *device) mapMemory() error {
	if dev.mmap != nil {
		panic("v4l2 device: memory already mapped")
	}

	if err := dev.requestBuffers(dev.numBuffers); err != nil {
		return err
	}

	for i := 0; i < dev.numBuffers; i++ {
		length, offset, err := dev.queryBuffer(uint32(i))
		if err != nil {
			return err
		}
		m, err := unix.Mmap(
			dev.fd,
			int64(offset),
			int(length),
			unix.PROT_READ|unix.PROT_WRITE,
			unix.MAP_SHARED,
		)
		if err != nil {
			return err
		}
		dev.mmap = append(dev.mmap, m)
	}
	return nil
}

func (dev *device) unmapMemory() error {
	for _, m := range dev.mmap {
		if err := unix.Munmap(m); err != nil {
			return err
		}
	}
	dev.mmap = nil

	return dev.requestBuffers(0)
}

func (dev *device) enqueue(index int) error {
	qbuf := v4l2_buffer{
		typ:    V4L2_BUF_TYPE_VIDEO_CAPTURE,
		memory: V4L2_MEMORY_MMAP,
		index:  uint32(index),
	}
	return dev.ioctl(VIDIOC_QBUF, unsafe.Pointer(&qbuf))
}

// dequeue blocks until the driver hands back a filled buffer.
func (dev *device) dequeue() (index, n int, err error) {
	dqbuf := v4l2_buffer{
		typ:    V4L2_BUF_TYPE_VIDEO_CAPTURE,
		memory: V4L2_MEMORY_MMAP,
	}
	err = dev.ioctl(VIDIOC_DQBUF, unsafe.Pointer(&dqbuf))
	return int(dqbuf.index), int(dqbuf.bytesused), err
}

func (dev *device) enableStream() error {
	typ := uint32(V4L2_BUF_TYPE_VIDEO_CAPTURE)
	return dev.ioctl(VIDIOC_STREAMON, unsafe.Pointer(&typ))
}

func (dev *device) disableStream() error {
	// Disable stream (dequeues any outstanding buffers as well)
	typ := uint32(V4L2_BUF_TYPE_VIDEO_CAPTURE)
	return dev.ioctl(VIDIOC_STREAMOFF, unsafe.Pointer(&typ))
}

func (dev *device) setControl(id uint32, value int32) error {
	ctrl := v4l2_control{id: id, value: value}
	return dev.ioctl(VIDIOC_S_CTRL, unsafe.Pointer(&ctrl))
}

func (dev *device) SetFlip(hflip, vflip bool) error {
	if hflip {
		if err := dev.setControl(V4L2_CID_HFLIP, 1); err != nil {
			return err
		}
	}
	if vflip {
		return dev.setControl(V4L2_CID_VFLIP, 1)
	}
	return nil
}

// SetPixelFormat asks for a capture format and returns what the driver chose.
func (dev *device) SetPixelFormat(width, height int, pixelformat uint32) (format, error) {
	pfmt := v4l2_pix_format{
		width:       uint32(width),
		height:      uint32(height),
		pixelformat: pixelformat,
		field:       V4L2_FIELD_ANY,
	}
	f := v4l2_format{
		typ: V4L2_BUF_TYPE_VIDEO_CAPTURE,
		fmt: pfmt.marshal(),
	}
	if err := dev.ioctl(VIDIOC_S_FMT, unsafe.Pointer(&f)); err != nil {
		return format{}, err
	}

	got := unmarshalPixFormat(&f.fmt)
	return format{
		width:        int(got.width),
		height:       int(got.height),
		pixelformat:  got.pixelformat,
		bytesperline: int(got.bytesperline),
	}, nil
}

// Start video capture.
func (dev *device) Start() error {
	dev.mu.Lock()
	defer dev.mu.Unlock()

	if err := dev.mapMemory(); err != nil {
		return err
	}

	for i := 0; i < dev.numBuffers; i++ {
		if err := dev.enqueue(i); err != nil {
			return err
		}
	}

	return dev.enableStream()
}

// Stop video capture. A reader blocked in ReadFrame returns io.EOF.
func (dev *device) Stop() error {
	dev.mu.Lock()
	defer dev.mu.Unlock()

	if dev.mmap == nil {
		return nil
	}

	// Disable stream (dequeues any outstanding buffers as well).
	if err := dev.disableStream(); err != nil {
		return err
	}

	return dev.unmapMemory()
}

// Read a video frame from the device. Blocks until data is available.
func (dev *device) ReadFrame() (out []byte, err error) {
	index, n, err := dev.dequeue()
	if err != nil {
		if err == syscall.EINVAL {
			err = io.EOF
		}
		return
	}

	dev.mu.Lock()
	defer dev.mu.Unlock()
	if dev.mmap == nil {
		return nil, io.EOF
	}

	// Copy data to new heap-allocated buffer.
	out = append([]byte(nil), dev.mmap[index][:n]...)

	err = dev.enqueue(index)
	return
}
