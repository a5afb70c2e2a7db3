package framebuffer

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/BeatGlow/oled"
	"github.com/BeatGlow/oled/pixel"
)

const (
	// From <linux/fb.h>
	fbioGetVScreenInfo = 0x4600
	fbioGetFScreenInfo = 0x4602
)

type linuxFrameBuffer struct {
	pixel.Image
	name string
	f    *os.File
	mem  []byte
}

// Open a Linux FrameBuffer device (fbdev) by name, typically /dev/fb[0..x].
func Open(name string) (oled.Display, error) {
	f, err := os.OpenFile(name, os.O_RDWR, os.ModeDevice)
	if err != nil {
		return nil, err
	}

	var (
		fd         = f.Fd()
		info       linuxFixScreenInfo
		screenInfo linuxVarScreenInfo
	)
	if err = ioctl(fd, fbioGetFScreenInfo, unsafe.Pointer(&info)); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err = ioctl(fd, fbioGetVScreenInfo, unsafe.Pointer(&screenInfo)); err != nil {
		_ = f.Close()
		return nil, err
	}

	// Map pixel buffer.
	mem, err := unix.Mmap(int(fd), 0, int(info.SmemLen), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	img, err := newImage(mem, &info, &screenInfo)
	if err != nil {
		_ = unix.Munmap(mem)
		_ = f.Close()
		return nil, err
	}

	return &linuxFrameBuffer{
		Image: img,
		name:  name,
		f:     f,
		mem:   mem,
	}, nil
}

// newImage returns the image over the visible part of the video memory.
func newImage(mem []byte, info *linuxFixScreenInfo, screenInfo *linuxVarScreenInfo) (pixel.Image, error) {
	var (
		w      = int(screenInfo.Xres)
		h      = int(screenInfo.Yres)
		stride = int(info.LineLength)
		offset = int(screenInfo.Yoffset) * stride
	)
	if w <= 0 || h <= 0 || offset+h*stride > len(mem) {
		return nil, fmt.Errorf("framebuffer: invalid geometry %dx%d with %d bytes per line in %d bytes", w, h, stride, len(mem))
	}

	buf := pixel.BufferOf(mem[offset:], w, h, stride)
	switch linuxParsePixelFormat(screenInfo) {
	case linuxRGB565:
		return &pixel.RGB565Image{
			Buffer: buf,
			Order:  binary.LittleEndian,
		}, nil
	case linuxXRGB8888:
		return &xrgb8888{
			Buffer: buf,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %d bits per pixel", ErrColorModel, screenInfo.BitsPerPixel)
	}
}

func (fb *linuxFrameBuffer) String() string {
	bounds := fb.Bounds()
	return fmt.Sprintf("framebuffer %s %dx%d", fb.name, bounds.Dx(), bounds.Dy())
}

// Close the framebuffer device
func (fb *linuxFrameBuffer) Close() error {
	if err := unix.Munmap(fb.mem); err != nil {
		return err
	}
	return fb.f.Close()
}

// Show toggles the display on or off.
func (fb *linuxFrameBuffer) Show(_ bool) error {
	return nil
}

// SetContrast adjusts the contrast level.
func (fb *linuxFrameBuffer) SetContrast(_ uint8) error {
	return nil
}

// Refresh marks the image as shown, the pixels are already in video memory.
func (fb *linuxFrameBuffer) Refresh() error {
	fb.Clean()
	return nil
}

func ioctl(fd, cmd uintptr, arg unsafe.Pointer) error {
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, cmd, uintptr(arg)); errno != 0 {
		return os.NewSyscallError("SYS_IOCTL", errno)
	}
	return nil
}

// xrgb8888 is the 32 bits per pixel little endian layout, blue in the first byte.
type xrgb8888 struct {
	pixel.Buffer
}

func (p *xrgb8888) ColorModel() color.Model {
	return color.RGBAModel
}

func (p *xrgb8888) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return color.Transparent
	}
	i := y*p.Stride + x*4
	return color.RGBA{R: p.Pix[i+2], G: p.Pix[i+1], B: p.Pix[i], A: 0xff}
}

func (p *xrgb8888) Set(x, y int, c color.Color) {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return
	}
	v := color.RGBAModel.Convert(c).(color.RGBA)
	i := y*p.Stride + x*4
	p.Pix[i+0] = v.B
	p.Pix[i+1] = v.G
	p.Pix[i+2] = v.R
	p.Pix[i+3] = 0xff
	p.Mark(image.Rect(x, y, x+1, y+1))
}

func (p *xrgb8888) Fill(c color.Color) {
	v := color.RGBAModel.Convert(c).(color.RGBA)
	for y := 0; y < p.Rect.Dy(); y++ {
		row := p.Rows(y, y+1)
		for i := 0; i+4 <= p.Rect.Dx()*4; i += 4 {
			row[i+0], row[i+1], row[i+2], row[i+3] = v.B, v.G, v.R, 0xff
		}
	}
	p.Mark(p.Rect)
}

type linuxFixScreenInfo struct {
	ID         [16]byte  // Identification string eg "TT Builtin"
	SmemStart  uintptr   // Start of frame buffer mem
	SmemLen    uint32    // Length of frame buffer mem
	Type       uint32    // FB_TYPE_
	TypeAux    uint32    // Interleave for interleaved Planes
	Visual     uint32    // FB_VISUAL_
	Xpanstep   uint16    // Zero if no hardware panning
	Ypanstep   uint16    // Zero if no hardware panning
	Ywrapstep  uint16    // Zero if no hardware ywrap
	LineLength uint32    // Length of a line in bytes
	MmioStart  uintptr   // Start of Memory Mapped I/O (physical address)
	MmioLen    uint32    // Length of Memory Mapped I/O
	Accel      uint32    // Type of acceleration available
	Reserved   [3]uint16 // Reserved for future compatibility
}

// linuxBitField for the color
type linuxBitField struct {
	Offset   uint32 // Beginning of bitfield
	Length   uint32 // Length of bitfield
	MsbRight uint32 // != 0 : Most significant bit is right
}

// linuxVarScreenInfo contains device independent changeable information about a frame buffer device and a specific video mode.
type linuxVarScreenInfo struct {
	Xres                    uint32
	Yres                    uint32
	XresVirtual             uint32
	YresVirtual             uint32
	Xoffset                 uint32
	Yoffset                 uint32
	BitsPerPixel            uint32
	Grayscale               uint32
	Red, Green, Blue, Alpha linuxBitField
	Nonstd                  uint32
	Activate                uint32
	Height                  uint32
	Width                   uint32
	AccelFlags              uint32
	Pixclock                uint32
	LeftMargin              uint32
	RightMargin             uint32
	UpperMargin             uint32
	LowerMargin             uint32
	HsyncLen                uint32
	VsyncLen                uint32
	Sync                    uint32
	Vmode                   uint32
	Rotate                  uint32
	Colorspace              uint32
	Reserved                [4]uint32
}

// linuxPixelFormat of the framebuffer
type linuxPixelFormat int

const (
	linuxUnknownPixelFormat linuxPixelFormat = iota
	linuxRGB565
	linuxXRGB8888
)

func linuxParsePixelFormat(info *linuxVarScreenInfo) linuxPixelFormat {
	switch {
	case info.BitsPerPixel == 16 &&
		info.Blue.Offset == 0 &&
		info.Blue.Length == 5 &&
		info.Green.Offset == 5 &&
		info.Green.Length == 6 &&
		info.Red.Offset == 11 &&
		info.Red.Length == 5:
		return linuxRGB565

	case info.BitsPerPixel == 32 &&
		info.Blue.Offset == 0 &&
		info.Blue.Length == 8 &&
		info.Green.Offset == 8 &&
		info.Green.Length == 8 &&
		info.Red.Offset == 16 &&
		info.Red.Length == 8:
		return linuxXRGB8888
	}
	return linuxUnknownPixelFormat
}

var _ oled.Display = (*linuxFrameBuffer)(nil)
