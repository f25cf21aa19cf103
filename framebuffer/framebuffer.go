// Package framebuffer provides example framebuffer producers for the RFB
// server: solid colors, a gradient, and a couple of animated test
// patterns, rendered directly into a configurable RGB888 byte order.
package framebuffer

import (
	"math"
	"sync/atomic"

	"github.com/go-faster/errors"

	"github.com/coder/rfbserver/rfb"
)

// Order maps the red, green and blue channels onto byte positions 0..3 of
// a 4-byte pixel, endian-agnostically. Order{0, 1, 2} is RGBx.
type Order struct {
	R uint8
	G uint8
	B uint8
}

// Validate checks that the three positions are distinct values in 0..3.
func (o Order) Validate() error {
	if o.R > 3 || o.G > 3 || o.B > 3 {
		return errors.New("channel order values must be 0..3")
	}
	if o.R == o.G || o.R == o.B || o.G == o.B {
		return errors.New("channel order values must be unique")
	}
	return nil
}

// Shift converts a byte position to the channel's bit shift within the
// pixel value.
func Shift(order uint8) uint8 {
	return (3 - order) * rfb.RGB888BitsPerColor
}

// Index converts a byte position to the channel's byte offset in memory
// under the given endianness.
func Index(order uint8, bigEndian bool) int {
	if bigEndian {
		return int(order)
	}
	return rfb.RGB888BytesPerPixel - 1 - int(order)
}

// PixelFormat returns the RGB888 pixel format describing this byte order.
func (o Order) PixelFormat(bigEndian bool) rfb.PixelFormat {
	return rfb.NewRGB888(bigEndian, Shift(o.R), Shift(o.G), Shift(o.B))
}

// Pattern selects what the backend draws.
type Pattern string

const (
	PatternRed      Pattern = "red"
	PatternGreen    Pattern = "green"
	PatternBlue     Pattern = "blue"
	PatternWhite    Pattern = "white"
	PatternBlack    Pattern = "black"
	PatternGradient Pattern = "gradient"
	PatternPlasma   Pattern = "plasma"
	PatternWheel    Pattern = "wheel"
)

// Patterns lists every supported pattern name.
func Patterns() []Pattern {
	return []Pattern{
		PatternRed, PatternGreen, PatternBlue, PatternWhite, PatternBlack,
		PatternGradient, PatternPlasma, PatternWheel,
	}
}

// Backend renders a pattern as full-frame framebuffer updates in a fixed
// RGB888 byte order. Animated patterns advance one frame per update. Safe
// for concurrent use; each connection may share one backend.
type Backend struct {
	Pattern   Pattern
	Order     Order
	BigEndian bool

	frame atomic.Int64
}

// PixelFormat returns the format the backend renders in.
func (b *Backend) PixelFormat() rfb.PixelFormat {
	return b.Order.PixelFormat(b.BigEndian)
}

// Update renders the next frame as a single full-screen raw rectangle. It
// satisfies rfbserver.ProducerFunc.
func (b *Backend) Update(width, height uint16) (rfb.FramebufferUpdate, error) {
	if err := b.Order.Validate(); err != nil {
		return rfb.FramebufferUpdate{}, err
	}
	frame := int(b.frame.Add(1) - 1)
	pixels := b.render(int(width), int(height), frame)
	rect := rfb.NewRectangle(0, 0, width, height, rfb.NewRawEncoding(pixels))
	return rfb.NewFramebufferUpdate(rect), nil
}

func (b *Backend) render(width, height, frame int) []byte {
	pixels := make([]byte, width*height*rfb.RGB888BytesPerPixel)

	rIdx := Index(b.Order.R, b.BigEndian)
	gIdx := Index(b.Order.G, b.BigEndian)
	bIdx := Index(b.Order.B, b.BigEndian)
	set := func(x, y int, r, g, bl uint8) {
		base := (y*width + x) * rfb.RGB888BytesPerPixel
		pixels[base+rIdx] = r
		pixels[base+gIdx] = g
		pixels[base+bIdx] = bl
	}

	switch b.Pattern {
	case PatternRed:
		fill(set, width, height, 0xff, 0, 0)
	case PatternGreen:
		fill(set, width, height, 0, 0xff, 0)
	case PatternBlue:
		fill(set, width, height, 0, 0, 0xff)
	case PatternWhite:
		fill(set, width, height, 0xff, 0xff, 0xff)
	case PatternBlack:
		// already zeroed
	case PatternGradient:
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				v := uint8(x * 255 / max(width-1, 1))
				set(x, y, v, v, 255-v)
			}
		}
	case PatternPlasma:
		t := float64(frame) * 0.1
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				fx := float64(x) / float64(width)
				fy := float64(y) / float64(height)
				v := math.Sin(fx*10+t) +
					math.Sin(fy*10+t*1.2) +
					math.Sin((fx+fy)*10+t*0.8)
				v = (v + 3) / 6
				set(x, y,
					uint8(v*255),
					uint8((1-v)*255),
					uint8(math.Abs(math.Sin(v*math.Pi))*255))
			}
		}
	case PatternWheel:
		cx := float64(width) / 2
		cy := float64(height) / 2
		maxRadius := math.Min(cx, cy) * 0.8
		rotation := float64(frame) * 2 * math.Pi / 120
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				dx := float64(x) - cx
				dy := float64(y) - cy
				dist := math.Sqrt(dx*dx + dy*dy)
				if dist > maxRadius {
					continue
				}
				hue := (math.Atan2(dy, dx) + rotation) * 180 / math.Pi
				for hue < 0 {
					hue += 360
				}
				r, g, bl := hsvToRGB(hue, dist/maxRadius, 1.0)
				set(x, y, r, g, bl)
			}
		}
	default:
		fill(set, width, height, 0x80, 0x80, 0x80)
	}
	return pixels
}

func fill(set func(x, y int, r, g, bl uint8), width, height int, r, g, bl uint8) {
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			set(x, y, r, g, bl)
		}
	}
}

func hsvToRGB(h, s, v float64) (uint8, uint8, uint8) {
	h = math.Mod(h, 360) / 60
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h, 2)-1))
	m := v - c

	var r, g, b float64
	switch {
	case h < 1:
		r, g, b = c, x, 0
	case h < 2:
		r, g, b = x, c, 0
	case h < 3:
		r, g, b = 0, c, x
	case h < 4:
		r, g, b = 0, x, c
	case h < 5:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return uint8((r + m) * 255), uint8((g + m) * 255), uint8((b + m) * 255)
}
