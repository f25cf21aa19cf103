package rfb

import "io"

// RGB888 layout constants: 32 bits per pixel, one byte per color channel
// plus one unused byte, 24 bits of depth.
const (
	RGB888BitsPerPixel  = 32
	RGB888Depth         = 24
	RGB888BytesPerPixel = 4
	RGB888BitsPerColor  = 8
	RGB888MaxValue      = 255
)

// PixelFormat describes the byte layout of framebuffer pixel data as
// exchanged on the wire (RFC 6143 section 7.4).
type PixelFormat struct {
	BitsPerPixel uint8
	Depth        uint8
	BigEndian    bool
	ColorSpec    ColorSpecification
}

// ColorSpecification is a closed variant: either a true-color ColorFormat
// or an indexed ColorMap. Only ColorFormat is implemented.
type ColorSpecification interface {
	isColorSpec()
}

// ColorFormat specifies true-color channel layout: per-channel maxima and
// the bit shift of each channel within a pixel value.
type ColorFormat struct {
	RedMax     uint16
	GreenMax   uint16
	BlueMax    uint16
	RedShift   uint8
	GreenShift uint8
	BlueShift  uint8
}

func (ColorFormat) isColorSpec() {}

// ColorMap is the indexed-color variant. Declared for completeness; both
// decoding and encoding it fail with a protocol error.
type ColorMap struct{}

func (ColorMap) isColorSpec() {}

// NewColorFormat builds a true-color PixelFormat.
func NewColorFormat(bpp, depth uint8, bigEndian bool, cf ColorFormat) PixelFormat {
	return PixelFormat{
		BitsPerPixel: bpp,
		Depth:        depth,
		BigEndian:    bigEndian,
		ColorSpec:    cf,
	}
}

// NewRGB888 builds a 32-bit RGB888 PixelFormat with the given channel
// shifts. Shifts must be byte-aligned for IsRGB888 to hold.
func NewRGB888(bigEndian bool, redShift, greenShift, blueShift uint8) PixelFormat {
	return NewColorFormat(RGB888BitsPerPixel, RGB888Depth, bigEndian, ColorFormat{
		RedMax:     RGB888MaxValue,
		GreenMax:   RGB888MaxValue,
		BlueMax:    RGB888MaxValue,
		RedShift:   redShift,
		GreenShift: greenShift,
		BlueShift:  blueShift,
	})
}

// BytesPerPixel returns the pixel size in bytes.
func (pf PixelFormat) BytesPerPixel() int {
	return int(pf.BitsPerPixel) / 8
}

// IsRGB888 reports whether the format is 32-bit true color with one full
// byte per channel at byte-aligned shifts. This is the only format family
// the transform in TransformRGB888 supports.
func (pf PixelFormat) IsRGB888() bool {
	if pf.BitsPerPixel != RGB888BitsPerPixel || pf.Depth != RGB888Depth {
		return false
	}
	cf, ok := pf.ColorSpec.(ColorFormat)
	if !ok {
		return false
	}
	return cf.RedMax == RGB888MaxValue &&
		cf.GreenMax == RGB888MaxValue &&
		cf.BlueMax == RGB888MaxValue &&
		validRGB888Shift(cf.RedShift) &&
		validRGB888Shift(cf.GreenShift) &&
		validRGB888Shift(cf.BlueShift)
}

func validRGB888Shift(shift uint8) bool {
	return shift%8 == 0 && shift < RGB888BitsPerPixel
}

// Encode writes the 16-byte pixel format block. Encoding a ColorMap
// specification is not implemented and fails.
func (pf PixelFormat) Encode(w io.Writer) error {
	cf, ok := pf.ColorSpec.(ColorFormat)
	if !ok {
		return protocolErr("PixelFormat.Encode", "color map pixel formats are not supported")
	}
	if err := writeU8(w, pf.BitsPerPixel); err != nil {
		return err
	}
	if err := writeU8(w, pf.Depth); err != nil {
		return err
	}
	be := uint8(0)
	if pf.BigEndian {
		be = 1
	}
	if err := writeU8(w, be); err != nil {
		return err
	}
	// true-color flag
	if err := writeU8(w, 1); err != nil {
		return err
	}
	if err := writeU16(w, cf.RedMax); err != nil {
		return err
	}
	if err := writeU16(w, cf.GreenMax); err != nil {
		return err
	}
	if err := writeU16(w, cf.BlueMax); err != nil {
		return err
	}
	if err := writeU8(w, cf.RedShift); err != nil {
		return err
	}
	if err := writeU8(w, cf.GreenShift); err != nil {
		return err
	}
	if err := writeU8(w, cf.BlueShift); err != nil {
		return err
	}
	return writePadding(w, 3)
}

// DecodePixelFormat reads a 16-byte pixel format block. A cleared
// true-color flag means an indexed ColorMap format, which is not
// implemented and fails the decode.
func DecodePixelFormat(r io.Reader) (PixelFormat, error) {
	var pf PixelFormat
	bpp, err := readU8(r)
	if err != nil {
		return pf, err
	}
	depth, err := readU8(r)
	if err != nil {
		return pf, err
	}
	be, err := readU8(r)
	if err != nil {
		return pf, err
	}
	trueColor, err := readU8(r)
	if err != nil {
		return pf, err
	}
	if trueColor == 0 {
		return pf, protocolErr("DecodePixelFormat", "color map pixel formats are not supported")
	}
	var cf ColorFormat
	if cf.RedMax, err = readU16(r); err != nil {
		return pf, err
	}
	if cf.GreenMax, err = readU16(r); err != nil {
		return pf, err
	}
	if cf.BlueMax, err = readU16(r); err != nil {
		return pf, err
	}
	if cf.RedShift, err = readU8(r); err != nil {
		return pf, err
	}
	if cf.GreenShift, err = readU8(r); err != nil {
		return pf, err
	}
	if cf.BlueShift, err = readU8(r); err != nil {
		return pf, err
	}
	if err := readPadding(r, 3); err != nil {
		return pf, err
	}
	pf.BitsPerPixel = bpp
	pf.Depth = depth
	pf.BigEndian = be != 0
	pf.ColorSpec = cf
	return pf, nil
}
