package rfb

import "io"

// EncodingType is the signed 32-bit wire discriminant for a rectangle's
// payload encoding (RFC 6143 section 7.7).
type EncodingType int32

const (
	EncodingRaw      EncodingType = 0
	EncodingCopyRect EncodingType = 1
	EncodingRRE      EncodingType = 2
	EncodingHextile  EncodingType = 5
	EncodingTRLE     EncodingType = 15
	EncodingZRLE     EncodingType = 16

	// Pseudo-encodings clients may advertise in SetEncodings.
	EncodingCursorPseudo      EncodingType = -239
	EncodingDesktopSizePseudo EncodingType = -223
)

// String returns the encoding name.
func (t EncodingType) String() string {
	switch t {
	case EncodingRaw:
		return "raw"
	case EncodingCopyRect:
		return "copyrect"
	case EncodingRRE:
		return "rre"
	case EncodingHextile:
		return "hextile"
	case EncodingTRLE:
		return "trle"
	case EncodingZRLE:
		return "zrle"
	case EncodingCursorPseudo:
		return "cursor-pseudo"
	case EncodingDesktopSizePseudo:
		return "desktopsize-pseudo"
	}
	return "unknown"
}

func decodeEncodingType(r io.Reader) (EncodingType, error) {
	v, err := readI32(r)
	if err != nil {
		return 0, err
	}
	t := EncodingType(v)
	switch t {
	case EncodingRaw, EncodingCopyRect, EncodingRRE, EncodingHextile,
		EncodingTRLE, EncodingZRLE,
		EncodingCursorPseudo, EncodingDesktopSizePseudo:
		return t, nil
	}
	return 0, protocolErrf("DecodeEncodingType", "unrecognized encoding type %d", v)
}

// Encoding is a rectangle's pixel payload. The set of implementations is
// fixed within this package; dispatch is by type switch. Raw is the only
// encoding the server produces today, but Rectangle and FramebufferUpdate
// serialization never look inside the payload, so adding a compressed
// encoding does not touch them.
type Encoding interface {
	// Type returns the wire discriminant for this encoding.
	Type() EncodingType

	// Encode serializes the payload with no added header.
	Encode() []byte

	// Transform returns a new payload of the same concrete encoding,
	// re-expressed under the output pixel format. The receiver is not
	// mutated. Both formats must satisfy IsRGB888.
	Transform(input, output PixelFormat) Encoding

	sealed()
}

// RawEncoding is uncompressed pixel data: exactly
// width*height*BytesPerPixel bytes in row-major order.
type RawEncoding struct {
	Pixels []byte
}

// NewRawEncoding wraps raw pixel bytes as a rectangle payload.
func NewRawEncoding(pixels []byte) *RawEncoding {
	return &RawEncoding{Pixels: pixels}
}

// Type returns EncodingRaw.
func (*RawEncoding) Type() EncodingType {
	return EncodingRaw
}

// Encode returns the raw pixel bytes.
func (e *RawEncoding) Encode() []byte {
	return e.Pixels
}

// Transform returns a new RawEncoding with the pixels remapped from the
// input to the output format.
func (e *RawEncoding) Transform(input, output PixelFormat) Encoding {
	return &RawEncoding{Pixels: TransformRGB888(e.Pixels, input, output)}
}

func (*RawEncoding) sealed() {}
