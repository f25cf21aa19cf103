package rfb

import (
	"encoding/binary"
	"io"
	"unicode/utf8"

	"github.com/go-faster/errors"
)

// Wire primitives. Everything in RFB is big-endian ("network byte order").
// Read failures propagate the underlying stream error; malformed content
// (invalid UTF-8, oversized lengths) surfaces as a ProtocolError.

// maxTextLen bounds length-prefixed text (cut buffers, reason strings) so a
// misbehaving peer cannot make us allocate gigabytes from a 4-byte header.
const maxTextLen = 1 << 20

func readU8(r io.Reader) (uint8, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, errors.Wrap(err, "read u8")
	}
	return buf[0], nil
}

func readU16(r io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, errors.Wrap(err, "read u16")
	}
	return binary.BigEndian.Uint16(buf[:]), nil
}

func readU32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, errors.Wrap(err, "read u32")
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

func readI32(r io.Reader) (int32, error) {
	v, err := readU32(r)
	return int32(v), err
}

func readBytes(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, errors.Wrapf(err, "read %d bytes", n)
	}
	return buf, nil
}

// readPadding consumes and discards n padding bytes.
func readPadding(r io.Reader, n int) error {
	_, err := readBytes(r, n)
	return err
}

// readText reads a 4-byte big-endian length followed by that many bytes of
// text. RFB nominally uses Latin-1; we require valid UTF-8 and fail the
// decode otherwise.
func readText(r io.Reader, op string) (string, error) {
	n, err := readU32(r)
	if err != nil {
		return "", err
	}
	if n > maxTextLen {
		return "", protocolErrf(op, "text length %d exceeds limit", n)
	}
	buf, err := readBytes(r, int(n))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(buf) {
		return "", protocolErr(op, "text is not valid utf-8")
	}
	return string(buf), nil
}

func writeU8(w io.Writer, v uint8) error {
	if _, err := w.Write([]byte{v}); err != nil {
		return errors.Wrap(err, "write u8")
	}
	return nil
}

func writeU16(w io.Writer, v uint16) error {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	if _, err := w.Write(buf[:]); err != nil {
		return errors.Wrap(err, "write u16")
	}
	return nil
}

func writeU32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	if _, err := w.Write(buf[:]); err != nil {
		return errors.Wrap(err, "write u32")
	}
	return nil
}

func writeI32(w io.Writer, v int32) error {
	return writeU32(w, uint32(v))
}

func writeBytes(w io.Writer, b []byte) error {
	if _, err := w.Write(b); err != nil {
		return errors.Wrap(err, "write bytes")
	}
	return nil
}

func writePadding(w io.Writer, n int) error {
	return writeBytes(w, make([]byte, n))
}

// writeText writes a 4-byte big-endian length followed by the text bytes.
func writeText(w io.Writer, s string) error {
	if err := writeU32(w, uint32(len(s))); err != nil {
		return err
	}
	return writeBytes(w, []byte(s))
}
