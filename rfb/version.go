package rfb

import "io"

// ProtoVersion is one of the three published RFB protocol versions. The
// values are ordered, so versions compare directly: Proto33 < Proto37 <
// Proto38.
type ProtoVersion uint8

const (
	Proto33 ProtoVersion = iota + 1
	Proto37
	Proto38
)

// versionLineLen is the fixed length of the version exchange line.
const versionLineLen = 12

func (v ProtoVersion) wireString() string {
	switch v {
	case Proto33:
		return "RFB 003.003\n"
	case Proto37:
		return "RFB 003.007\n"
	case Proto38:
		return "RFB 003.008\n"
	}
	return ""
}

// String returns a short human-readable form, e.g. "3.8".
func (v ProtoVersion) String() string {
	switch v {
	case Proto33:
		return "3.3"
	case Proto37:
		return "3.7"
	case Proto38:
		return "3.8"
	}
	return "unknown"
}

// Encode writes the 12-byte ASCII version line.
func (v ProtoVersion) Encode(w io.Writer) error {
	s := v.wireString()
	if s == "" {
		return protocolErrf("ProtoVersion.Encode", "invalid version value %d", uint8(v))
	}
	return writeBytes(w, []byte(s))
}

// DecodeProtoVersion reads a 12-byte version line and maps it to a known
// protocol version. Anything else is a protocol error.
func DecodeProtoVersion(r io.Reader) (ProtoVersion, error) {
	buf, err := readBytes(r, versionLineLen)
	if err != nil {
		return 0, err
	}
	switch string(buf) {
	case "RFB 003.003\n":
		return Proto33, nil
	case "RFB 003.007\n":
		return Proto37, nil
	case "RFB 003.008\n":
		return Proto38, nil
	}
	return 0, protocolErrf("DecodeProtoVersion", "invalid protocol version %q", buf)
}
