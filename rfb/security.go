package rfb

import "io"

// SecurityType is an RFB security type. The constant values are the wire
// codes from RFC 6143 section 7.1.2, not positional ordinals.
type SecurityType uint8

const (
	// SecTypeNone performs no authentication. This is the only security
	// type with a complete server-side implementation.
	SecTypeNone SecurityType = 1

	// SecTypeVNCAuth is classic VNC challenge/response authentication. It
	// can be negotiated, but the server performs no challenge exchange;
	// offer SecTypeNone unless a client is known to tolerate that.
	SecTypeVNCAuth SecurityType = 2
)

// String returns the security type name.
func (t SecurityType) String() string {
	switch t {
	case SecTypeNone:
		return "none"
	case SecTypeVNCAuth:
		return "vnc-auth"
	}
	return "unknown"
}

// Encode writes the 1-byte security type code.
func (t SecurityType) Encode(w io.Writer) error {
	return writeU8(w, uint8(t))
}

// DecodeSecurityType reads the client's 1-byte security type choice. The
// value is returned unvalidated so the caller can report an unsupported
// choice back to the client before tearing down.
func DecodeSecurityType(r io.Reader) (SecurityType, error) {
	v, err := readU8(r)
	return SecurityType(v), err
}

// SecurityTypes is the ordered set of security types a server offers.
// It must never be empty; Initialize asserts this.
type SecurityTypes []SecurityType

// Contains reports whether t is among the offered types.
func (ts SecurityTypes) Contains(t SecurityType) bool {
	for _, have := range ts {
		if have == t {
			return true
		}
	}
	return false
}

// Encode writes the 1-byte count followed by one code per type.
func (ts SecurityTypes) Encode(w io.Writer) error {
	if err := writeU8(w, uint8(len(ts))); err != nil {
		return err
	}
	for _, t := range ts {
		if err := t.Encode(w); err != nil {
			return err
		}
	}
	return nil
}

// SecurityResult is the outcome of security negotiation. The zero value is
// success; a failure carries a human-readable reason sent to the client.
type SecurityResult struct {
	Failed bool
	Reason string
}

// SecuritySuccess returns a successful negotiation result.
func SecuritySuccess() SecurityResult {
	return SecurityResult{}
}

// SecurityFailure returns a failed negotiation result with the given reason.
func SecurityFailure(reason string) SecurityResult {
	return SecurityResult{Failed: true, Reason: reason}
}

// Encode writes the 4-byte result code, and for failures the
// length-prefixed reason string.
func (sr SecurityResult) Encode(w io.Writer) error {
	if !sr.Failed {
		return writeU32(w, 0)
	}
	if err := writeU32(w, 1); err != nil {
		return err
	}
	return writeText(w, sr.Reason)
}
