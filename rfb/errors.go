package rfb

import (
	"fmt"

	"github.com/go-faster/errors"
)

// Negotiation failures. These are distinguishable from generic protocol
// errors so callers can tell a too-old client apart from a malformed one.
var (
	// ErrUnsupportedVersion is returned when the client requests a protocol
	// version older than the one the server is configured for.
	ErrUnsupportedVersion = errors.New("unsupported client protocol version")

	// ErrUnsupportedSecurityType is returned when the client picks a
	// security type the server did not offer.
	ErrUnsupportedSecurityType = errors.New("unsupported security type")
)

// ProtocolError indicates the peer sent bytes that violate the RFB wire
// format: a bad version string, an unknown message discriminant, invalid
// text, or an unimplemented pixel format variant. It is always fatal to
// the connection.
type ProtocolError struct {
	Op  string
	Msg string
	Err error
}

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("rfb: %s: %s: %v", e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("rfb: %s: %s", e.Op, e.Msg)
}

// Unwrap returns the underlying error, if any.
func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// IsProtocolError reports whether err is (or wraps) a ProtocolError.
func IsProtocolError(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}

func protocolErr(op, msg string) error {
	return &ProtocolError{Op: op, Msg: msg}
}

func protocolErrf(op, format string, args ...interface{}) error {
	return &ProtocolError{Op: op, Msg: fmt.Sprintf(format, args...)}
}
