package rfb

import (
	"bytes"
	"testing"
)

func TestSecurityTypeWireCodes(t *testing.T) {
	// The wire codes come from RFC 6143, not from declaration order.
	if SecTypeNone != 1 {
		t.Errorf("SecTypeNone = %d, want 1", SecTypeNone)
	}
	if SecTypeVNCAuth != 2 {
		t.Errorf("SecTypeVNCAuth = %d, want 2", SecTypeVNCAuth)
	}
}

func TestSecurityTypesEncode(t *testing.T) {
	var buf bytes.Buffer
	types := SecurityTypes{SecTypeNone, SecTypeVNCAuth}
	if err := types.Encode(&buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := []byte{2, 1, 2}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("encoded %v, want %v", buf.Bytes(), want)
	}
}

func TestSecurityTypesContains(t *testing.T) {
	types := SecurityTypes{SecTypeNone}
	if !types.Contains(SecTypeNone) {
		t.Error("expected Contains(SecTypeNone)")
	}
	if types.Contains(SecTypeVNCAuth) {
		t.Error("unexpected Contains(SecTypeVNCAuth)")
	}
	if types.Contains(SecurityType(9)) {
		t.Error("unexpected Contains(9)")
	}
}

func TestDecodeSecurityTypeUnvalidated(t *testing.T) {
	// The choice byte is returned as-is so the handshake can report an
	// unsupported pick back to the client.
	got, err := DecodeSecurityType(bytes.NewReader([]byte{9}))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != SecurityType(9) {
		t.Errorf("decoded %d, want 9", got)
	}
}

func TestSecurityResultEncode(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var buf bytes.Buffer
		if err := SecuritySuccess().Encode(&buf); err != nil {
			t.Fatalf("encode: %v", err)
		}
		want := []byte{0, 0, 0, 0}
		if !bytes.Equal(buf.Bytes(), want) {
			t.Errorf("encoded %v, want %v", buf.Bytes(), want)
		}
	})

	t.Run("failure", func(t *testing.T) {
		var buf bytes.Buffer
		if err := SecurityFailure("nope").Encode(&buf); err != nil {
			t.Fatalf("encode: %v", err)
		}
		want := []byte{0, 0, 0, 1, 0, 0, 0, 4, 'n', 'o', 'p', 'e'}
		if !bytes.Equal(buf.Bytes(), want) {
			t.Errorf("encoded %v, want %v", buf.Bytes(), want)
		}
	})
}
