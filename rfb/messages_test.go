package rfb

import (
	"bytes"
	"reflect"
	"testing"
)

func TestDecodeSetPixelFormat(t *testing.T) {
	var wire bytes.Buffer
	wire.WriteByte(0)                   // discriminant
	wire.Write([]byte{0, 0, 0})         // padding
	pf := NewRGB888(false, 16, 8, 0)
	if err := pf.Encode(&wire); err != nil {
		t.Fatal(err)
	}

	msg, err := DecodeClientMessage(&wire)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	spf, ok := msg.(SetPixelFormat)
	if !ok {
		t.Fatalf("decoded %T, want SetPixelFormat", msg)
	}
	if spf.Format != pf {
		t.Errorf("format = %+v, want %+v", spf.Format, pf)
	}
}

func TestDecodeSetEncodings(t *testing.T) {
	tests := []struct {
		name string
		wire []byte
		want []EncodingType
	}{
		{
			name: "raw and zrle",
			wire: []byte{
				2, 0, // discriminant + padding
				0, 2, // count
				0, 0, 0, 0, // raw
				0, 0, 0, 16, // zrle
			},
			want: []EncodingType{EncodingRaw, EncodingZRLE},
		},
		{
			name: "pseudo encodings",
			wire: []byte{
				2, 0,
				0, 1,
				0xff, 0xff, 0xff, 0x11, // -239, cursor pseudo
			},
			want: []EncodingType{EncodingCursorPseudo},
		},
		{
			name: "empty list",
			wire: []byte{2, 0, 0, 0},
			want: []EncodingType{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := DecodeClientMessage(bytes.NewReader(tt.wire))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			se, ok := msg.(SetEncodings)
			if !ok {
				t.Fatalf("decoded %T, want SetEncodings", msg)
			}
			if !reflect.DeepEqual(se.Encodings, tt.want) {
				t.Errorf("encodings = %v, want %v", se.Encodings, tt.want)
			}
		})
	}
}

func TestDecodeSetEncodingsUnknownType(t *testing.T) {
	wire := []byte{
		2, 0,
		0, 1,
		0, 0, 0, 99, // not a recognized encoding
	}
	_, err := DecodeClientMessage(bytes.NewReader(wire))
	if err == nil {
		t.Fatal("expected error for unknown encoding type")
	}
	if !IsProtocolError(err) {
		t.Errorf("expected protocol error, got %v", err)
	}
}

func TestDecodeFramebufferUpdateRequest(t *testing.T) {
	wire := []byte{
		3,    // discriminant
		1,    // incremental
		0, 5, // x
		0, 10, // y
		1, 0, // width = 256
		0, 200, // height
	}
	msg, err := DecodeClientMessage(bytes.NewReader(wire))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := FramebufferUpdateRequest{
		Incremental: true, X: 5, Y: 10, Width: 256, Height: 200,
	}
	if msg != want {
		t.Errorf("decoded %+v, want %+v", msg, want)
	}
}

func TestDecodeKeyEvent(t *testing.T) {
	tests := []struct {
		name string
		wire []byte
		want KeyEvent
	}{
		{
			name: "escape pressed",
			wire: []byte{4, 1, 0, 0, 0, 0, 0xff, 0x1b},
			want: KeyEvent{Pressed: true, Keysym: KeyEscape, Raw: 0xff1b},
		},
		{
			name: "min keysym released",
			wire: []byte{4, 0, 0, 0, 0, 0, 0, 0},
			want: KeyEvent{Pressed: false, Keysym: 0, Raw: 0},
		},
		{
			name: "max keysym keeps raw value",
			wire: []byte{4, 1, 0, 0, 0xff, 0xff, 0xff, 0xfe},
			want: KeyEvent{Pressed: true, Keysym: KeySym(0xfffffffe), Raw: 0xfffffffe},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := DecodeClientMessage(bytes.NewReader(tt.wire))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if msg != tt.want {
				t.Errorf("decoded %+v, want %+v", msg, tt.want)
			}
		})
	}
}

func TestDecodePointerEvent(t *testing.T) {
	wire := []byte{5, 0x05, 0, 100, 0, 50}
	msg, err := DecodeClientMessage(bytes.NewReader(wire))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	ev, ok := msg.(PointerEvent)
	if !ok {
		t.Fatalf("decoded %T, want PointerEvent", msg)
	}
	if ev.X != 100 || ev.Y != 50 {
		t.Errorf("position = (%d, %d), want (100, 50)", ev.X, ev.Y)
	}
	if !ev.Buttons.Pressed(ButtonLeft) || !ev.Buttons.Pressed(ButtonRight) {
		t.Errorf("buttons = %08b, want left and right pressed", ev.Buttons)
	}
	if ev.Buttons.Pressed(ButtonMiddle) {
		t.Errorf("buttons = %08b, middle should not be pressed", ev.Buttons)
	}
}

func TestDecodeClientCutText(t *testing.T) {
	tests := []struct {
		name string
		wire []byte
		want string
	}{
		{
			name: "short text",
			wire: []byte{6, 0, 0, 0, 0, 0, 0, 2, 'h', 'i'},
			want: "hi",
		},
		{
			name: "zero length",
			wire: []byte{6, 0, 0, 0, 0, 0, 0, 0},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := DecodeClientMessage(bytes.NewReader(tt.wire))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if msg != (ClientCutText{Text: tt.want}) {
				t.Errorf("decoded %+v, want text %q", msg, tt.want)
			}
		})
	}
}

func TestDecodeUnknownMessageType(t *testing.T) {
	for _, tag := range []byte{1, 7, 255} {
		_, err := DecodeClientMessage(bytes.NewReader([]byte{tag}))
		if err == nil {
			t.Fatalf("expected error for message type %d", tag)
		}
		if !IsProtocolError(err) {
			t.Errorf("type %d: expected protocol error, got %v", tag, err)
		}
	}
}

func TestServerInitEncode(t *testing.T) {
	si := ServerInit{
		Width:  800,
		Height: 600,
		Format: NewRGB888(false, 16, 8, 0),
		Name:   "test",
	}
	var buf bytes.Buffer
	if err := si.Encode(&buf); err != nil {
		t.Fatal(err)
	}

	b := buf.Bytes()
	if len(b) != 24+len(si.Name) {
		t.Fatalf("encoded length = %d, want %d", len(b), 24+len(si.Name))
	}
	if b[0] != 0x03 || b[1] != 0x20 {
		t.Errorf("width bytes = %v, want [3 32]", b[0:2])
	}
	if b[2] != 0x02 || b[3] != 0x58 {
		t.Errorf("height bytes = %v, want [2 88]", b[2:4])
	}
	if !bytes.Equal(b[20:24], []byte{0, 0, 0, 4}) {
		t.Errorf("name length bytes = %v, want [0 0 0 4]", b[20:24])
	}
	if string(b[24:]) != "test" {
		t.Errorf("name = %q, want \"test\"", b[24:])
	}
}

func TestDecodeClientInit(t *testing.T) {
	tests := []struct {
		flag byte
		want bool
	}{
		{0, false},
		{1, true},
		{0xff, true},
	}
	for _, tt := range tests {
		ci, err := DecodeClientInit(bytes.NewReader([]byte{tt.flag}))
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if ci.Shared != tt.want {
			t.Errorf("flag %d: shared = %v, want %v", tt.flag, ci.Shared, tt.want)
		}
	}
}

func TestFramebufferUpdateEncode(t *testing.T) {
	pixels := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	rect := NewRectangle(10, 20, 2, 1, NewRawEncoding(pixels))
	fbu := NewFramebufferUpdate(rect)

	var buf bytes.Buffer
	if err := fbu.Encode(&buf); err != nil {
		t.Fatal(err)
	}

	want := []byte{
		0, 0, // message type + padding
		0, 1, // rectangle count
		0, 10, 0, 20, // x, y
		0, 2, 0, 1, // width, height
		0, 0, 0, 0, // encoding type (raw)
		1, 2, 3, 4, 5, 6, 7, 8, // payload
	}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("encoded %v, want %v", buf.Bytes(), want)
	}
}

func TestFramebufferUpdateTransform(t *testing.T) {
	input := NewRGB888(false, 0, 8, 16)
	output := NewRGB888(false, 16, 8, 0)

	orig := []byte{0xaa, 0xbb, 0xcc, 0xdd}
	fbu := NewFramebufferUpdate(NewRectangle(0, 0, 1, 1, NewRawEncoding(orig)))

	transformed := fbu.Transform(input, output)
	got := transformed.Rectangles[0].Data.Encode()
	if !bytes.Equal(got, []byte{0xcc, 0xbb, 0xaa, 0xdd}) {
		t.Errorf("transformed payload = %v", got)
	}
	// the original update is untouched
	if !bytes.Equal(fbu.Rectangles[0].Data.Encode(), orig) {
		t.Error("transform mutated the original update")
	}
}
