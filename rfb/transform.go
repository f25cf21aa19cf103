package rfb

// RGB888ByteIndex returns the byte offset of a channel within a 4-byte
// pixel, given the channel's bit shift and the format's endianness. In a
// little-endian pixel value bit shift N lives at byte N/8; big-endian
// mirrors the order.
func RGB888ByteIndex(shift uint8, bigEndian bool) int {
	idx := int(shift) / 8
	if bigEndian {
		idx = RGB888BytesPerPixel - 1 - idx
	}
	return idx
}

// RGB888UnusedIndex returns the byte offset within a 4-byte pixel that is
// occupied by none of the three color channels.
func RGB888UnusedIndex(r, g, b int) int {
	// indices 0..3 sum to 6
	return 6 - r - g - b
}

func rgb888Indices(pf PixelFormat) (r, g, b, unused int) {
	cf := pf.ColorSpec.(ColorFormat)
	r = RGB888ByteIndex(cf.RedShift, pf.BigEndian)
	g = RGB888ByteIndex(cf.GreenShift, pf.BigEndian)
	b = RGB888ByteIndex(cf.BlueShift, pf.BigEndian)
	unused = RGB888UnusedIndex(r, g, b)
	return
}

// TransformRGB888 re-expresses raw 32-bit RGB888 pixel data rendered in
// the input format as the equivalent bytes under the output format. Both
// formats must satisfy IsRGB888; the session core guards this before
// calling. The input buffer is never mutated; the result is a fresh buffer
// of identical length. The unused fourth byte of each pixel is carried
// across unchanged.
func TransformRGB888(data []byte, input, output PixelFormat) []byte {
	inR, inG, inB, inX := rgb888Indices(input)
	outR, outG, outB, outX := rgb888Indices(output)

	out := make([]byte, len(data))
	for base := 0; base+RGB888BytesPerPixel <= len(data); base += RGB888BytesPerPixel {
		out[base+outR] = data[base+inR]
		out[base+outG] = data[base+inG]
		out[base+outB] = data[base+inB]
		out[base+outX] = data[base+inX]
	}
	return out
}
