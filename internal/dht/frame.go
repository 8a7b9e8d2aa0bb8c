package dht

// ExtractFrame converts 40 pulse widths into a checksummed frame.
//
// The bit threshold adapts to each capture: it is the midpoint of the shortest
// and longest pulse. A width strictly greater than the threshold is a 1; a width
// equal to it is a 0. Bits are packed MSB first.
func ExtractFrame(widths []int) (Frame, error) {
	if len(widths) != FrameBits {
		return Frame{}, &FrameLengthError{Got: len(widths)}
	}

	lo, hi := widths[0], widths[0]
	for _, w := range widths[1:] {
		if w < lo {
			lo = w
		}
		if w > hi {
			hi = w
		}
	}
	threshold := float64(lo+hi) / 2

	var f Frame
	for i, w := range widths {
		f[i/8] <<= 1
		if float64(w) > threshold {
			f[i/8] |= 1
		}
	}

	if want := checksum(f); f[4] != want {
		return Frame{}, &ChecksumError{Got: f[4], Want: want}
	}
	return f, nil
}
