package dht

// decoderState is a position in the DHT11 response waveform.
type decoderState int

const (
	stateInitLow   decoderState = iota // waiting for the sensor to pull the line low
	stateInitHigh                      // waiting for the response high
	stateFirstLow                      // waiting for the low that starts bit 0
	stateDataHigh                      // in a bit's low phase, waiting for its high pulse
	stateDataLow                       // measuring a bit's high pulse, waiting for the next low
)

// DecodePulses walks a raw capture and returns the width, in samples, of every
// data-bit high pulse. Only level changes move the state machine; the running
// length counts every sample and is reset when a bit's high pulse begins.
//
// A capture that does not contain exactly FrameBits pulses returns a
// *FrameLengthError and no widths.
func DecodePulses(levels []Level) ([]int, error) {
	state := stateInitLow
	widths := make([]int, 0, FrameBits)
	length := 0

	for _, lv := range levels {
		length++
		switch state {
		case stateInitLow:
			if lv == Low {
				state = stateInitHigh
			}
		case stateInitHigh:
			if lv == High {
				state = stateFirstLow
			}
		case stateFirstLow:
			if lv == Low {
				state = stateDataHigh
			}
		case stateDataHigh:
			if lv == High {
				length = 0
				state = stateDataLow
			}
		case stateDataLow:
			if lv == Low {
				widths = append(widths, length)
				state = stateDataHigh
			}
		}
	}

	if len(widths) != FrameBits {
		return nil, &FrameLengthError{Got: len(widths)}
	}
	return widths, nil
}
