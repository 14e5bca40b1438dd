package bridge

import "math"

// Translate linearly rescales value from the range [inLow, inHigh] to
// [outLow, outHigh], rounding to the nearest integer.
//
// Values outside the input range extrapolate linearly; callers working
// with 7-bit controller values never produce them. A degenerate input
// range (inLow == inHigh) returns outLow.
func Translate(value, inLow, inHigh, outLow, outHigh int) int {
	if inHigh == inLow {
		return outLow
	}
	ratio := float64(value-inLow) / float64(inHigh-inLow)
	return int(math.Round(ratio*float64(outHigh-outLow) + float64(outLow)))
}

// fromController rescales a 7-bit controller value (0-127) onto
// [0, outHigh]. This is the common case for brightness, hue,
// saturation, and RGB components.
func fromController(value uint8, outHigh int) int {
	return Translate(int(value), 0, 127, 0, outHigh)
}
