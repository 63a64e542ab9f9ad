package utils

import "math"

// Fixed point and clamped integer conversions used for all exported data.
// Ties round away from zero (math.Round), never to even. Header output is
// compared bit for bit against reference exports, so the rounding rule is
// not negotiable.

func ToFixed8x8(x float64) int32 {
	return int32(math.Round(x * 256.0))
}

func ToFixed4x12(x float64) int32 {
	return int32(math.Round(x * 4096.0))
}

func ToS16(x float64) int16 {
	r := math.Round(x)
	if r > 32767.0 {
		return 32767
	}
	if r < -32768.0 {
		return -32768
	}
	return int16(r)
}

func ToU8(x float64) uint8 {
	r := math.Round(x)
	if r > 255.0 {
		return 255
	}
	if r < 0.0 {
		return 0
	}
	return uint8(r)
}
