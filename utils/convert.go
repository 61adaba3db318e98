// SPDX-License-Identifier: EPL-2.0

package utils

// Full-scale magnitudes for signed integer PCM, indexed by bit depth.
const (
	scale8  = 128.0
	scale16 = 32768.0
	scale24 = 8388608.0
	scale32 = 2147483648.0
)

// Float32ToInt16 clamps x to [-1,1] and scales it to 16-bit PCM.
func Float32ToInt16(x float32) int16 {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	// 32767 keeps +1.0 from wrapping.
	return int16(x * 32767.0)
}

// Float32sToInts converts src into dst as 16-bit PCM stored in ints, the
// layout go-audio buffers expect. It returns the number of samples converted.
func Float32sToInts(dst []int, src []float32) int {
	n := min(len(dst), len(src))
	for i := range n {
		dst[i] = int(Float32ToInt16(src[i]))
	}

	return n
}

// IntToFloat32 normalizes a signed PCM sample of the given bit depth to
// [-1,1). Unknown depths are treated as 16-bit.
func IntToFloat32(v int, bitDepth int) float32 {
	return float32(float64(v) / FullScale(bitDepth))
}

// FullScale returns the magnitude of the most negative sample at bitDepth.
func FullScale(bitDepth int) float64 {
	switch bitDepth {
	case 8:
		return scale8
	case 24:
		return scale24
	case 32:
		return scale32
	default:
		return scale16
	}
}
