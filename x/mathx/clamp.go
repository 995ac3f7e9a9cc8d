package mathx

import "golang.org/x/exp/constraints"

// Clamp limits v to [lo, hi]. If lo > hi, the bounds are swapped.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if hi < lo {
		lo, hi = hi, lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 limits v to the unit interval.
func Clamp01[T constraints.Float](v T) T {
	return Clamp(v, 0, 1)
}

// Rescale maps v from [inLo, inHi] onto [outLo, outHi], clamping v to the
// input range first. A degenerate input range yields outLo.
func Rescale[T constraints.Float](v, inLo, inHi, outLo, outHi T) T {
	if inHi == inLo {
		return outLo
	}
	v = Clamp(v, inLo, inHi)
	return outLo + (v-inLo)*(outHi-outLo)/(inHi-inLo)
}
