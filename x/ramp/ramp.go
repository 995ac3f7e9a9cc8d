package ramp

// Toward moves cur one step toward target without overshooting.
// step must be positive; a non-positive step snaps to target.
func Toward(cur, target, step float32) float32 {
	if step <= 0 {
		return target
	}
	switch {
	case cur < target:
		cur += step
		if cur > target {
			cur = target
		}
	case cur > target:
		cur -= step
		if cur < target {
			cur = target
		}
	}
	return cur
}
