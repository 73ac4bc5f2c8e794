package timerange

// Duration policy for generated clips, in seconds. Candidates outside these
// bounds are rejected outright rather than clamped.
const (
	MinClipSeconds = 15
	MaxClipSeconds = 90
)

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) share any time.
// The test is strict on both sides: an interval that ends exactly where the
// other begins does not overlap. A zero-length interval strictly inside the
// other still matches.
func Overlaps(aStart, aEnd, bStart, bEnd float64) bool {
	return aStart < bEnd && aEnd > bStart
}

// ValidDuration reports whether end-start falls within [min, max] seconds.
// It validates only; the caller's bounds are never adjusted.
func ValidDuration(start, end, min, max float64) bool {
	if end <= start {
		return false
	}
	d := end - start
	return d >= min && d <= max
}

// ValidClipDuration applies the service-wide clip duration policy.
func ValidClipDuration(start, end float64) bool {
	return ValidDuration(start, end, MinClipSeconds, MaxClipSeconds)
}
