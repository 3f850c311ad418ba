package pipeline

// Scaled maps a phase-local 0-100 progress report into the [lo, hi] sub-range
// of the overall pipeline bar, so each phase can report its own percentage
// without knowing where it sits in the run.
func Scaled(report func(percent float64, message string), lo, hi float64) func(percent float64, message string) {
	if report == nil {
		return func(float64, string) {}
	}
	span := hi - lo
	return func(percent float64, message string) {
		if percent < 0 {
			percent = 0
		}
		if percent > 100 {
			percent = 100
		}
		report(lo+span*percent/100, message)
	}
}
