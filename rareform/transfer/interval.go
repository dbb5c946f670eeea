package transfer

import "math"

// DefaultUpdateInterval is the number of copied bytes between progress
// notifications when the caller supplies neither an explicit interval
// nor DynamicInterval (256 KiB).
const DefaultUpdateInterval int64 = 256 * 1024

// DynamicUpdateInterval derives an update interval from the total
// transfer size as round(total^(1/1.5)), clamped to at least 1. Small
// transfers report often, large transfers stay at a sane cadence
// without the caller tuning anything.
func DynamicUpdateInterval(total int64) int64 {
	if total < 1 {
		return 1
	}
	iv := int64(math.Round(math.Pow(float64(total), 1/1.5)))
	if iv < 1 {
		return 1
	}
	return iv
}
