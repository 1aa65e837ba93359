// Package measure derives distance statistics from an estimated neighborhood
// function.
package measure

// HopTable holds the estimated number of ordered node pairs within distance
// h, indexed by h. Indices are contiguous from 0 and the values never
// decrease.
type HopTable []float64

// LowerBoundDiameter is the last hop at which a change was observed, or -1
// for an empty table.
func (t HopTable) LowerBoundDiameter() int { return len(t) - 1 }

// TotalCouplesReachable is the estimated number of reachable ordered pairs.
func (t HopTable) TotalCouplesReachable() float64 {
	if len(t) == 0 {
		return 0
	}
	return t[len(t)-1]
}

// TotalCouplesPercentage returns the reachable pair count scaled by the
// threshold. The name is kept from the reports this tool emits; the value is
// a count, not a percentage.
func (t HopTable) TotalCouplesPercentage(threshold float64) float64 {
	return t.TotalCouplesReachable() * threshold
}

// AverageDistance is sum over h of h*(t[h]-t[h-1]), divided by the total.
func (t HopTable) AverageDistance() float64 {
	if len(t) == 0 {
		return 0
	}
	total := t[len(t)-1]
	if total == 0 {
		return 0
	}
	var sum float64
	for h := 1; h < len(t); h++ {
		sum += float64(h) * (t[h] - t[h-1])
	}
	return sum / total
}

// EffectiveDiameter returns the interpolated hop by which a threshold
// fraction of the reachable pairs is covered.
func (t HopTable) EffectiveDiameter(threshold float64) float64 {
	if len(t) == 0 {
		return 0
	}
	total := t[len(t)-1]
	if total == 0 {
		return 0
	}

	d := 0
	for d < len(t)-1 && t[d]/total < threshold {
		d++
	}
	if d == 0 {
		return 0
	}

	step := t[d] - t[d-1]
	if step == 0 {
		return float64(d)
	}
	return float64(d-1) + (threshold*total-t[d-1])/step
}

// IsNonDecreasing reports whether every entry is at least the previous one.
func (t HopTable) IsNonDecreasing() bool {
	for h := 1; h < len(t); h++ {
		if t[h] < t[h-1] {
			return false
		}
	}
	return true
}
