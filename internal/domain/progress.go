package domain

// Percent computes the completion percentage from page counts.
//
// Returns 0 when total is missing or not positive, or when current is
// missing or negative. Returns 100 once current reaches total. Otherwise
// the ratio is rounded half-up, so 1/3 gives 33 and 2/3 gives 67.
func Percent(total, current *int) int {
	if total == nil || current == nil || *total <= 0 || *current < 0 {
		return 0
	}
	if *current >= *total {
		return 100
	}

	t := int64(*total)
	c := int64(*current)
	// floor(c*100/t + 1/2) without floating point
	return int((c*200 + t) / (2 * t))
}
