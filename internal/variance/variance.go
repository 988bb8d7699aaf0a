// Package variance classifies how far a counted quantity deviates from its
// par level.
package variance

// Status is the classified deviation of a count from its par level.
type Status string

const (
	// Unknown means no usable par level exists for the comparison.
	Unknown Status = "unknown"
	// Critical means the count is more than 25% below par.
	Critical Status = "critical"
	// Warning means the count is below par by up to and including 25%.
	Warning Status = "warning"
	// Good means the count is at or above par.
	Good Status = "good"
)

// Classify maps a counted quantity and an optional par level to a Status.
// A nil or non-positive par yields Unknown. Otherwise the deviation
// (quantity-par)/par is compared with strict < against -0.25 and 0, so a
// count at exactly -25% classifies as Warning, not Critical.
func Classify(quantity float64, par *float64) Status {
	if par == nil || *par <= 0 {
		return Unknown
	}
	pct := (quantity - *par) / *par
	switch {
	case pct < -0.25:
		return Critical
	case pct < 0:
		return Warning
	default:
		return Good
	}
}
