package validation

import (
	"math"
	"regexp"

	"Heliox/internal/domain/models"
)

// Structural-tier helpers shared across entity validators.

var symbolPattern = regexp.MustCompile(`^[A-Z]{1,6}([_-][A-Z]{1,6})?$`)

// ValidSymbol reports whether s is a well-formed trading symbol:
// 1-6 uppercase letters with an optional single separator segment.
func ValidSymbol(s string) bool {
	return symbolPattern.MatchString(s)
}

// ValidPrice reports whether p is a positive, finite, bounded price.
func ValidPrice(p float64) bool {
	return p > 0 && p < 1_000_000 && !math.IsNaN(p) && !math.IsInf(p, 0)
}

// ValidQuantity reports whether q is a positive, finite quantity.
func ValidQuantity(q float64) bool {
	return q > 0 && !math.IsNaN(q) && !math.IsInf(q, 0)
}

// ValidFraction reports whether v lies in [0,1] and is finite.
func ValidFraction(v float64) bool {
	return v >= 0 && v <= 1 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ValidTimeframe reports whether tf belongs to the supported set.
func ValidTimeframe(tf string) bool {
	return models.ValidTimeframes[tf]
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
