package verify

import "github.com/voiceboard/modelfetch/internal/misc"

// DefaultTolerance is the allowed fractional deviation between expected
// and actual model file size.
const DefaultTolerance = 0.1

const bytesPerMB = 1 << 20

// SizeWithin reports whether the file at path has a size within tolerance
// of expectedMB. A missing file never verifies. Pure, no side effects.
func SizeWithin(path string, expectedMB float64, tolerance float64) bool {
	size, ok := misc.FileSize(path)
	if !ok {
		return false
	}

	actualMB := float64(size) / bytesPerMB
	return actualMB >= expectedMB*(1-tolerance) &&
		actualMB <= expectedMB*(1+tolerance)
}
