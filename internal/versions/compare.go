package versions

import "github.com/Masterminds/semver/v3"

// IsNewer reports whether candidate is a strictly greater version than
// current. SDMX structure versions ("1.0", "1.2.1") parse as semver; anything
// else falls back to lexicographic comparison.
func IsNewer(candidate, current string) bool {
	candidateVer, errCandidate := semver.NewVersion(candidate)
	currentVer, errCurrent := semver.NewVersion(current)

	if errCandidate != nil || errCurrent != nil {
		return candidate > current
	}

	return candidateVer.GreaterThan(currentVer)
}
