package models

import "strings"

// DetailLevel selects how much of the source a summary covers.
type DetailLevel string

const (
	DetailBrief    DetailLevel = "brief"
	DetailStandard DetailLevel = "standard"
	DetailDetailed DetailLevel = "detailed"
)

// DetailLevels lists every level in increasing order of detail.
var DetailLevels = []DetailLevel{DetailBrief, DetailStandard, DetailDetailed}

// Fraction is the share of topic sentences a summary at this level keeps.
func (l DetailLevel) Fraction() float64 {
	switch l {
	case DetailBrief:
		return 0.3
	case DetailDetailed:
		return 0.7
	default:
		return 0.5
	}
}

// ResolveDetailLevel maps user input onto a known level, defaulting to
// standard.
func ResolveDetailLevel(s string) DetailLevel {
	switch DetailLevel(strings.ToLower(strings.TrimSpace(s))) {
	case DetailBrief:
		return DetailBrief
	case DetailDetailed:
		return DetailDetailed
	default:
		return DetailStandard
	}
}
