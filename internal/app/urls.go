package app

import (
	"github.com/dtnitsch/studybot/internal/common"
)

// sanitizeURLs accepts comma separated values inside each flag occurrence.
func sanitizeURLs(flags []string) ([]string, []string) {
	var raw []string
	for _, f := range flags {
		raw = append(raw, common.SplitList(f)...)
	}
	return common.SanitizeAndValidateURLs(raw)
}
