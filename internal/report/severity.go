package report

import (
	"regexp"
	"strings"
)

// criticalPhrases promote an analyzer warning to CRITICAL on a substring
// match of its lowercase form.
var criticalPhrases = []string{
	"no questions detected",
	"no applications found",
	"no topics found",
	"missing required",
	"invalid syntax",
	"cannot parse",
	"failed to generate",
}

var onlyNRe = regexp.MustCompile(`\bonly (\d+)\b`)

// IsCriticalWarning decides whether an analyzer warning blocks the stage.
// "only 0" and "only 1" are always critical; "only 2" is critical only
// when the configured minimum for the kind is above 2. Length warnings
// ("word count", "too many") never promote, since the content exists and
// is merely out of bounds.
func IsCriticalWarning(warning string, configuredMinimum int) bool {
	lower := strings.ToLower(warning)

	// The length exclusions take precedence over the phrase list: a
	// warning mentioning "word count" or "too many" stays a WARNING even
	// when it also contains a critical phrase.
	if strings.Contains(lower, "word count") || strings.Contains(lower, "too many") {
		return false
	}
	for _, phrase := range criticalPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	if m := onlyNRe.FindStringSubmatch(lower); m != nil {
		switch m[1] {
		case "0", "1":
			return true
		case "2":
			return configuredMinimum > 2
		}
	}
	return false
}
