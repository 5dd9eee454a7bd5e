package minify

import (
	"regexp"
	"strings"
)

// DefaultZeroUnits is the conservative allow-list of length units that can
// be dropped from a bare zero. Percentages, angles and durations are
// excluded: `0%` changes some gradient and flex layouts, and `0s` is not a
// valid substitute for a time value everywhere.
var DefaultZeroUnits = []string{
	"px", "em", "rem", "ex", "ch", "vw", "vh", "vmin", "vmax",
	"cm", "mm", "in", "pt", "pc", "q",
}

// leadingZeroRE matches a zero before a decimal point in value position.
// The preceding character class excludes '-' so negative values pass
// through untouched.
var leadingZeroRE = regexp.MustCompile(`(^|[\s:,(])0\.([0-9])`)

func compileZeroUnitRE(units []string) *regexp.Regexp {
	if len(units) == 0 {
		units = DefaultZeroUnits
	}
	quoted := make([]string, len(units))
	for i, u := range units {
		quoted[i] = regexp.QuoteMeta(u)
	}
	return regexp.MustCompile(`(?i)(^|[\s:,(])0(?:` + strings.Join(quoted, "|") + `)\b`)
}

// rewriteCSS applies the safe micro-rewrites: `0.5` becomes `.5` and
// `0px` becomes `0` for the allow-listed units. Both run after the
// collapser, so value positions are identified by the single byte that
// precedes them.
func rewriteCSS(text string, zeroUnitRE *regexp.Regexp) string {
	text = leadingZeroRE.ReplaceAllString(text, "${1}.${2}")
	text = zeroUnitRE.ReplaceAllString(text, "${1}0")
	return text
}
