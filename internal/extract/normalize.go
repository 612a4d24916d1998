// Package extract pulls structured pieces out of the free-text analysis
// document returned by the language model.
package extract

import (
	"regexp"
	"strings"
)

var (
	boldRe    = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicRe  = regexp.MustCompile(`\*(.*?)\*`)
	// space matches exactly what unicode.IsSpace accepts, so the final
	// TrimSpace never uncovers a marker these patterns skipped.
	space     = `[\t\n\v\f\r\x{85}\p{Z}]`
	headingRe = regexp.MustCompile(`(?m)^` + space + `*(?:#+` + space + `*)+`)
	bulletRe  = regexp.MustCompile(`(?m)^` + space + `*[-•]` + space + `*`)
	lineEnds  = strings.NewReplacer("\r\n", "\n", "\r", "\n")
)

// Normalize strips lightweight markdown so text can be shown as plain text:
// bold and italic markers are dropped, heading markers are removed from the
// start of each line and bullets are rewritten as "- ".  Normalizing twice
// yields the same result as normalizing once.
func Normalize(s string) string {
	s = stripEmphasis(s)
	// after emphasis: "\r****\n" only becomes CRLF once the markers go
	s = lineEnds.Replace(s)
	s = headingRe.ReplaceAllString(s, "")
	s = bulletRe.ReplaceAllString(s, "- ")
	return strings.TrimSpace(s)
}

func stripEmphasis(s string) string {
	s = boldRe.ReplaceAllString(s, "$1")
	return italicRe.ReplaceAllString(s, "$1")
}

// truncate caps s at max runes including the trailing ellipsis.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
