package extract

import (
	"regexp"
	"strings"
)

var (
	listItemRe    = regexp.MustCompile(`^\s*(?:[-•]|\d+\.)\s*(.+)$`)
	parentheticRe = regexp.MustCompile(`\s*\([^)]*\)`)
	qualifierRe   = regexp.MustCompile(`[:\-–].*$`)
	emphasisStart = regexp.MustCompile(`^\s*(?:\*\*|#)`)
)

// Diagnoses returns the short labels listed under the diagnosis heading of
// doc, deduplicated case-insensitively in first-seen order.  List items lose
// any parenthetical aside and any trailing ":"/"-" clause, so
// "Flu (common cold): rest" becomes "Flu".  When the block has no list
// markers every non-blank line is used as is.
func Diagnoses(doc string) []string {
	heading := sectionDefs[0].heading
	body, ok := captureBody(splitLines(doc), heading, emphasisStart.MatchString)
	if !ok {
		return []string{}
	}

	var items []string
	listed := false
	for _, line := range strings.Split(body, "\n") {
		m := listItemRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		listed = true
		if label := cleanLabel(m[1]); label != "" {
			items = append(items, label)
		}
	}
	if !listed {
		for _, line := range strings.Split(body, "\n") {
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				items = append(items, trimmed)
			}
		}
	}
	return dedupe(items)
}

func cleanLabel(item string) string {
	item = stripEmphasis(item)
	item = parentheticRe.ReplaceAllString(item, "")
	item = qualifierRe.ReplaceAllString(item, "")
	return strings.TrimSpace(item)
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		key := strings.ToLower(it)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, it)
	}
	return out
}
