package extract

import (
	"regexp"
	"strings"
)

// Section names one of the blocks picked out of an analysis document.
type Section string

const (
	SectionDiagnosis  Section = "diagnosis"
	SectionPlan       Section = "plan"
	SectionPrevention Section = "prevention"
)

const (
	maxSelectedRunes = 8000
	maxFallbackRunes = 6000
)

// Sections maps each section found in a document to its normalized body.
// Sections that are missing or empty are absent from the map.
type Sections map[Section]string

type sectionDef struct {
	key     Section
	title   string
	heading *regexp.Regexp
	stop    *regexp.Regexp
}

// sectionDefs is ordered; rendering always follows this order.
var sectionDefs = []sectionDef{
	{
		key:     SectionDiagnosis,
		title:   "Kemungkinan Diagnosis",
		heading: headingPattern(`kemungkinan\s*diagnosis|diagnosis(?:\s*diferensial)?`),
		stop:    stopPattern(`rencana|saran|edukasi|pencegahan|kesimpulan|catatan`),
	},
	{
		key:     SectionPlan,
		title:   "Rencana Tindak Lanjut & Saran",
		heading: headingPattern(`rencana\s*tindak\s*lanjut(?:\s*&\s*saran)?|rencana\s*tatalaksana|saran`),
		stop:    stopPattern(`edukasi|pencegahan|kemungkinan|diagnosis|kesimpulan|catatan`),
	},
	{
		key:     SectionPrevention,
		title:   "Edukasi Pencegahan",
		heading: headingPattern(`edukasi\s*pencegahan|pencegahan`),
		stop:    stopPattern(`rencana|saran|kemungkinan|diagnosis|kesimpulan|catatan`),
	},
}

// headingPattern matches a whole heading line: optional "#" markers, bold
// markers and numbering around one of names, an optional parenthetical and
// an optional trailing colon or dash.
func headingPattern(names string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)^\s*(?:#+\s*)?(?:\*\*)?\s*(?:\d+[.)]\s*)?(?:\*\*)?\s*(?:` + names +
		`)(?:\s*\([^)]*\))?\s*(?:\*\*)?\s*[:\-]?\s*(?:\*\*)?\s*$`)
}

// stopPattern matches a line that opens with one of words, bold or not.
func stopPattern(words string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)^\s*(?:\*\*)?\s*(?:` + words + `)\b`)
}

// FindSections locates the diagnosis, plan and prevention blocks of doc.
// Each heading is searched once and the first occurrence wins.  A body runs
// until the next recognized heading or the end of the document.
func FindSections(doc string) Sections {
	lines := splitLines(doc)
	found := Sections{}
	for _, def := range sectionDefs {
		body, ok := captureBody(lines, def.heading, func(line string) bool {
			return def.stop.MatchString(line) || isOtherHeading(line, def.key)
		})
		if !ok {
			continue
		}
		if cleaned := Normalize(body); cleaned != "" {
			found[def.key] = cleaned
		}
	}
	return found
}

// Render joins the present sections as "Title:\nbody" blocks separated by a
// blank line, in diagnosis, plan, prevention order.
func (s Sections) Render() string {
	parts := make([]string, 0, len(sectionDefs))
	for _, def := range sectionDefs {
		if body, ok := s[def.key]; ok {
			parts = append(parts, def.title+":\n"+body)
		}
	}
	return strings.Join(parts, "\n\n")
}

// Select returns the selected sections of doc ready for plain-text delivery.
// When no section is recognized the whole document is normalized instead.
func Select(doc string) string {
	sections := FindSections(doc)
	if len(sections) == 0 {
		return truncate(Normalize(doc), maxFallbackRunes)
	}
	return truncate(strings.TrimSpace(sections.Render()), maxSelectedRunes)
}

func isOtherHeading(line string, self Section) bool {
	for _, def := range sectionDefs {
		if def.key != self && def.heading.MatchString(line) {
			return true
		}
	}
	return false
}

// captureBody finds the first line matching heading and returns the lines
// after it up to, not including, the first line for which stop is true.
func captureBody(lines []string, heading *regexp.Regexp, stop func(string) bool) (string, bool) {
	for i, line := range lines {
		if !heading.MatchString(line) {
			continue
		}
		end := len(lines)
		for j := i + 1; j < len(lines); j++ {
			if stop(lines[j]) {
				end = j
				break
			}
		}
		return strings.Join(lines[i+1:end], "\n"), true
	}
	return "", false
}

func splitLines(doc string) []string {
	doc = strings.ReplaceAll(strings.TrimSpace(doc), "\r\n", "\n")
	return strings.Split(doc, "\n")
}
