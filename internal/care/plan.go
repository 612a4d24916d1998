// Package care turns a diagnosis list into advisory over-the-counter and
// home-care bullets.  Output is advisory text from a fixed rule table, not a
// clinical decision.
package care

import (
	"bytes"
	"html/template"
	"regexp"
	"strconv"
	"strings"
)

const (
	// Title heads every plan.
	Title = "Saran Obat OTC & Perawatan di Rumah"

	// MaxBullets caps the advisory bullets.  Safety bullets are not counted.
	MaxBullets = 7

	// DefaultAge is used when the age field cannot be parsed.
	DefaultAge = 15
)

// Safety is appended to every plan.
var Safety = []string{
	"Selalu baca label & **ikuti dosis kemasan** (usia/berat).",
	"Hentikan bila muncul reaksi alergi/ruam hebat/bengkak/napas sesak.",
	"Ke IGD jika **red flag**: sesak berat, demam ≥39°C >3 hari, muntah terus, lemas/pingsan, nyeri hebat memburuk, perdarahan, kaku kuduk.",
}

// Plan is a rendered set of care suggestions.
type Plan struct {
	Title    string   `json:"title"`
	Age      int      `json:"age"`
	Bullets  []string `json:"bullets"`
	Safety   []string `json:"safety"`
	Markdown string   `json:"markdown"`
	HTML     string   `json:"html"`
}

// Engine evaluates an ordered rule table.
type Engine struct {
	rules []Rule
}

// NewEngine constructs an Engine over rules.  A nil table selects the
// built-in rules.
func NewEngine(rules []Rule) *Engine {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Engine{rules: rules}
}

// Suggest builds a plan for the given diagnoses.  hint is free text searched
// together with the diagnoses.  Rules are applied in table order and each
// matching rule contributes its whole bullet group before the list is cut
// to MaxBullets, so earlier rules win when many match.
func (e *Engine) Suggest(diagnoses []string, age string, hint string) Plan {
	pool := strings.ToLower(strings.Join(diagnoses, " ") + " " + hint)

	var bullets []string
	for _, r := range e.rules {
		if r.Matches(pool) {
			bullets = append(bullets, r.Bullets...)
		}
	}
	if len(bullets) > MaxBullets {
		bullets = bullets[:MaxBullets]
	}
	if bullets == nil {
		bullets = []string{}
	}

	p := Plan{
		Title:   Title,
		Age:     ParseAge(age),
		Bullets: bullets,
		Safety:  append([]string(nil), Safety...),
	}
	p.Markdown = renderMarkdown(p)
	p.HTML = renderHTML(p)
	return p
}

// ParseAge reads an age in years, falling back to DefaultAge.
func ParseAge(v string) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return DefaultAge
	}
	return n
}

func renderMarkdown(p Plan) string {
	var b strings.Builder
	b.WriteString("### " + p.Title + "\n")
	b.WriteString(dashList(p.Bullets))
	b.WriteString("\n\n")
	b.WriteString(dashList(p.Safety))
	return b.String()
}

// dashList renders items as "- item" lines without a trailing newline.
func dashList(items []string) string {
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = "- " + it
	}
	return strings.Join(lines, "\n")
}

var boldRe = regexp.MustCompile(`\*\*(.*?)\*\*`)

var planHTML = template.Must(template.New("plan").Funcs(template.FuncMap{
	"inline": inlineHTML,
}).Parse(`<h3 style="margin:0 0 8px">{{.Title}}</h3>` +
	`<ul style="margin:0 8px 8px 20px">{{range .Bullets}}<li>{{inline .}}</li>{{end}}</ul>` +
	`<ul style="color:#444;margin:0 0 0 20px">{{range .Safety}}<li>{{inline .}}</li>{{end}}</ul>`))

// inlineHTML escapes s and turns **bold** spans into <b> elements.
func inlineHTML(s string) template.HTML {
	escaped := template.HTMLEscapeString(s)
	return template.HTML(boldRe.ReplaceAllString(escaped, "<b>$1</b>"))
}

func renderHTML(p Plan) string {
	var buf bytes.Buffer
	if err := planHTML.Execute(&buf, p); err != nil {
		return ""
	}
	return buf.String()
}
