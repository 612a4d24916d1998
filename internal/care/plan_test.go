package care

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSuggestAllergicSkinScenario(t *testing.T) {
	plan := NewEngine(nil).Suggest([]string{"Dermatitis kontak", "Urtikaria"}, "13", "")
	if plan.Title != Title {
		t.Fatalf("unexpected title %q", plan.Title)
	}
	if len(plan.Bullets) != 4 || !strings.Contains(plan.Bullets[0], "hydrocortisone 1%") {
		t.Fatalf("expected allergic-skin group, got %v", plan.Bullets)
	}
	if plan.Age != 13 {
		t.Fatalf("expected age 13, got %d", plan.Age)
	}
}

func TestSuggestCapsBulletsButKeepsSafety(t *testing.T) {
	hint := "ruam gatal, batuk berdahak, batuk kering, pilek, keseleo, diare, nyeri tenggorokan"
	plan := NewEngine(nil).Suggest(nil, "abc", hint)
	if len(plan.Bullets) != MaxBullets {
		t.Fatalf("expected %d bullets, got %d", MaxBullets, len(plan.Bullets))
	}
	if len(plan.Safety) != 3 {
		t.Fatalf("expected 3 safety bullets, got %d", len(plan.Safety))
	}
	// first matching rules win under truncation
	if !strings.Contains(plan.Bullets[4], "Guaifenesin") {
		t.Fatalf("expected cough group to follow skin group, got %v", plan.Bullets)
	}
	if plan.Age != DefaultAge {
		t.Fatalf("expected default age, got %d", plan.Age)
	}
}

func TestSuggestNoMatch(t *testing.T) {
	plan := NewEngine(nil).Suggest([]string{"Migrain"}, "", "")
	if len(plan.Bullets) != 0 || len(plan.Safety) != 3 {
		t.Fatalf("unexpected plan %+v", plan)
	}
	if !strings.HasPrefix(plan.Markdown, "### "+Title+"\n") {
		t.Fatalf("unexpected markdown %q", plan.Markdown)
	}
}

func TestSuggestMatchesCaseInsensitively(t *testing.T) {
	plan := NewEngine(nil).Suggest([]string{"FLU"}, "15", "")
	if len(plan.Bullets) != 3 || !strings.Contains(plan.Bullets[0], "Semprot saline") {
		t.Fatalf("expected congestion group, got %v", plan.Bullets)
	}
}

func TestRenderings(t *testing.T) {
	plan := NewEngine(nil).Suggest([]string{"diare"}, "15", "")
	wantMD := "### " + Title + "\n" +
		"- " + plan.Bullets[0] + "\n- " + plan.Bullets[1] + "\n- " + plan.Bullets[2] + "\n\n" +
		"- " + Safety[0] + "\n- " + Safety[1] + "\n- " + Safety[2]
	if plan.Markdown != wantMD {
		t.Fatalf("unexpected markdown:\n%s", plan.Markdown)
	}
	if strings.Count(plan.HTML, "<ul") != 2 || strings.Count(plan.HTML, "<li>") != 6 {
		t.Fatalf("expected two lists with six items, got %s", plan.HTML)
	}
	if !strings.Contains(plan.HTML, "<b>Oralit (ORS)</b>") {
		t.Fatalf("expected bold markup rendered, got %s", plan.HTML)
	}
	if !strings.Contains(plan.HTML, "OTC &amp; Perawatan") {
		t.Fatalf("expected escaped title, got %s", plan.HTML)
	}
}

func TestParseRulesValidates(t *testing.T) {
	if _, err := ParseRules([]byte("rules: []")); err == nil {
		t.Fatal("expected error for empty table")
	}
	if _, err := ParseRules([]byte("rules:\n  - name: x\n    keywords: [a]\n")); err == nil {
		t.Fatal("expected error for rule without bullets")
	}
	rules, err := ParseRules([]byte("rules:\n  - name: x\n    keywords: [' Demam ']\n    bullets: [Minum air]\n"))
	if err != nil {
		t.Fatalf("parse rules: %v", err)
	}
	if rules[0].Keywords[0] != "demam" {
		t.Fatalf("expected lower-cased keyword, got %q", rules[0].Keywords[0])
	}
}

func TestLoadRulesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	data := "rules:\n  - name: demam\n    keywords: [demam]\n    bullets: [Paracetamol sesuai label.]\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write rules: %v", err)
	}
	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("load rules: %v", err)
	}
	plan := NewEngine(rules).Suggest([]string{"Demam berdarah"}, "14", "")
	if len(plan.Bullets) != 1 || plan.Bullets[0] != "Paracetamol sesuai label." {
		t.Fatalf("unexpected bullets %v", plan.Bullets)
	}
	if _, err := LoadRules(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
