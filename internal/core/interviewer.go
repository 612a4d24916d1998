package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"dokter-remaja/internal/llm"
	"dokter-remaja/pkg"
)

// ErrEmptyReply is returned when the model answers with nothing usable.
var ErrEmptyReply = errors.New("model returned an empty reply")

// Interviewer asks follow-up questions and writes the final analysis.  Both
// calls are single blocking requests to the LLM with no retries.
type Interviewer struct {
	LLM llm.Client
}

// NewInterviewer constructs an Interviewer with the given LLM client.
func NewInterviewer(client llm.Client) *Interviewer {
	return &Interviewer{LLM: client}
}

// NextQuestion returns the next interview question given all completed
// pairs.  Only the first non-empty line of the reply is kept.
func (i *Interviewer) NextQuestion(ctx context.Context, pairs []pkg.QAPair) (string, error) {
	resp, err := i.LLM.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: QuestionPrompt},
		{Role: llm.RoleUser, Content: HistoryHeader + formatPairs(pairs)},
	})
	if err != nil {
		return "", eris.Wrap(err, "next question")
	}
	for _, line := range strings.Split(resp, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line, nil
		}
	}
	return "", ErrEmptyReply
}

// Analyze produces the free-text analysis document from the biography, the
// full interview and the research context.
func (i *Interviewer) Analyze(ctx context.Context, bio pkg.Biography, pairs []pkg.QAPair, research string) (string, error) {
	var b strings.Builder
	b.WriteString("Biodata:\n")
	fmt.Fprintf(&b, "Nama: %s\n", orDash(bio.Name))
	fmt.Fprintf(&b, "Usia: %s\n", orDash(bio.Age))
	fmt.Fprintf(&b, "Kelas: %s\n", orDash(bio.Grade))
	fmt.Fprintf(&b, "Jenis Kelamin: %s\n\n", orDash(bio.Sex))
	b.WriteString("Percakapan Q/A:\n")
	b.WriteString(formatPairs(pairs))
	b.WriteString("\n\nRingkasan riset (opsional):\n")
	b.WriteString(research)
	b.WriteString("\n")
	b.WriteString(AnalysisFooter)

	resp, err := i.LLM.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: AnalysisPrompt},
		{Role: llm.RoleUser, Content: b.String()},
	})
	if err != nil {
		return "", eris.Wrap(err, "analyze")
	}
	if strings.TrimSpace(resp) == "" {
		return "", ErrEmptyReply
	}
	return resp, nil
}

func formatPairs(pairs []pkg.QAPair) string {
	lines := make([]string, 0, len(pairs))
	for _, p := range pairs {
		lines = append(lines, "Q: "+p.Question+"\nA: "+p.Answer)
	}
	return strings.Join(lines, "\n")
}

func orDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}
