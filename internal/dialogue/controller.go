package dialogue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"dokter-remaja/internal/care"
	"dokter-remaja/internal/contact"
	"dokter-remaja/internal/extract"
	"dokter-remaja/internal/notify"
	"dokter-remaja/pkg"
)

const (
	// OpeningQuestion starts every interview.
	OpeningQuestion = "Bisa diceritakan dengan lengkap, Anda saat ini mengalami keluhan kesehatan apa?"

	// QuestionPlaceholder pairs an answer that has no preceding question.
	QuestionPlaceholder = "(pertanyaan awal)"

	// FallbackQuestion is asked when the question generator fails.
	FallbackQuestion = "Bisa ceritakan lebih lanjut tentang keluhan Anda, termasuk sejak kapan dan seberapa berat?"

	// EmailWarning is shown when the email field does not look like an
	// address.  The flow continues regardless.
	EmailWarning = "Format email kurang tepat. Anda tetap bisa lanjut, tetapi pengiriman email mungkin gagal."
)

var (
	ErrBiographyRequired  = errors.New("biography must be submitted first")
	ErrBiographySubmitted = errors.New("biography already submitted")
	ErrSessionFinalized   = errors.New("session already finalized")
	ErrAnalysisFailed     = errors.New("analysis failed")
)

// QuestionGenerator produces the next interview question.
type QuestionGenerator interface {
	NextQuestion(ctx context.Context, pairs []pkg.QAPair) (string, error)
}

// Analyzer writes the final analysis document.
type Analyzer interface {
	Analyze(ctx context.Context, bio pkg.Biography, pairs []pkg.QAPair, research string) (string, error)
}

// ResearchSource supplies reference context.  It never fails.
type ResearchSource interface {
	Summary(ctx context.Context) string
}

// Notifier delivers the finished report and reports what happened.
type Notifier interface {
	Deliver(ctx context.Context, bio pkg.Biography, r notify.Report) []pkg.Notice
}

// Turn is the visible result of one user answer.
type Turn struct {
	Messages  []pkg.Message `json:"messages"`
	Notices   []pkg.Notice  `json:"notices"`
	Phase     Phase         `json:"phase"`
	Turns     int           `json:"turns"`
	Finalized bool          `json:"finalized"`
}

// Controller drives sessions through the intake flow.  It holds no
// per-session state; callers serialize access to a single Session.
type Controller struct {
	Questions QuestionGenerator
	Analyzer  Analyzer
	Research  ResearchSource
	Notifier  Notifier
	Care      *care.Engine
	Log       *logrus.Logger

	// OnFinalize, when set, is called after a session is finalized.
	OnFinalize func(ctx context.Context, s *Session)
}

// SubmitBiography accepts the form and opens the interview.  It can succeed
// only once per session.
func (c *Controller) SubmitBiography(s *Session, bio pkg.Biography) ([]pkg.Notice, error) {
	if s.Phase != PhaseBiography {
		return nil, ErrBiographySubmitted
	}

	bio = pkg.Biography{
		Name:  strings.TrimSpace(bio.Name),
		Age:   strings.TrimSpace(bio.Age),
		Grade: strings.TrimSpace(bio.Grade),
		Sex:   strings.TrimSpace(bio.Sex),
		Email: strings.TrimSpace(bio.Email),
		Phone: strings.TrimSpace(bio.Phone),
	}
	if norm := contact.NormalizeMSISDN(bio.Phone); norm != "" {
		bio.Phone = norm
	}

	var notices []pkg.Notice
	if bio.Email != "" && !contact.ValidEmail(bio.Email) {
		notices = append(notices, pkg.Notice{Level: pkg.NoticeWarning, Channel: pkg.ChannelBiography, Text: EmailWarning})
	}

	s.Biography = bio
	s.Phase = PhaseDialogue
	if !s.OpeningSent {
		s.Transcript = append(s.Transcript, pkg.Message{Speaker: pkg.SpeakerAssistant, Text: OpeningQuestion})
		s.OpeningSent = true
	}
	s.UpdatedAt = time.Now().UTC()
	c.log().WithField("session", s.ID).Info("biography accepted")
	return notices, nil
}

// Answer records one user answer and advances the session.  Before the turn
// limit it appends the next question; at the limit it finalizes.  If the
// analysis fails the session is left exactly as it was and an error
// wrapping ErrAnalysisFailed is returned, so the answer can be resubmitted.
func (c *Controller) Answer(ctx context.Context, s *Session, text string) (*Turn, error) {
	switch s.Phase {
	case PhaseBiography:
		return nil, ErrBiographyRequired
	case PhaseFinalized:
		return nil, ErrSessionFinalized
	}

	pair := pkg.QAPair{Question: s.lastAssistant(QuestionPlaceholder), Answer: text}
	pairs := append(append(make([]pkg.QAPair, 0, len(s.Pairs)+1), s.Pairs...), pair)
	turns := s.Turns + 1
	log := c.log().WithFields(logrus.Fields{"session": s.ID, "turn": turns})

	if turns >= s.TurnLimit {
		return c.finalize(ctx, s, pairs, text, log)
	}

	turn := &Turn{Phase: PhaseDialogue, Turns: turns}
	question, err := c.Questions.NextQuestion(ctx, pairs)
	if err != nil {
		log.WithError(err).Warn("next question failed, using fallback")
		question = FallbackQuestion
		turn.Notices = append(turn.Notices, pkg.Notice{
			Level:   pkg.NoticeWarning,
			Channel: pkg.ChannelDialogue,
			Text:    "Pertanyaan lanjutan belum bisa dibuat otomatis: " + err.Error(),
		})
	}

	s.Transcript = append(s.Transcript,
		pkg.Message{Speaker: pkg.SpeakerUser, Text: text},
		pkg.Message{Speaker: pkg.SpeakerAssistant, Text: question},
	)
	s.Pairs = pairs
	s.Turns = turns
	s.UpdatedAt = time.Now().UTC()
	turn.Messages = []pkg.Message{{Speaker: pkg.SpeakerAssistant, Text: question}}
	log.Debug("question asked")
	return turn, nil
}

func (c *Controller) finalize(ctx context.Context, s *Session, pairs []pkg.QAPair, lastAnswer string, log *logrus.Entry) (*Turn, error) {
	research := c.Research.Summary(ctx)
	analysis, err := c.Analyzer.Analyze(ctx, s.Biography, pairs, research)
	if err != nil {
		log.WithError(err).Error("analysis failed, turn rolled back")
		return nil, fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}

	diagnoses := extract.Diagnoses(analysis)
	selected := extract.Select(analysis)
	plan := c.engine().Suggest(diagnoses, s.Biography.Age, analysis+" "+lastAnswer)

	outcome := &Outcome{
		Analysis:  analysis,
		Sections:  extract.FindSections(analysis),
		Selected:  selected,
		Diagnoses: diagnoses,
		Plan:      plan,
	}
	messages := []pkg.Message{
		{Speaker: pkg.SpeakerAssistant, Text: analysis},
		{Speaker: pkg.SpeakerAssistant, Text: plan.Markdown},
	}

	s.Transcript = append(s.Transcript, pkg.Message{Speaker: pkg.SpeakerUser, Text: lastAnswer})
	s.Transcript = append(s.Transcript, messages...)
	s.Pairs = pairs
	s.Turns++
	s.Phase = PhaseFinalized
	s.Outcome = outcome
	s.UpdatedAt = time.Now().UTC()
	log.WithField("diagnoses", len(diagnoses)).Info("session finalized")

	if c.Notifier != nil {
		outcome.Notices = c.Notifier.Deliver(ctx, s.Biography, notify.NewReport(s.Biography, selected, plan))
	}
	if c.OnFinalize != nil {
		c.OnFinalize(ctx, s)
	}

	return &Turn{
		Messages:  messages,
		Notices:   outcome.Notices,
		Phase:     PhaseFinalized,
		Turns:     s.Turns,
		Finalized: true,
	}, nil
}

var defaultEngine = sync.OnceValue(func() *care.Engine { return care.NewEngine(nil) })

func (c *Controller) engine() *care.Engine {
	if c.Care == nil {
		return defaultEngine()
	}
	return c.Care
}

func (c *Controller) log() *logrus.Logger {
	if c.Log == nil {
		return logrus.StandardLogger()
	}
	return c.Log
}
