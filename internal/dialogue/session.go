// Package dialogue runs the intake state machine: biography first, then a
// fixed number of question/answer turns, then one analysis with care
// suggestions and result delivery.
package dialogue

import (
	"time"

	"dokter-remaja/internal/care"
	"dokter-remaja/internal/extract"
	"dokter-remaja/pkg"
)

// Phase is the position of a session in the intake flow.  Phases only move
// forward.
type Phase string

const (
	PhaseBiography Phase = "collecting-biography"
	PhaseDialogue  Phase = "in-dialogue"
	PhaseFinalized Phase = "finalized"
)

// DefaultTurnLimit is the number of answered questions before analysis.
const DefaultTurnLimit = 10

// Session is the complete state of one intake.  It is plain data so that a
// store can snapshot it as JSON.
type Session struct {
	ID          string        `json:"id"`
	Phase       Phase         `json:"phase"`
	Biography   pkg.Biography `json:"biography"`
	Pairs       []pkg.QAPair  `json:"pairs"`
	Turns       int           `json:"turns"`
	TurnLimit   int           `json:"turn_limit"`
	Transcript  []pkg.Message `json:"transcript"`
	OpeningSent bool          `json:"opening_sent"`
	Outcome     *Outcome      `json:"outcome,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Outcome is produced once, when the session is finalized.
type Outcome struct {
	Analysis  string           `json:"analysis"`
	Sections  extract.Sections `json:"sections"`
	Selected  string           `json:"selected"`
	Diagnoses []string         `json:"diagnoses"`
	Plan      care.Plan        `json:"plan"`
	Notices   []pkg.Notice     `json:"notices"`
}

// NewSession returns a session waiting for its biography.  A non-positive
// limit selects DefaultTurnLimit.
func NewSession(id string, limit int) *Session {
	if limit <= 0 {
		limit = DefaultTurnLimit
	}
	now := time.Now().UTC()
	return &Session{
		ID:         id,
		Phase:      PhaseBiography,
		Pairs:      []pkg.QAPair{},
		TurnLimit:  limit,
		Transcript: []pkg.Message{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// lastAssistant returns the most recent assistant message, or def.
func (s *Session) lastAssistant(def string) string {
	for i := len(s.Transcript) - 1; i >= 0; i-- {
		if s.Transcript[i].Speaker == pkg.SpeakerAssistant {
			return s.Transcript[i].Text
		}
	}
	return def
}
