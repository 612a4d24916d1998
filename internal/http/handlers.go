package http

import (
	"github.com/gin-gonic/gin"

	"dokter-remaja/internal/dialogue"
	"dokter-remaja/pkg"
)

// sessionView is the public shape of a session.
type sessionView struct {
	ID         string            `json:"id"`
	Phase      dialogue.Phase    `json:"phase"`
	Turns      int               `json:"turns"`
	TurnLimit  int               `json:"turn_limit"`
	Biography  pkg.Biography     `json:"biography"`
	Transcript []pkg.Message     `json:"transcript"`
	Outcome    *dialogue.Outcome `json:"outcome,omitempty"`
	Disclaimer string            `json:"disclaimer"`
}

func viewOf(s *dialogue.Session) sessionView {
	return sessionView{
		ID:         s.ID,
		Phase:      s.Phase,
		Turns:      s.Turns,
		TurnLimit:  s.TurnLimit,
		Biography:  s.Biography,
		Transcript: s.Transcript,
		Outcome:    s.Outcome,
		Disclaimer: pkg.Disclaimer,
	}
}

// biographyResult is returned after the form is accepted.
type biographyResult struct {
	Phase      dialogue.Phase `json:"phase"`
	Notices    []pkg.Notice   `json:"notices"`
	Transcript []pkg.Message  `json:"transcript"`
}

// messageResult is returned after each answer.
type messageResult struct {
	*dialogue.Turn
	Outcome *dialogue.Outcome `json:"outcome,omitempty"`
}

func (s *Server) handleCreateSession(c *gin.Context) {
	sess, err := s.Sessions.Create(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	Created(c, "session created", viewOf(sess))
}

func (s *Server) handleGetSession(c *gin.Context) {
	sess, err := s.Sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	Success(c, "session", viewOf(sess))
}

func (s *Server) handleEndSession(c *gin.Context) {
	if err := s.Sessions.End(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	Success(c, "session ended", nil)
}

func (s *Server) handleSubmitBiography(c *gin.Context) {
	var bio pkg.Biography
	if !bindJSON(c, &bio) {
		return
	}

	var notices []pkg.Notice
	sess, err := s.Sessions.Update(c.Request.Context(), c.Param("id"), func(sess *dialogue.Session) error {
		var err error
		notices, err = s.Controller.SubmitBiography(sess, bio)
		return err
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	if notices == nil {
		notices = []pkg.Notice{}
	}
	Success(c, "biography accepted", biographyResult{
		Phase:      sess.Phase,
		Notices:    notices,
		Transcript: sess.Transcript,
	})
}

func (s *Server) handlePostMessage(c *gin.Context) {
	var req pkg.MessageRequest
	if !bindJSON(c, &req) {
		return
	}

	var turn *dialogue.Turn
	sess, err := s.Sessions.Update(c.Request.Context(), c.Param("id"), func(sess *dialogue.Session) error {
		var err error
		turn, err = s.Controller.Answer(c.Request.Context(), sess, req.Content)
		return err
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	if turn.Notices == nil {
		turn.Notices = []pkg.Notice{}
	}
	Success(c, "answer recorded", messageResult{Turn: turn, Outcome: sess.Outcome})
}

func (s *Server) fail(c *gin.Context, err error) {
	code := statusFor(err)
	entry := s.Log.WithError(err).WithField("session", c.Param("id"))
	if code >= 500 {
		entry.Error("request failed")
	} else {
		entry.Debug("request rejected")
	}
	Error(c, code, err.Error())
}
