package session

import (
	"errors"
	"slices"

	"classpoll-client/internal/domain"
)

// ErrUnknownEvent signals a programming-contract violation: an event
// value outside the declared vocabulary reached the reducer.
var ErrUnknownEvent = errors.New("unknown session event")

// Provenance records how the current Answer was adopted, so the
// identity-race reconciliation is observable instead of inferred.
type Provenance string

const (
	ProvenanceNone        Provenance = ""
	ProvenanceProvisional Provenance = "provisional"
	ProvenanceConfirmed   Provenance = "confirmed"
)

// State is the authoritative in-memory model of the session as seen by
// this client. It is a value: Apply never mutates its input.
type State struct {
	Connected     bool
	TabID         string
	UserID        string
	Role          domain.Role
	DisplayName   string
	TeacherOnline bool

	Question         *domain.Question
	Answer           *domain.Answer
	AnswerProvenance Provenance
	// rawAnswer keeps the last answer payload exactly as it arrived, so
	// the visibility rule can be re-run once identity becomes known.
	rawAnswer *domain.Answer

	Presence  []domain.Presence
	Messages  []domain.ChatMessage
	PollCount int
	Kicked    bool
}

// New returns the empty per-tab state created at app start.
func New() State {
	return State{}
}

// Apply folds one event into the state and returns the successor.
// Transitions are total over well-formed payloads; only an event value
// outside the declared union yields an error.
func Apply(s State, ev Event) (State, error) {
	switch e := ev.(type) {
	case Connected:
		s.Connected = true
		s.TabID = e.TabID
		return s, nil

	case Disconnected:
		s.Connected = false
		return s, nil

	case IdentityAssigned:
		return applyIdentity(s, e), nil

	case TeacherPresenceChanged:
		s.TeacherOnline = e.Online
		return s, nil

	case QuestionPushed:
		return applyQuestion(s, e), nil

	case PresenceListReplaced:
		s.Presence = slices.Clone(e.Users)
		return s, nil

	case PollCountUpdated:
		s.PollCount = e.Count
		return s, nil

	case ChatMessageReceived:
		s.Messages = append(slices.Clone(s.Messages), e.Message)
		return s, nil

	case Kicked:
		s.Kicked = true
		return s, nil

	default:
		return s, ErrUnknownEvent
	}
}

// applyIdentity adopts the server-confirmed identity. Role moves are
// monotonic: unknown may become teacher or student, same-role
// re-assignment is idempotent, and anything else is ignored. A
// provisionally adopted answer is re-checked against the new identity.
func applyIdentity(s State, e IdentityAssigned) State {
	if e.Role.Known() && (!s.Role.Known() || s.Role == e.Role) {
		s.Role = e.Role
	}
	if e.UserID != "" {
		s.UserID = e.UserID
	}
	if e.Name != "" {
		s.DisplayName = e.Name
	}

	if s.AnswerProvenance == ProvenanceProvisional && s.UserID != "" {
		if s.rawAnswer != nil && s.rawAnswer.UserID == s.UserID {
			s.AnswerProvenance = ProvenanceConfirmed
		} else {
			s.Answer = nil
			s.AnswerProvenance = ProvenanceNone
		}
	}
	return s
}

// applyQuestion replaces the question and resolves the answer under the
// visibility rule: the same push is broadcast to every client, but an
// answer record is only meaningful to the student who produced it, or
// provisionally to a client whose identity is not yet assigned.
func applyQuestion(s State, e QuestionPushed) State {
	if questionChanged(s.Question, e.Question) {
		s.PollCount = 0
	}
	s.Question = e.Question
	s.rawAnswer = e.Answer

	switch {
	case e.Answer == nil:
		s.Answer = nil
		s.AnswerProvenance = ProvenanceNone
	case s.UserID == "":
		s.Answer = e.Answer
		s.AnswerProvenance = ProvenanceProvisional
	case e.Answer.UserID == s.UserID:
		s.Answer = e.Answer
		s.AnswerProvenance = ProvenanceConfirmed
	default:
		s.Answer = nil
		s.AnswerProvenance = ProvenanceNone
	}
	return s
}

// questionChanged reports whether the push sets a different question
// identity. A re-push of the same question (own-answer confirmation or
// updated tallies) keeps the submission count.
func questionChanged(old, next *domain.Question) bool {
	switch {
	case old == nil && next == nil:
		return false
	case old == nil || next == nil:
		return true
	default:
		return old.ID != next.ID
	}
}
