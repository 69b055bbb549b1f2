package session

import "classpoll-client/internal/domain"

// Event is the closed set of transitions folded into State by Apply.
// The connection layer translates wire pushes into these; local intents
// (snapshot fetch, teacher-status probe) reuse the same vocabulary so
// the transition surface stays singular.
type Event interface{ isEvent() }

// Connected marks the live channel as established for a tab.
type Connected struct {
	TabID string
}

// Disconnected marks the channel as down. Role, identity and question
// survive so a reconnect resumes the session instead of resetting it.
type Disconnected struct{}

// IdentityAssigned carries the server-confirmed identity for this client.
type IdentityAssigned struct {
	UserID string
	Role   domain.Role
	Name   string
}

// TeacherPresenceChanged gates whether "become teacher" is offered.
type TeacherPresenceChanged struct {
	Online bool
}

// QuestionPushed replaces the current question wholesale. The optional
// answer payload is subject to the answer-visibility rule.
type QuestionPushed struct {
	Question *domain.Question
	Answer   *domain.Answer
}

// PresenceListReplaced carries the complete participant set; the server
// sends the full list on every change, so this is a replace, not a merge.
type PresenceListReplaced struct {
	Users []domain.Presence
}

// PollCountUpdated carries the server's authoritative submission count.
type PollCountUpdated struct {
	Count int
}

// ChatMessageReceived appends one message to the session chat log.
type ChatMessageReceived struct {
	Message domain.ChatMessage
}

// Kicked sets the terminal removed-from-session marker.
type Kicked struct{}

func (Connected) isEvent()              {}
func (Disconnected) isEvent()           {}
func (IdentityAssigned) isEvent()       {}
func (TeacherPresenceChanged) isEvent() {}
func (QuestionPushed) isEvent()         {}
func (PresenceListReplaced) isEvent()   {}
func (PollCountUpdated) isEvent()       {}
func (ChatMessageReceived) isEvent()    {}
func (Kicked) isEvent()                 {}
