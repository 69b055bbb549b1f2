package client

import "classpoll-client/internal/domain"

// Intent is the closed contract between view components and the
// connection layer. Views emit intents without knowing whether one is
// purely local or requires a wire round-trip.
type Intent interface{ isIntent() }

// Connect opens the single live connection for a tab.
type Connect struct {
	TabID string
}

// Disconnect tears the connection down.
type Disconnect struct{}

// TeacherSignup claims the teacher role for this client.
type TeacherSignup struct{}

// StudentSignup claims the student role for this client.
type StudentSignup struct{}

// SaveStudentName records the student's display name.
type SaveStudentName struct {
	Name string
}

// AnswerPoll submits this student's answer for the current question.
type AnswerPoll struct {
	QuestionID      string
	OptionID        string
	TimeLeftSeconds int
}

// CreatePoll asks a new question (teacher only).
type CreatePoll struct {
	Question           string
	Options            []domain.NewOption
	MaxDurationSeconds int
}

// ResetPoll clears the current question (teacher only).
type ResetPoll struct{}

// SendMessage posts a chat message to the session.
type SendMessage struct {
	Text string
}

// KickStudent removes a participant by connection (teacher only).
type KickStudent struct {
	ConnectionID string
}

// SetQuestion folds snapshot-fetched poll data through the same event
// vocabulary as a live push. Never touches the wire.
type SetQuestion struct {
	Question *domain.Question
	Answer   *domain.Answer
}

// SetTeacherStatus folds an out-of-band teacher-online probe result
// into state. Never touches the wire.
type SetTeacherStatus struct {
	Online bool
}

func (Connect) isIntent()          {}
func (Disconnect) isIntent()       {}
func (TeacherSignup) isIntent()    {}
func (StudentSignup) isIntent()    {}
func (SaveStudentName) isIntent()  {}
func (AnswerPoll) isIntent()       {}
func (CreatePoll) isIntent()       {}
func (ResetPoll) isIntent()        {}
func (SendMessage) isIntent()      {}
func (KickStudent) isIntent()      {}
func (SetQuestion) isIntent()      {}
func (SetTeacherStatus) isIntent() {}
