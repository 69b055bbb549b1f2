package domain

import "time"

// Role is the server-assigned designation of a connected client.
type Role string

const (
	RoleUnknown Role = ""
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// Known reports whether the server has confirmed a role for this client.
func (r Role) Known() bool {
	return r == RoleTeacher || r == RoleStudent
}

// Option represents a possible answer for the current question.
// Correct and VoteCount are always carried on the wire; whether they are
// meaningful to the reader is decided by the answer-visibility rule.
type Option struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Correct   bool   `json:"correct"`
	VoteCount int    `json:"count"`
}

// Question is the single active poll question. At most one is current
// at a time; a nil *Question means no active question.
type Question struct {
	ID                 string    `json:"id"`
	Text               string    `json:"text"`
	Options            []Option  `json:"options"`
	StartTime          time.Time `json:"startTime"`
	MaxDurationSeconds int       `json:"maxDurationSeconds"`
}

// TimeLeft returns the whole seconds remaining in the answer window at
// the given instant, clamped at zero.
func (q *Question) TimeLeft(now time.Time) int {
	if q == nil || q.StartTime.IsZero() {
		return 0
	}
	elapsed := int(now.Sub(q.StartTime) / time.Second)
	left := q.MaxDurationSeconds - elapsed
	if left < 0 {
		return 0
	}
	return left
}

// TotalVotes sums the vote counts across all options.
func (q *Question) TotalVotes() int {
	if q == nil {
		return 0
	}
	total := 0
	for _, opt := range q.Options {
		total += opt.VoteCount
	}
	return total
}

// Answer is this client's resolved view of what was answered and by
// whom. UserID may be a sentinel that matches nobody when the server
// broadcasts full results after a question closes.
type Answer struct {
	OptionID string `json:"optionId"`
	UserID   string `json:"userId"`
}

// Presence describes one currently connected participant. ConnectionID
// is unique per live socket; UserID survives reconnects.
type Presence struct {
	ConnectionID string `json:"connectionId"`
	UserID       string `json:"userId"`
	Name         string `json:"name,omitempty"`
}

// ChatMessage is one entry in the append-only session chat log.
type ChatMessage struct {
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// NewOption is the teacher's input when creating a poll.
type NewOption struct {
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// Snapshot is the one-time startup fetch result covering the race where
// the live channel has not pushed state yet.
type Snapshot struct {
	Question *Question `json:"question"`
	Answer   *Answer   `json:"answer,omitempty"`
}
