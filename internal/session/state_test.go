package session

import (
	"testing"
	"time"

	"classpoll-client/internal/domain"
)

func mustApply(t *testing.T, s State, ev Event) State {
	t.Helper()
	next, err := Apply(s, ev)
	if err != nil {
		t.Fatalf("apply %T: %v", ev, err)
	}
	return next
}

func question(id string) *domain.Question {
	return &domain.Question{
		ID:   id,
		Text: "What is 2 + 2?",
		Options: []domain.Option{
			{ID: "o1", Text: "3"},
			{ID: "o2", Text: "4", Correct: true},
		},
		StartTime:          time.Now(),
		MaxDurationSeconds: 60,
	}
}

func TestQuestionWithoutAnswerStartsUnanswered(t *testing.T) {
	s := mustApply(t, New(), IdentityAssigned{UserID: "u1", Role: domain.RoleStudent})
	s = mustApply(t, s, QuestionPushed{Question: question("q1"), Answer: &domain.Answer{OptionID: "o2", UserID: "u1"}})
	if s.Answer == nil {
		t.Fatalf("expected own answer adopted")
	}

	// Any push without an answer payload clears the answer, even after one was held.
	s = mustApply(t, s, QuestionPushed{Question: question("q2")})
	if s.Answer != nil {
		t.Fatalf("expected answer absent after answerless push, got %+v", s.Answer)
	}
	if s.AnswerProvenance != ProvenanceNone {
		t.Fatalf("expected no provenance, got %q", s.AnswerProvenance)
	}
}

func TestForeignAnswerNotAdopted(t *testing.T) {
	s := mustApply(t, New(), IdentityAssigned{UserID: "u1", Role: domain.RoleStudent})
	s = mustApply(t, s, QuestionPushed{Question: question("q1"), Answer: &domain.Answer{OptionID: "o1", UserID: "u2"}})
	if s.Answer != nil {
		t.Fatalf("student must not see another student's answer, got %+v", s.Answer)
	}
	if s.Question == nil || s.Question.ID != "q1" {
		t.Fatalf("question must still be replaced, got %+v", s.Question)
	}
}

func TestProvisionalAnswerConfirmedOnMatchingIdentity(t *testing.T) {
	s := mustApply(t, New(), QuestionPushed{Question: question("q1"), Answer: &domain.Answer{OptionID: "o2", UserID: "u1"}})
	if s.Answer == nil || s.AnswerProvenance != ProvenanceProvisional {
		t.Fatalf("expected provisional adoption before identity, got %+v (%q)", s.Answer, s.AnswerProvenance)
	}

	s = mustApply(t, s, IdentityAssigned{UserID: "u1", Role: domain.RoleStudent})
	if s.Answer == nil || s.AnswerProvenance != ProvenanceConfirmed {
		t.Fatalf("expected confirmation for matching identity, got %+v (%q)", s.Answer, s.AnswerProvenance)
	}
}

func TestProvisionalAnswerClearedOnMismatchedIdentity(t *testing.T) {
	s := mustApply(t, New(), QuestionPushed{Question: question("q1"), Answer: &domain.Answer{OptionID: "o2", UserID: "u9"}})
	s = mustApply(t, s, IdentityAssigned{UserID: "u1", Role: domain.RoleStudent})
	if s.Answer != nil {
		t.Fatalf("mismatched provisional answer must be cleared, got %+v", s.Answer)
	}
	if s.AnswerProvenance != ProvenanceNone {
		t.Fatalf("expected no provenance after reconciliation, got %q", s.AnswerProvenance)
	}
}

func TestReconnectResumesSession(t *testing.T) {
	s := mustApply(t, New(), Connected{TabID: "tab-1"})
	s = mustApply(t, s, IdentityAssigned{UserID: "u1", Role: domain.RoleStudent, Name: "Alice"})
	s = mustApply(t, s, QuestionPushed{Question: question("q1")})

	s = mustApply(t, s, Disconnected{})
	if s.Connected {
		t.Fatalf("expected disconnected")
	}
	if s.Role != domain.RoleStudent || s.UserID != "u1" || s.Question == nil {
		t.Fatalf("disconnect must not reset the session: %+v", s)
	}

	s = mustApply(t, s, Connected{TabID: "tab-1"})
	if !s.Connected || s.Role != domain.RoleStudent || s.UserID != "u1" || s.Question == nil {
		t.Fatalf("reconnect must resume, not reset: %+v", s)
	}
}

func TestPresenceReplaceLeavesNoResidue(t *testing.T) {
	a := domain.Presence{ConnectionID: "c1", UserID: "u1", Name: "Alice"}
	b := domain.Presence{ConnectionID: "c2", UserID: "u2", Name: "Bob"}
	c := domain.Presence{ConnectionID: "c3", UserID: "u3", Name: "Cleo"}

	s := mustApply(t, New(), PresenceListReplaced{Users: []domain.Presence{a, b, c}})
	s = mustApply(t, s, PresenceListReplaced{Users: []domain.Presence{a, c}})

	if len(s.Presence) != 2 {
		t.Fatalf("expected exactly 2 participants, got %d", len(s.Presence))
	}
	for _, p := range s.Presence {
		if p.ConnectionID == "c2" {
			t.Fatalf("participant b must not survive the replace")
		}
	}
}

func TestStudentAnswerConfirmationFlow(t *testing.T) {
	s := mustApply(t, New(), Connected{TabID: "tab-1"})
	s = mustApply(t, s, IdentityAssigned{UserID: "u1", Role: domain.RoleStudent})

	s = mustApply(t, s, QuestionPushed{Question: question("q1")})
	if s.Answer != nil {
		t.Fatalf("fresh question must start unanswered")
	}

	// The student's answer-poll command round-trips; the server confirms
	// it with a re-push of the same question carrying the answer record.
	s = mustApply(t, s, QuestionPushed{Question: question("q1"), Answer: &domain.Answer{OptionID: "o2", UserID: "u1"}})
	if s.Answer == nil || s.Answer.OptionID != "o2" || s.Answer.UserID != "u1" {
		t.Fatalf("expected own answer confirmed, got %+v", s.Answer)
	}
	if s.AnswerProvenance != ProvenanceConfirmed {
		t.Fatalf("expected confirmed provenance, got %q", s.AnswerProvenance)
	}
}

func TestNewQuestionResetsPollCount(t *testing.T) {
	s := mustApply(t, New(), QuestionPushed{Question: question("q1")})
	s = mustApply(t, s, PollCountUpdated{Count: 7})

	s = mustApply(t, s, QuestionPushed{Question: question("q2")})
	if s.PollCount != 0 {
		t.Fatalf("new question must reset count, got %d", s.PollCount)
	}

	// A stale count from the previous question may still be in flight;
	// it is overwritten by the next authoritative count, never added.
	s = mustApply(t, s, PollCountUpdated{Count: 7})
	s = mustApply(t, s, PollCountUpdated{Count: 1})
	if s.PollCount != 1 {
		t.Fatalf("count must track the latest server value, got %d", s.PollCount)
	}
}

func TestSameQuestionRepushKeepsPollCount(t *testing.T) {
	s := mustApply(t, New(), IdentityAssigned{UserID: "u1", Role: domain.RoleStudent})
	s = mustApply(t, s, QuestionPushed{Question: question("q1")})
	s = mustApply(t, s, PollCountUpdated{Count: 4})

	s = mustApply(t, s, QuestionPushed{Question: question("q1"), Answer: &domain.Answer{OptionID: "o2", UserID: "u1"}})
	if s.PollCount != 4 {
		t.Fatalf("same-question re-push must keep count, got %d", s.PollCount)
	}
}

func TestKickedIsTerminal(t *testing.T) {
	s := mustApply(t, New(), Kicked{})
	if !s.Kicked {
		t.Fatalf("expected kicked flag set")
	}

	s = mustApply(t, s, QuestionPushed{Question: question("q1")})
	s = mustApply(t, s, Disconnected{})
	s = mustApply(t, s, Connected{TabID: "tab-1"})
	if !s.Kicked {
		t.Fatalf("kicked is a one-way marker, must survive later events")
	}
	if s.Question == nil || !s.Connected {
		t.Fatalf("later events must still apply normally: %+v", s)
	}
}

func TestRoleTransitionsAreMonotonic(t *testing.T) {
	s := mustApply(t, New(), IdentityAssigned{UserID: "u1", Role: domain.RoleStudent})
	if s.Role != domain.RoleStudent {
		t.Fatalf("expected student role, got %q", s.Role)
	}

	// Same-role re-assignment is idempotent.
	s = mustApply(t, s, IdentityAssigned{UserID: "u1", Role: domain.RoleStudent})
	if s.Role != domain.RoleStudent {
		t.Fatalf("expected student role kept, got %q", s.Role)
	}

	// A conflicting known role and an unknown role are both ignored.
	s = mustApply(t, s, IdentityAssigned{UserID: "u1", Role: domain.RoleTeacher})
	if s.Role != domain.RoleStudent {
		t.Fatalf("role must not flip once assigned, got %q", s.Role)
	}
	s = mustApply(t, s, IdentityAssigned{UserID: "u1", Role: domain.RoleUnknown})
	if s.Role != domain.RoleStudent {
		t.Fatalf("role must never return to unknown, got %q", s.Role)
	}
}

func TestChatLogIsAppendOnly(t *testing.T) {
	first := domain.ChatMessage{Sender: "Alice", Text: "hi", Timestamp: time.Now()}
	second := domain.ChatMessage{Sender: "Bob", Text: "hello", Timestamp: time.Now()}

	s := mustApply(t, New(), ChatMessageReceived{Message: first})
	snapshot := s

	s = mustApply(t, s, ChatMessageReceived{Message: second})
	if len(s.Messages) != 2 || s.Messages[0].Text != "hi" || s.Messages[1].Text != "hello" {
		t.Fatalf("expected ordered append, got %+v", s.Messages)
	}
	// The earlier state value must be untouched by the later append.
	if len(snapshot.Messages) != 1 {
		t.Fatalf("reducer must not mutate prior states, got %+v", snapshot.Messages)
	}
}

type bogusEvent struct{}

func (bogusEvent) isEvent() {}

func TestUnknownEventRejected(t *testing.T) {
	if _, err := Apply(New(), bogusEvent{}); err != ErrUnknownEvent {
		t.Fatalf("expected ErrUnknownEvent, got %v", err)
	}
}
