package client

import (
	"encoding/json"
	"errors"
	"fmt"

	"classpoll-client/internal/domain"
	"classpoll-client/internal/session"
)

// Message type names shared with the session server.
const (
	// client -> server
	msgTeacherSignup   = "teacher-signup"
	msgStudentSignup   = "student-signup"
	msgSaveStudentName = "save-student-name"
	msgAnswerPoll      = "answer-poll"
	msgCreatePoll      = "create-poll"
	msgResetPoll       = "reset-poll"
	msgSendMessage     = "send-message"
	msgKickStudent     = "kick-student"

	// server -> client
	msgSetUser       = "set-user"
	msgTeacherStatus = "teacher-status"
	msgCurrentPoll   = "current-poll"
	msgChatMessage   = "chat-message"
	msgUsersOnline   = "users-online-updated"
	msgPollCount     = "poll-count-updated"
	msgKicked        = "kicked"
)

// errUnknownMessage marks an inbound type outside the declared
// vocabulary. Such messages are logged and dropped, never fatal.
var errUnknownMessage = errors.New("unknown message type")

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type setUserPayload struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	Name   string `json:"name,omitempty"`
}

type teacherStatusPayload struct {
	Online bool `json:"online"`
}

type currentPollPayload struct {
	Question *domain.Question `json:"question"`
	Answer   *domain.Answer   `json:"answer,omitempty"`
}

type usersOnlinePayload struct {
	Users []domain.Presence `json:"users"`
}

type pollCountPayload struct {
	Count int `json:"count"`
}

type namePayload struct {
	Name string `json:"name"`
}

type answerPollPayload struct {
	QuestionID      string `json:"questionId"`
	OptionID        string `json:"optionId"`
	TimeLeftSeconds int    `json:"timeLeftSeconds"`
}

type createPollPayload struct {
	Question           string             `json:"question"`
	Options            []domain.NewOption `json:"options"`
	MaxDurationSeconds int                `json:"maxDurationSeconds"`
}

type textPayload struct {
	Text string `json:"text"`
}

type kickPayload struct {
	ConnectionID string `json:"connectionId"`
}

// decodeEvent validates an inbound envelope at the boundary and maps it
// to a session event; the reducer never sees raw JSON.
func decodeEvent(msg inboundMessage) (session.Event, error) {
	switch msg.Type {
	case msgSetUser:
		var p setUserPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", msg.Type, err)
		}
		return session.IdentityAssigned{UserID: p.UserID, Role: domain.Role(p.Role), Name: p.Name}, nil

	case msgTeacherStatus:
		var p teacherStatusPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", msg.Type, err)
		}
		return session.TeacherPresenceChanged{Online: p.Online}, nil

	case msgCurrentPoll:
		var p currentPollPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", msg.Type, err)
		}
		return session.QuestionPushed{Question: p.Question, Answer: p.Answer}, nil

	case msgChatMessage:
		var p domain.ChatMessage
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", msg.Type, err)
		}
		return session.ChatMessageReceived{Message: p}, nil

	case msgUsersOnline:
		var p usersOnlinePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", msg.Type, err)
		}
		return session.PresenceListReplaced{Users: p.Users}, nil

	case msgPollCount:
		var p pollCountPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", msg.Type, err)
		}
		return session.PollCountUpdated{Count: p.Count}, nil

	case msgKicked:
		return session.Kicked{}, nil

	default:
		return nil, fmt.Errorf("%w: %q", errUnknownMessage, msg.Type)
	}
}
