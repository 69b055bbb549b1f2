package client

import (
	"context"
	"errors"
	"log"
	"net/url"
	"sync"

	"classpoll-client/internal/domain"
	"classpoll-client/internal/session"
	"github.com/gorilla/websocket"
)

// ErrUnknownIntent signals an intent value outside the declared contract.
var ErrUnknownIntent = errors.New("unknown intent")

// SnapshotFetcher is the black-box request/response escape hatch used
// once per connect to cover the race where the live channel has not
// pushed state yet.
type SnapshotFetcher interface {
	PollSnapshot(ctx context.Context, tabID string) (domain.Snapshot, error)
}

// Manager owns exactly one live connection per tab and bridges local
// intents, the wire protocol, and the session state. Construct one per
// tab and inject it; there is no package-level instance.
type Manager struct {
	wsURL     string
	dialer    *websocket.Dialer
	snapshots SnapshotFetcher

	// snapshotErr receives snapshot-fetch failures; they surface to the
	// view layer as a displayable error, never as connection state.
	snapshotErr func(error)

	mu          sync.RWMutex
	state       session.State
	conn        *websocket.Conn
	send        chan outboundMessage
	subscribers map[chan session.State]struct{}
}

// NewManager builds a manager dialing wsURL. snapshots may be nil when
// the handshake alone carries the current poll.
func NewManager(wsURL string, snapshots SnapshotFetcher) *Manager {
	return &Manager{
		wsURL:       wsURL,
		dialer:      websocket.DefaultDialer,
		snapshots:   snapshots,
		snapshotErr: func(err error) { log.Printf("snapshot fetch failed: %v", err) },
		state:       session.New(),
		subscribers: make(map[chan session.State]struct{}),
	}
}

// OnSnapshotError overrides the snapshot failure sink. Call before Connect.
func (m *Manager) OnSnapshotError(fn func(error)) {
	if fn != nil {
		m.snapshotErr = fn
	}
}

// Connect dials the session server with the tab correlation key. A
// second call while connected is a no-op; duplicate event delivery
// through parallel connections must never happen.
func (m *Manager) Connect(ctx context.Context, tabID string) error {
	m.mu.RLock()
	connected := m.conn != nil
	m.mu.RUnlock()
	if connected {
		return nil
	}

	u, err := url.Parse(m.wsURL)
	if err != nil {
		return err
	}
	q := u.Query()
	q.Set("tabID", tabID)
	u.RawQuery = q.Encode()

	conn, resp, err := m.dialer.DialContext(ctx, u.String(), nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return err
	}

	send := make(chan outboundMessage, 16)

	m.mu.Lock()
	if m.conn != nil {
		// Lost a connect race; keep the established connection.
		m.mu.Unlock()
		conn.Close()
		return nil
	}
	m.conn = conn
	m.send = send
	m.mu.Unlock()

	m.apply(session.Connected{TabID: tabID})

	go writeLoop(conn, send)
	go m.readLoop(conn)

	if m.snapshots != nil {
		go m.fetchSnapshot(ctx, tabID)
	}
	return nil
}

// Disconnect tears the transport down. Session identity and question
// are retained; a later Connect resumes.
func (m *Manager) Disconnect() {
	conn, done := m.detach()
	if done {
		conn.Close()
		m.apply(session.Disconnected{})
	}
}

// State returns the latest session state value.
func (m *Manager) State() session.State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Subscribe returns a channel receiving every state change, primed with
// the current state. The caller must invoke cancel to avoid leaks.
func (m *Manager) Subscribe() (<-chan session.State, func()) {
	ch := make(chan session.State, 8)

	m.mu.Lock()
	m.subscribers[ch] = struct{}{}
	initial := m.state
	m.mu.Unlock()

	ch <- initial

	cancel := func() {
		m.mu.Lock()
		if _, ok := m.subscribers[ch]; ok {
			delete(m.subscribers, ch)
			close(ch)
		}
		m.mu.Unlock()
	}
	return ch, cancel
}

// Dispatch routes one intent. Wire intents are fire-and-forget and are
// silently dropped while disconnected; Dispatch never panics across
// this boundary.
func (m *Manager) Dispatch(ctx context.Context, in Intent) error {
	switch it := in.(type) {
	case Connect:
		return m.Connect(ctx, it.TabID)
	case Disconnect:
		m.Disconnect()
		return nil

	case TeacherSignup:
		m.emit(msgTeacherSignup, nil)
		return nil
	case StudentSignup:
		m.emit(msgStudentSignup, nil)
		return nil
	case SaveStudentName:
		m.emit(msgSaveStudentName, namePayload{Name: it.Name})
		return nil
	case AnswerPoll:
		m.emit(msgAnswerPoll, answerPollPayload{
			QuestionID:      it.QuestionID,
			OptionID:        it.OptionID,
			TimeLeftSeconds: it.TimeLeftSeconds,
		})
		return nil
	case CreatePoll:
		m.emit(msgCreatePoll, createPollPayload{
			Question:           it.Question,
			Options:            it.Options,
			MaxDurationSeconds: it.MaxDurationSeconds,
		})
		return nil
	case ResetPoll:
		m.emit(msgResetPoll, nil)
		return nil
	case SendMessage:
		m.emit(msgSendMessage, textPayload{Text: it.Text})
		return nil
	case KickStudent:
		m.emit(msgKickStudent, kickPayload{ConnectionID: it.ConnectionID})
		return nil

	case SetQuestion:
		m.apply(session.QuestionPushed{Question: it.Question, Answer: it.Answer})
		return nil
	case SetTeacherStatus:
		m.apply(session.TeacherPresenceChanged{Online: it.Online})
		return nil

	default:
		return ErrUnknownIntent
	}
}

// readLoop decodes inbound envelopes and folds them into state in
// arrival order. Any read error, clean or not, ends the connection.
func (m *Manager) readLoop(conn *websocket.Conn) {
	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("ws read error: %v", err)
			}
			break
		}

		ev, err := decodeEvent(msg)
		if err != nil {
			// Contract violation from the server; drop, never crash the session.
			log.Printf("dropping inbound message: %v", err)
			continue
		}
		m.apply(ev)
	}

	if c, done := m.detach(); done {
		c.Close()
		m.apply(session.Disconnected{})
	}
}

func writeLoop(conn *websocket.Conn, send <-chan outboundMessage) {
	for msg := range send {
		if err := conn.WriteJSON(msg); err != nil {
			log.Printf("ws write error: %v", err)
			return
		}
	}
}

// detach removes the live connection, if this caller is the one to do
// so, and returns it for closing. Exactly one of Disconnect and the
// read loop wins, so Disconnected is emitted once per drop.
func (m *Manager) detach() (*websocket.Conn, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conn == nil {
		return nil, false
	}
	conn := m.conn
	m.conn = nil
	close(m.send)
	m.send = nil
	return conn, true
}

// emit queues one outbound command. No-op while disconnected.
func (m *Manager) emit(typ string, payload any) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.send == nil {
		return
	}
	select {
	case m.send <- outboundMessage{Type: typ, Payload: payload}:
	default:
		log.Printf("outbound buffer full, dropping %s", typ)
	}
}

// apply folds one event into state and notifies subscribers. Slow
// subscribers have their stale value replaced rather than blocking the
// fold (the reducer itself never blocks).
func (m *Manager) apply(ev session.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, err := session.Apply(m.state, ev)
	if err != nil {
		log.Printf("dropping event %T: %v", ev, err)
		return
	}
	m.state = next

	for ch := range m.subscribers {
		select {
		case ch <- next:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- next
		}
	}
}

func (m *Manager) fetchSnapshot(ctx context.Context, tabID string) {
	snap, err := m.snapshots.PollSnapshot(ctx, tabID)
	if err != nil {
		m.snapshotErr(err)
		return
	}
	if snap.Question != nil {
		m.apply(session.QuestionPushed{Question: snap.Question, Answer: snap.Answer})
	}
}
