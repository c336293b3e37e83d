package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/whimsylab/couplescourt/internal/model/court"
)

// Memory implements Store with mutex-guarded maps, suitable for tests and
// zero-config runs.
type Memory struct {
	mu          sync.RWMutex
	sessions    map[string]court.Session
	byToken     map[string]string // invite token -> session id
	messages    map[string][]court.Message
	resolutions map[string][]court.Resolution
	seq         map[string]int64

	now func() time.Time
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		sessions:    make(map[string]court.Session),
		byToken:     make(map[string]string),
		messages:    make(map[string][]court.Message),
		resolutions: make(map[string][]court.Resolution),
		seq:         make(map[string]int64),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// CreateSession persists the session record.
func (m *Memory) CreateSession(_ context.Context, s court.Session) (court.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s.CreatedAt.IsZero() {
		s.CreatedAt = m.now()
	}
	m.sessions[s.ID] = s
	if s.InviteToken != "" {
		m.byToken[s.InviteToken] = s.ID
	}
	m.messages[s.ID] = make([]court.Message, 0, 16)
	return s, nil
}

// SessionByID retrieves a session by identifier.
func (m *Memory) SessionByID(_ context.Context, id string) (court.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return court.Session{}, court.ErrSessionNotFound
	}
	return s, nil
}

// SessionByInviteToken retrieves a session by its invite token.
func (m *Memory) SessionByInviteToken(_ context.Context, token string) (court.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byToken[token]
	if !ok {
		return court.Session{}, court.ErrSessionNotFound
	}
	return m.sessions[id], nil
}

// BindPartner binds role B under the lock, so the check-and-set is atomic.
func (m *Memory) BindPartner(_ context.Context, inviteToken, partnerName, partnerToken string) (court.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byToken[inviteToken]
	if !ok {
		return court.Session{}, court.ErrSessionNotFound
	}

	s := m.sessions[id]
	if s.UserBJoined {
		return court.Session{}, court.ErrSessionFull
	}

	s.UserBName = partnerName
	s.UserBJoined = true
	s.UserBToken = partnerToken
	m.sessions[id] = s
	return s, nil
}

// AppendMessage appends a message with a monotonic timestamp and sequence.
func (m *Memory) AppendMessage(_ context.Context, sessionID string, sender court.Role, content string) (court.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[sessionID]; !ok {
		return court.Message{}, court.ErrSessionNotFound
	}

	ts := m.now()
	log := m.messages[sessionID]
	if n := len(log); n > 0 && !ts.After(log[n-1].CreatedAt) {
		// Clock did not advance; keep timestamps non-decreasing and let
		// Seq provide the total order.
		ts = log[n-1].CreatedAt
	}

	m.seq[sessionID]++
	msg := court.Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Sender:    sender,
		Content:   content,
		Seq:       m.seq[sessionID],
		CreatedAt: ts,
	}
	m.messages[sessionID] = append(log, msg)
	return msg, nil
}

// MessagesSince returns messages newer than since, ascending.
func (m *Memory) MessagesSince(_ context.Context, sessionID string, since *time.Time) ([]court.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	log, ok := m.messages[sessionID]
	if !ok {
		return nil, court.ErrSessionNotFound
	}

	out := make([]court.Message, 0, len(log))
	for _, msg := range log {
		if since != nil && !msg.CreatedAt.After(*since) {
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}

// TailMessages returns at most the last n messages, ascending.
func (m *Memory) TailMessages(_ context.Context, sessionID string, n int) ([]court.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	log, ok := m.messages[sessionID]
	if !ok {
		return nil, court.ErrSessionNotFound
	}

	start := 0
	if len(log) > n {
		start = len(log) - n
	}
	out := make([]court.Message, len(log)-start)
	copy(out, log[start:])
	return out, nil
}

// CreateResolution persists a resolution record.
func (m *Memory) CreateResolution(_ context.Context, r court.Resolution) (court.Resolution, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[r.SessionID]; !ok {
		return court.Resolution{}, court.ErrSessionNotFound
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = m.now()
	}
	m.resolutions[r.SessionID] = append(m.resolutions[r.SessionID], r)
	return r, nil
}

// ResolutionsBySession returns resolutions most-recent-first.
func (m *Memory) ResolutionsBySession(_ context.Context, sessionID string) ([]court.Resolution, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.sessions[sessionID]; !ok {
		return nil, court.ErrSessionNotFound
	}

	out := make([]court.Resolution, len(m.resolutions[sessionID]))
	copy(out, m.resolutions[sessionID])
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
