// Package message implements the append path and the polling feed over the
// session-scoped message log.
package message

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/whimsylab/couplescourt/internal/model/court"
	"github.com/whimsylab/couplescourt/internal/store"
	"github.com/whimsylab/couplescourt/internal/turn"
)

// Service validates and appends messages and serves incremental reads.
type Service struct {
	store  store.Store
	policy turn.Policy
	maxLen int
	now    func() time.Time
}

// NewService wires the message service to a store with the configured turn
// policy and content length cap.
func NewService(st store.Store, policy turn.Policy, maxLen int) *Service {
	return &Service{
		store:  st,
		policy: policy,
		maxLen: maxLen,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Append validates the submission, checks the turn gate and persists the
// message. The returned message carries the authoritative id, sequence and
// timestamp so clients can reconcile optimistic inserts.
func (s *Service) Append(ctx context.Context, sessionID string, sender court.Role, content, participantToken string) (court.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return court.Message{}, fmt.Errorf("%w: content is empty", court.ErrValidation)
	}
	if utf8.RuneCountInString(content) > s.maxLen {
		return court.Message{}, fmt.Errorf("%w: content exceeds %d characters", court.ErrValidation, s.maxLen)
	}
	if !sender.Valid() {
		return court.Message{}, fmt.Errorf("%w: sender must be %q or %q", court.ErrValidation, court.RoleA, court.RoleB)
	}

	sess, err := store.WithRetry(func() (court.Session, error) {
		return s.store.SessionByID(ctx, sessionID)
	})
	if err != nil {
		return court.Message{}, err
	}
	if sess.Expired(s.now()) {
		return court.Message{}, court.ErrSessionExpired
	}

	if participantToken != "" && participantToken != sess.ParticipantToken(sender) {
		return court.Message{}, court.ErrForbidden
	}
	if sender == court.RoleB && !sess.UserBJoined {
		return court.Message{}, fmt.Errorf("%w: partner has not joined yet", court.ErrInvalidState)
	}

	recent, err := store.WithRetry(func() ([]court.Message, error) {
		return s.store.TailMessages(ctx, sessionID, 2)
	})
	if err != nil {
		return court.Message{}, err
	}
	if !turn.CanSend(s.policy, sess, recent, sender) {
		return court.Message{}, court.ErrNotYourTurn
	}

	return store.WithRetry(func() (court.Message, error) {
		return s.store.AppendMessage(ctx, sessionID, sender, content)
	})
}

// ListSince returns the session's messages newer than since (all when since
// is nil), ascending. This is the sole read path for full loads and polls.
func (s *Service) ListSince(ctx context.Context, sessionID string, since *time.Time) ([]court.Message, error) {
	sess, err := store.WithRetry(func() (court.Session, error) {
		return s.store.SessionByID(ctx, sessionID)
	})
	if err != nil {
		return nil, err
	}
	if sess.Expired(s.now()) {
		return nil, court.ErrSessionExpired
	}

	return store.WithRetry(func() ([]court.Message, error) {
		return s.store.MessagesSince(ctx, sessionID, since)
	})
}
