// Package session implements session creation, lookup and the invite/join
// protocol. Expiry is enforced lazily on every read path.
package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/whimsylab/couplescourt/internal/model/court"
	"github.com/whimsylab/couplescourt/internal/store"
)

// Service encapsulates session lifecycle operations over the store.
type Service struct {
	store      store.Store
	defaultTTL time.Duration
	now        func() time.Time
}

// NewService wires the session service to a store with a default TTL for
// anonymous sessions.
func NewService(st store.Store, defaultTTL time.Duration) *Service {
	return &Service{
		store:      st,
		defaultTTL: defaultTTL,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Created is the outcome of CreateAnonymous: the session plus the creator's
// one-time participant token.
type Created struct {
	Session          court.Session
	ParticipantToken string
}

// CreateAnonymous provisions an anonymous session with the creator bound to
// role A and already joined. A non-positive ttl falls back to the default.
func (s *Service) CreateAnonymous(ctx context.Context, creatorName string, ttl time.Duration) (Created, error) {
	creatorName = strings.TrimSpace(creatorName)
	if creatorName == "" {
		return Created{}, fmt.Errorf("%w: creator name is required", court.ErrValidation)
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	expiresAt := s.now().Add(ttl)
	sess := court.Session{
		ID:          uuid.NewString(),
		IsAnonymous: true,
		InviteToken: uuid.NewString(),
		UserAName:   creatorName,
		UserAJoined: true,
		UserAToken:  uuid.NewString(),
		ExpiresAt:   &expiresAt,
		CreatedAt:   s.now(),
	}

	created, err := store.WithRetry(func() (court.Session, error) {
		return s.store.CreateSession(ctx, sess)
	})
	if err != nil {
		return Created{}, err
	}
	return Created{Session: created, ParticipantToken: created.UserAToken}, nil
}

// ByID returns the session, surfacing Expired for stale sessions instead of
// a structurally-valid body.
func (s *Service) ByID(ctx context.Context, id string) (court.Session, error) {
	sess, err := store.WithRetry(func() (court.Session, error) {
		return s.store.SessionByID(ctx, id)
	})
	if err != nil {
		return court.Session{}, err
	}
	return s.checkExpiry(sess)
}

// ByInviteToken returns the session addressed by its invite token.
func (s *Service) ByInviteToken(ctx context.Context, token string) (court.Session, error) {
	sess, err := store.WithRetry(func() (court.Session, error) {
		return s.store.SessionByInviteToken(ctx, token)
	})
	if err != nil {
		return court.Session{}, err
	}
	return s.checkExpiry(sess)
}

// View is a session with its children eagerly loaded: messages ascending,
// resolutions most-recent-first.
type View struct {
	court.Session
	Messages    []court.Message    `json:"messages"`
	Resolutions []court.Resolution `json:"resolutions"`
}

// ViewByID loads a session with its ordered children.
func (s *Service) ViewByID(ctx context.Context, id string) (View, error) {
	sess, err := s.ByID(ctx, id)
	if err != nil {
		return View{}, err
	}
	return s.loadChildren(ctx, sess)
}

// ViewByInviteToken loads a session by token with its ordered children.
func (s *Service) ViewByInviteToken(ctx context.Context, token string) (View, error) {
	sess, err := s.ByInviteToken(ctx, token)
	if err != nil {
		return View{}, err
	}
	return s.loadChildren(ctx, sess)
}

// Joined is the outcome of Join: the updated session view plus the
// partner's one-time participant token.
type Joined struct {
	View             View
	ParticipantToken string
}

// Join binds the partner to role B exactly once. The store performs the
// check-and-set; a concurrent second join observes ErrSessionFull.
func (s *Service) Join(ctx context.Context, inviteToken, partnerName string) (Joined, error) {
	partnerName = strings.TrimSpace(partnerName)
	if partnerName == "" {
		return Joined{}, fmt.Errorf("%w: partner name is required", court.ErrValidation)
	}

	sess, err := store.WithRetry(func() (court.Session, error) {
		return s.store.SessionByInviteToken(ctx, inviteToken)
	})
	if err != nil {
		return Joined{}, err
	}
	if !sess.IsAnonymous {
		return Joined{}, fmt.Errorf("%w: not an anonymous session", court.ErrInvalidState)
	}
	if sess.Expired(s.now()) {
		return Joined{}, court.ErrSessionExpired
	}
	if sess.UserBJoined {
		return Joined{}, court.ErrSessionFull
	}

	partnerToken := uuid.NewString()
	bound, err := store.WithRetry(func() (court.Session, error) {
		return s.store.BindPartner(ctx, inviteToken, partnerName, partnerToken)
	})
	if err != nil {
		return Joined{}, err
	}

	view, err := s.loadChildren(ctx, bound)
	if err != nil {
		return Joined{}, err
	}
	return Joined{View: view, ParticipantToken: partnerToken}, nil
}

func (s *Service) checkExpiry(sess court.Session) (court.Session, error) {
	if sess.Expired(s.now()) {
		return court.Session{}, court.ErrSessionExpired
	}
	return sess, nil
}

func (s *Service) loadChildren(ctx context.Context, sess court.Session) (View, error) {
	msgs, err := store.WithRetry(func() ([]court.Message, error) {
		return s.store.MessagesSince(ctx, sess.ID, nil)
	})
	if err != nil {
		return View{}, err
	}

	resolutions, err := store.WithRetry(func() ([]court.Resolution, error) {
		return s.store.ResolutionsBySession(ctx, sess.ID)
	})
	if err != nil {
		return View{}, err
	}

	// Keep empty slices non-nil so the JSON shape is stable across stores.
	if msgs == nil {
		msgs = []court.Message{}
	}
	if resolutions == nil {
		resolutions = []court.Resolution{}
	}
	return View{Session: sess, Messages: msgs, Resolutions: resolutions}, nil
}
