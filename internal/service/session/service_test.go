package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/whimsylab/couplescourt/internal/model/court"
	sessionservice "github.com/whimsylab/couplescourt/internal/service/session"
	"github.com/whimsylab/couplescourt/internal/store"
)

func newService() (*sessionservice.Service, *store.Memory) {
	st := store.NewMemory()
	return sessionservice.NewService(st, 24*time.Hour), st
}

func TestCreateAnonymousRoundTripsToken(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	created, err := svc.CreateAnonymous(ctx, "Alex", 0)
	if err != nil {
		t.Fatalf("CreateAnonymous err: %v", err)
	}
	if !created.Session.UserAJoined || created.Session.UserBJoined {
		t.Fatalf("unexpected join flags: %+v", created.Session)
	}
	if created.ParticipantToken == "" {
		t.Fatal("creator should receive a participant token")
	}
	if created.Session.ExpiresAt == nil {
		t.Fatal("anonymous sessions must carry an expiry")
	}

	got, err := svc.ByInviteToken(ctx, created.Session.InviteToken)
	if err != nil {
		t.Fatalf("ByInviteToken err: %v", err)
	}
	if got.ID != created.Session.ID {
		t.Fatalf("token resolved to wrong session: %s", got.ID)
	}
}

func TestCreateAnonymousRejectsBlankName(t *testing.T) {
	svc, _ := newService()

	if _, err := svc.CreateAnonymous(context.Background(), "   ", 0); !errors.Is(err, court.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestJoinBindsPartnerExactlyOnce(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	created, err := svc.CreateAnonymous(ctx, "Alex", 0)
	if err != nil {
		t.Fatalf("CreateAnonymous err: %v", err)
	}

	joined, err := svc.Join(ctx, created.Session.InviteToken, "Jamie")
	if err != nil {
		t.Fatalf("Join err: %v", err)
	}
	if !joined.View.UserBJoined || joined.View.UserBName != "Jamie" {
		t.Fatalf("partner not bound: %+v", joined.View.Session)
	}
	if joined.ParticipantToken == "" {
		t.Fatal("partner should receive a participant token")
	}

	if _, err := svc.Join(ctx, created.Session.InviteToken, "Casey"); !errors.Is(err, court.ErrSessionFull) {
		t.Fatalf("second join should fail ErrSessionFull, got %v", err)
	}
}

func TestJoinRejectsNonAnonymousSession(t *testing.T) {
	svc, st := newService()
	ctx := context.Background()

	_, err := st.CreateSession(ctx, court.Session{
		ID:          uuid.NewString(),
		UserAID:     "user-a",
		UserBID:     "user-b",
		InviteToken: "identified-token",
		UserAJoined: true,
	})
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	if _, err := svc.Join(ctx, "identified-token", "Jamie"); !errors.Is(err, court.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestJoinUnknownToken(t *testing.T) {
	svc, _ := newService()

	if _, err := svc.Join(context.Background(), "no-such-token", "Jamie"); !errors.Is(err, court.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestExpiredSessionSurfacesOnEveryReadPath(t *testing.T) {
	svc, st := newService()
	ctx := context.Background()

	past := time.Now().UTC().Add(-time.Hour)
	sess, err := st.CreateSession(ctx, court.Session{
		ID:          uuid.NewString(),
		IsAnonymous: true,
		InviteToken: uuid.NewString(),
		UserAName:   "Alex",
		UserAJoined: true,
		ExpiresAt:   &past,
	})
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	if _, err := svc.ByID(ctx, sess.ID); !errors.Is(err, court.ErrSessionExpired) {
		t.Fatalf("ByID: expected ErrSessionExpired, got %v", err)
	}
	if _, err := svc.ByInviteToken(ctx, sess.InviteToken); !errors.Is(err, court.ErrSessionExpired) {
		t.Fatalf("ByInviteToken: expected ErrSessionExpired, got %v", err)
	}
	if _, err := svc.ViewByID(ctx, sess.ID); !errors.Is(err, court.ErrSessionExpired) {
		t.Fatalf("ViewByID: expected ErrSessionExpired, got %v", err)
	}
	if _, err := svc.Join(ctx, sess.InviteToken, "Jamie"); !errors.Is(err, court.ErrSessionExpired) {
		t.Fatalf("Join: expected ErrSessionExpired, got %v", err)
	}
}

func TestViewLoadsOrderedChildren(t *testing.T) {
	svc, st := newService()
	ctx := context.Background()

	created, err := svc.CreateAnonymous(ctx, "Alex", 0)
	if err != nil {
		t.Fatalf("CreateAnonymous err: %v", err)
	}
	if _, err := svc.Join(ctx, created.Session.InviteToken, "Jamie"); err != nil {
		t.Fatalf("Join err: %v", err)
	}
	for _, m := range []struct {
		sender  court.Role
		content string
	}{{court.RoleA, "I felt hurt"}, {court.RoleB, "I'm sorry"}} {
		if _, err := st.AppendMessage(ctx, created.Session.ID, m.sender, m.content); err != nil {
			t.Fatalf("AppendMessage err: %v", err)
		}
	}

	view, err := svc.ViewByID(ctx, created.Session.ID)
	if err != nil {
		t.Fatalf("ViewByID err: %v", err)
	}
	if len(view.Messages) != 2 || view.Messages[0].Content != "I felt hurt" {
		t.Fatalf("messages not loaded ascending: %+v", view.Messages)
	}
	if view.Resolutions == nil {
		t.Fatal("resolutions should be an empty slice, not nil, for JSON shape")
	}
}
