// Package store defines the durable repository contract for sessions,
// messages and resolutions, with in-memory and sqlite implementations.
package store

import (
	"context"
	"time"

	"github.com/whimsylab/couplescourt/internal/model/court"
)

// Store is the repository interface every backend implements. Expiry is a
// read-time concern handled by the services; stores only guarantee
// existence checks, ordering, and the join-once conditional update.
type Store interface {
	// CreateSession persists a fully-formed session record.
	CreateSession(ctx context.Context, s court.Session) (court.Session, error)

	// SessionByID returns the session or court.ErrSessionNotFound.
	SessionByID(ctx context.Context, id string) (court.Session, error)

	// SessionByInviteToken returns the session or court.ErrSessionNotFound.
	SessionByInviteToken(ctx context.Context, token string) (court.Session, error)

	// BindPartner atomically binds role B iff the slot is still open. It is
	// a single conditional update: concurrent calls must yield exactly one
	// success, the rest court.ErrSessionFull.
	BindPartner(ctx context.Context, inviteToken, partnerName, partnerToken string) (court.Session, error)

	// AppendMessage persists a message with a store-assigned id, sequence
	// number and timestamp. Timestamps never go backward within a session.
	AppendMessage(ctx context.Context, sessionID string, sender court.Role, content string) (court.Message, error)

	// MessagesSince returns the session's messages with CreatedAt strictly
	// after since (all messages when since is nil), ascending.
	MessagesSince(ctx context.Context, sessionID string, since *time.Time) ([]court.Message, error)

	// TailMessages returns at most the last n messages, ascending.
	TailMessages(ctx context.Context, sessionID string, n int) ([]court.Message, error)

	// CreateResolution persists a resolution record.
	CreateResolution(ctx context.Context, r court.Resolution) (court.Resolution, error)

	// ResolutionsBySession returns resolutions most-recent-first.
	ResolutionsBySession(ctx context.Context, sessionID string) ([]court.Resolution, error)
}
