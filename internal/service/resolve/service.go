// Package resolve runs the resolution pipeline: validate preconditions,
// invoke the analysis capability, parse its response and persist a verdict.
// Either a complete resolution lands in the store or nothing does.
package resolve

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/whimsylab/couplescourt/internal/analysis/verdict"
	"github.com/whimsylab/couplescourt/internal/model/court"
	"github.com/whimsylab/couplescourt/internal/store"
)

// Analyzer is the external analysis capability. It is treated as unreliable
// and never retried here.
type Analyzer interface {
	Invoke(ctx context.Context, system, query string) (string, error)
}

// Service orchestrates one resolution request end to end.
type Service struct {
	store    store.Store
	analyzer Analyzer
	now      func() time.Time
}

// NewService wires the pipeline. analyzer may be nil when the capability is
// not configured; Resolve then fails with ErrAnalysisUnavailable.
func NewService(st store.Store, analyzer Analyzer) *Service {
	return &Service{
		store:    st,
		analyzer: analyzer,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CanAnalyze reports whether the transcript meets the analysis
// preconditions: at least two messages with both roles represented.
func CanAnalyze(msgs []court.Message) bool {
	if len(msgs) < 2 {
		return false
	}
	var sawA, sawB bool
	for _, m := range msgs {
		switch m.Sender {
		case court.RoleA:
			sawA = true
		case court.RoleB:
			sawB = true
		}
	}
	return sawA && sawB
}

// Result is the full outcome of one resolution: the persisted record plus
// the structured analysis detail.
type Result struct {
	Resolution court.Resolution `json:"resolution"`
	Analysis   court.Analysis   `json:"analysis"`
}

// Resolve loads the transcript, invokes the analysis capability and
// persists a new resolution for the session.
func (s *Service) Resolve(ctx context.Context, sessionID string) (Result, error) {
	sess, err := store.WithRetry(func() (court.Session, error) {
		return s.store.SessionByID(ctx, sessionID)
	})
	if err != nil {
		return Result{}, err
	}
	if sess.Expired(s.now()) {
		return Result{}, court.ErrSessionExpired
	}

	msgs, err := store.WithRetry(func() ([]court.Message, error) {
		return s.store.MessagesSince(ctx, sessionID, nil)
	})
	if err != nil {
		return Result{}, err
	}

	// Re-validated here even though callers check first; their view of the
	// log may be stale.
	if !CanAnalyze(msgs) {
		return Result{}, fmt.Errorf("%w: need at least two messages with both sides represented", court.ErrUnready)
	}

	if s.analyzer == nil {
		return Result{}, fmt.Errorf("%w: not configured", court.ErrAnalysisUnavailable)
	}

	transcript := verdict.Transcript(sess, msgs)
	prompt := verdict.BuildPrompt(sess.DisplayName(court.RoleA), sess.DisplayName(court.RoleB), transcript)

	raw, err := s.analyzer.Invoke(ctx, verdict.SystemPrompt, prompt)
	if err != nil {
		return Result{}, err
	}

	analysis, err := verdict.Parse(raw)
	if err != nil {
		return Result{}, err
	}

	resolution := court.Resolution{
		ID:         uuid.NewString(),
		SessionID:  sessionID,
		Verdict:    analysis.Verdict,
		Compromise: analysis.Compromise,
		Analysis:   &analysis,
		CreatedAt:  s.now(),
	}
	resolution, err = store.WithRetry(func() (court.Resolution, error) {
		return s.store.CreateResolution(ctx, resolution)
	})
	if err != nil {
		return Result{}, err
	}

	log.Printf("[resolve] session=%s resolution=%s messages=%d", sessionID, resolution.ID, len(msgs))
	return Result{Resolution: resolution, Analysis: analysis}, nil
}
