package verdict_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/whimsylab/couplescourt/internal/analysis/verdict"
	"github.com/whimsylab/couplescourt/internal/model/court"
)

const validPayload = `{
  "verdict": "Both of you are talking past each other.",
  "explanation": "A feels unheard, B feels attacked.",
  "compromise": "Agree on a weekly check-in.",
  "userATone": {"tone": "hurt", "emotion": "sadness", "intensity": 6},
  "userBTone": {"tone": "defensive", "emotion": "frustration", "intensity": 5},
  "reasonableness": {"userA": 7, "userB": 6, "analysis": "A slightly more reasonable"}
}`

func TestParseExtractsPayloadFromSurroundingProse(t *testing.T) {
	raw := "Sure! Here's my analysis:\n```json\n" + validPayload + "\n```\nHope this helps."

	a, err := verdict.Parse(raw)
	if err != nil {
		t.Fatalf("Parse err: %v", err)
	}
	if a.Verdict == "" || a.Compromise == "" {
		t.Fatalf("fields lost in parsing: %+v", a)
	}
	if a.UserATone.Tone != court.ToneHurt || a.UserBTone.Tone != court.ToneDefensive {
		t.Fatalf("unexpected tones: %+v", a)
	}
}

func TestParseNormalizesToneCase(t *testing.T) {
	raw := strings.Replace(validPayload, `"tone": "hurt"`, `"tone": "Hurt"`, 1)

	a, err := verdict.Parse(raw)
	if err != nil {
		t.Fatalf("Parse err: %v", err)
	}
	if a.UserATone.Tone != court.ToneHurt {
		t.Fatalf("tone not normalized: %q", a.UserATone.Tone)
	}
}

func TestParseHandlesBracesInsideStrings(t *testing.T) {
	raw := strings.Replace(validPayload,
		"Both of you are talking past each other.",
		"Watch out for {curly} remarks :}", 1)

	if _, err := verdict.Parse("preamble " + raw + " postamble"); err != nil {
		t.Fatalf("braces inside strings broke extraction: %v", err)
	}
}

func TestParseNoJSON(t *testing.T) {
	_, err := verdict.Parse("I'm sorry, I can't analyze that conversation.")
	if !errors.Is(err, court.ErrMalformedAnalysis) {
		t.Fatalf("expected ErrMalformedAnalysis, got %v", err)
	}
}

func TestParseRejectsUnknownTone(t *testing.T) {
	raw := strings.Replace(validPayload, `"tone": "hurt"`, `"tone": "sarcastic"`, 1)

	if _, err := verdict.Parse(raw); !errors.Is(err, court.ErrMalformedAnalysis) {
		t.Fatalf("expected ErrMalformedAnalysis, got %v", err)
	}
}

func TestParseRejectsOutOfScaleIntensity(t *testing.T) {
	raw := strings.Replace(validPayload, `"intensity": 6`, `"intensity": 14`, 1)

	if _, err := verdict.Parse(raw); !errors.Is(err, court.ErrMalformedAnalysis) {
		t.Fatalf("expected ErrMalformedAnalysis, got %v", err)
	}
}

func TestParseRejectsMissingVerdict(t *testing.T) {
	raw := strings.Replace(validPayload, "Both of you are talking past each other.", "  ", 1)

	if _, err := verdict.Parse(raw); !errors.Is(err, court.ErrMalformedAnalysis) {
		t.Fatalf("expected ErrMalformedAnalysis, got %v", err)
	}
}

func TestTranscriptUsesDisplayNames(t *testing.T) {
	sess := court.Session{UserAName: "Alex", UserAJoined: true, UserBJoined: true}
	msgs := []court.Message{
		{Sender: court.RoleA, Content: "I felt hurt"},
		{Sender: court.RoleB, Content: "I'm sorry"},
	}

	got := verdict.Transcript(sess, msgs)
	want := "Alex: I felt hurt\nUser B: I'm sorry"
	if got != want {
		t.Fatalf("transcript mismatch:\n got %q\nwant %q", got, want)
	}
}
