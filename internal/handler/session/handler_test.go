package session

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/whimsylab/couplescourt/internal/model/court"
	sessionservice "github.com/whimsylab/couplescourt/internal/service/session"
	"github.com/whimsylab/couplescourt/internal/store"
)

func setupRouter() (*chi.Mux, *store.Memory) {
	st := store.NewMemory()
	svc := sessionservice.NewService(st, 24*time.Hour)
	handler := New(svc, "http://localhost:3000")

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, st
}

func postJSON(r http.Handler, path string, body map[string]any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestCreateSession(t *testing.T) {
	r, _ := setupRouter()

	resp := postJSON(r, "/session", map[string]any{"creatorName": "Alex", "expirationHours": 24})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var body map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	for _, key := range []string{"sessionId", "inviteToken", "inviteUrl", "participantToken", "expiresAt"} {
		if body[key] == nil || body[key] == "" {
			t.Fatalf("response missing %s: %v", key, body)
		}
	}
	if body["creatorRole"] != "A" {
		t.Fatalf("unexpected creator role: %v", body["creatorRole"])
	}
}

func TestCreateSessionMissingName(t *testing.T) {
	r, _ := setupRouter()

	resp := postJSON(r, "/session", map[string]any{"creatorName": ""})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestGetSessionByInviteToken(t *testing.T) {
	r, _ := setupRouter()

	created := postJSON(r, "/session", map[string]any{"creatorName": "Alex"})
	var body struct {
		InviteToken string `json:"inviteToken"`
	}
	if err := json.Unmarshal(created.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode err: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/session?inviteToken="+body.InviteToken, nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var view struct {
		Messages    []court.Message    `json:"messages"`
		Resolutions []court.Resolution `json:"resolutions"`
		UserAToken  string             `json:"userAToken"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if view.Messages == nil || view.Resolutions == nil {
		t.Fatal("children must be present in the session payload")
	}
	if view.UserAToken != "" {
		t.Fatal("participant tokens must never appear in session payloads")
	}
}

func TestGetSessionUnknownToken(t *testing.T) {
	r, _ := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/session?inviteToken=nope", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestGetExpiredSession(t *testing.T) {
	r, st := setupRouter()

	past := time.Now().UTC().Add(-time.Hour)
	sess, err := st.CreateSession(context.Background(), court.Session{
		ID: uuid.NewString(), IsAnonymous: true, InviteToken: "expired-token",
		UserAName: "Alex", UserAJoined: true, ExpiresAt: &past,
	})
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/session?inviteToken="+sess.InviteToken, nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusGone {
		t.Fatalf("expected 410, got %d", resp.Code)
	}
}

func TestJoinFlowAndConflict(t *testing.T) {
	r, _ := setupRouter()

	created := postJSON(r, "/session", map[string]any{"creatorName": "Alex"})
	var body struct {
		InviteToken string `json:"inviteToken"`
	}
	if err := json.Unmarshal(created.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode err: %v", err)
	}

	first := postJSON(r, "/session/"+body.InviteToken+"/join", map[string]any{"partnerName": "Jamie"})
	if first.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", first.Code, first.Body.String())
	}
	var joined struct {
		PartnerRole      string `json:"partnerRole"`
		ParticipantToken string `json:"participantToken"`
	}
	if err := json.Unmarshal(first.Body.Bytes(), &joined); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if joined.PartnerRole != "B" || joined.ParticipantToken == "" {
		t.Fatalf("unexpected join payload: %+v", joined)
	}

	second := postJSON(r, "/session/"+body.InviteToken+"/join", map[string]any{"partnerName": "Casey"})
	if second.Code != http.StatusConflict {
		t.Fatalf("expected 409 on second join, got %d", second.Code)
	}
}
