package message

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/whimsylab/couplescourt/internal/model/court"
	messageservice "github.com/whimsylab/couplescourt/internal/service/message"
	"github.com/whimsylab/couplescourt/internal/store"
	"github.com/whimsylab/couplescourt/internal/turn"
)

func setupRouter(t *testing.T) (*chi.Mux, court.Session) {
	t.Helper()
	st := store.NewMemory()
	svc := messageservice.NewService(st, turn.PolicyUnrestricted, 2000)
	handler := New(svc)

	sess, err := st.CreateSession(context.Background(), court.Session{
		ID: uuid.NewString(), IsAnonymous: true, InviteToken: uuid.NewString(),
		UserAName: "Alex", UserBName: "Jamie",
		UserAJoined: true, UserBJoined: true,
	})
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, sess
}

func post(r http.Handler, body map[string]any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/messages", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestAppendReturnsPersistedMessage(t *testing.T) {
	r, sess := setupRouter(t)

	resp := post(r, map[string]any{"sessionId": sess.ID, "sender": "A", "content": "I felt hurt"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var msg court.Message
	if err := json.Unmarshal(resp.Body.Bytes(), &msg); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if msg.ID == "" || msg.CreatedAt.IsZero() {
		t.Fatalf("append response missing authoritative fields: %+v", msg)
	}
}

func TestAppendValidation(t *testing.T) {
	r, sess := setupRouter(t)

	if resp := post(r, map[string]any{"sessionId": sess.ID, "sender": "A", "content": "   "}); resp.Code != http.StatusBadRequest {
		t.Fatalf("empty content: expected 400, got %d", resp.Code)
	}
	if resp := post(r, map[string]any{"sessionId": sess.ID, "sender": "X", "content": "hi"}); resp.Code != http.StatusBadRequest {
		t.Fatalf("bad sender: expected 400, got %d", resp.Code)
	}
	if resp := post(r, map[string]any{"sender": "A", "content": "hi"}); resp.Code != http.StatusBadRequest {
		t.Fatalf("missing session: expected 400, got %d", resp.Code)
	}
}

func TestAppendUnknownSession(t *testing.T) {
	r, _ := setupRouter(t)

	resp := post(r, map[string]any{"sessionId": "missing", "sender": "A", "content": "hi"})
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestListSinceFiltersByCursor(t *testing.T) {
	r, sess := setupRouter(t)

	for _, content := range []string{"first", "second"} {
		if resp := post(r, map[string]any{"sessionId": sess.ID, "sender": "A", "content": content}); resp.Code != http.StatusCreated {
			t.Fatalf("append failed: %d", resp.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/messages?sessionId="+sess.ID, nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var all []court.Message
	if err := json.Unmarshal(resp.Body.Bytes(), &all); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if len(all) != 2 || all[0].Content != "first" {
		t.Fatalf("unexpected feed: %+v", all)
	}

	cursor := all[0].CreatedAt.Format("2006-01-02T15:04:05.000000000Z07:00")
	req = httptest.NewRequest(http.MethodGet, "/messages?sessionId="+sess.ID+"&since="+cursor, nil)
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	var tail []court.Message
	if err := json.Unmarshal(resp.Body.Bytes(), &tail); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	for _, m := range tail {
		if !m.CreatedAt.After(all[0].CreatedAt) {
			t.Fatalf("cursor not applied: %+v", m)
		}
	}
}

func TestListSinceRejectsBadCursor(t *testing.T) {
	r, sess := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/messages?sessionId="+sess.ID+"&since=yesterday", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestFeedCarriesToneHints(t *testing.T) {
	r, sess := setupRouter(t)

	if resp := post(r, map[string]any{"sessionId": sess.ID, "sender": "A", "content": "I feel so hurt and alone"}); resp.Code != http.StatusCreated {
		t.Fatalf("append failed: %d", resp.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/messages?sessionId="+sess.ID, nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	var feed []struct {
		Tone string `json:"tone"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &feed); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if len(feed) != 1 || feed[0].Tone != "hurt" {
		t.Fatalf("expected a hurt tone hint, got %+v", feed)
	}
}
