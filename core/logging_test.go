package core

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestLogRequests_AssignsRequestID(t *testing.T) {
	var logs bytes.Buffer
	logger := NewLogger("dev", Config{DebugLogs: true}, &logs)

	var seen string
	h := LogRequests(logger, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("hi"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/params", nil))

	id := rec.Header().Get("X-Request-Id")
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("expected uuid request id, got %q", id)
	}
	if seen != id {
		t.Errorf("handler saw id %q, header has %q", seen, id)
	}

	line := logs.String()
	for _, want := range []string{"path=/params", "status=201", "bytes=2", "id=" + id} {
		if !strings.Contains(line, want) {
			t.Errorf("expected %q in log line, got: %s", want, line)
		}
	}
}

func TestLogRequests_KeepsIncomingID(t *testing.T) {
	logger := NewLogger("prod", Config{}, &bytes.Buffer{})
	h := LogRequests(logger, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-Id"); got != "abc-123" {
		t.Errorf("expected incoming id to be kept, got %q", got)
	}
}

func TestNewLogger_ProdWritesJSON(t *testing.T) {
	var logs bytes.Buffer
	NewLogger("prod", Config{}, &logs).Info("hello", "k", "v")

	if !strings.HasPrefix(logs.String(), "{") || !strings.Contains(logs.String(), `"k":"v"`) {
		t.Errorf("expected JSON log line, got: %s", logs.String())
	}
}

func TestNewLogger_DebugOnlyWhenEnabled(t *testing.T) {
	var logs bytes.Buffer
	NewLogger("dev", Config{}, &logs).Debug("hidden")
	if logs.Len() != 0 {
		t.Errorf("expected debug to be filtered, got: %s", logs.String())
	}
}

func TestStatusRecorder_DefaultsTo200(t *testing.T) {
	rec := &statusRecorder{ResponseWriter: httptest.NewRecorder()}
	if rec.Status() != http.StatusOK {
		t.Errorf("expected 200 before any write, got %d", rec.Status())
	}
	rec.WriteHeader(http.StatusTeapot)
	rec.WriteHeader(http.StatusOK)
	if rec.Status() != http.StatusTeapot {
		t.Errorf("expected first status to stick, got %d", rec.Status())
	}
}
