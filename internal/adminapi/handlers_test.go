package adminapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type fakeStats struct{ s Stats }

func (f fakeStats) Stats() Stats { return f.s }

func TestHandleHealthz(t *testing.T) {
	srv := NewServer(fakeStats{}, func() {})
	r := NewRouter(srv, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestHandleStats_NoAuthRequiredWhenKeyNil(t *testing.T) {
	want := Stats{ReadersActive: 4, EventsDecoded: 42}
	srv := NewServer(fakeStats{s: want}, func() {})
	r := NewRouter(srv, nil)

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got Stats
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestHandleStop_InvokesCallback(t *testing.T) {
	called := make(chan struct{}, 1)
	srv := NewServer(fakeStats{}, func() { called <- struct{}{} })
	r := NewRouter(srv, nil)

	req := httptest.NewRequest(http.MethodPost, "/admin/stop", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}
	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatal("stop callback was not invoked")
	}
}
