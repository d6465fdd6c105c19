package httphandlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go2tv.app/trackstate/tracks"
	"go2tv.app/trackstate/transport"
)

func sampleTracks(t *testing.T) tracks.Tracks {
	t.Helper()

	f := tracks.UnknownFormat()
	f.ID = "0"
	f.SampleMIME = "video/avc"
	f.Width, f.Height = 1280, 720

	tg, err := tracks.NewTrackGroup("0", f)
	if err != nil {
		t.Fatalf("NewTrackGroup: %v", err)
	}
	g, err := tracks.NewGroup(tg, false, []tracks.FormatSupport{tracks.FormatHandled}, []bool{true})
	if err != nil {
		t.Fatalf("NewGroup: %v", err)
	}
	return tracks.New([]tracks.Group{g})
}

func get(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestTracksHandler(t *testing.T) {
	s := NewServer(":0", 0, nil)
	defer s.StopServer()

	rec := get(t, s.Handler(), http.MethodGet, transport.TracksPath)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	snap, err := transport.Decode(rec.Body.Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !snap.Tracks.IsEmpty() {
		t.Errorf("initial snapshot = %v, expected empty", snap.Tracks)
	}

	want := sampleTracks(t)
	if err := s.Publish(want); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if !s.Current().Equal(want) {
		t.Error("Current does not reflect the published tracks")
	}

	rec = get(t, s.Handler(), http.MethodGet, transport.TracksPath)
	snap, err = transport.Decode(rec.Body.Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !snap.Tracks.Equal(want) {
		t.Errorf("served %v, expected %v", snap.Tracks, want)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestTracksHandlerMethods(t *testing.T) {
	s := NewServer(":0", 0, nil)
	defer s.StopServer()

	tests := []struct {
		name     string
		method   string
		expected int
	}{
		{name: "head", method: http.MethodHead, expected: http.StatusOK},
		{name: "post", method: http.MethodPost, expected: http.StatusMethodNotAllowed},
		{name: "delete", method: http.MethodDelete, expected: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := get(t, s.Handler(), tt.method, transport.TracksPath); rec.Code != tt.expected {
				t.Errorf("status = %d, expected %d", rec.Code, tt.expected)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	s := NewServer(":0", 1, nil)
	defer s.StopServer()

	if rec := get(t, s.Handler(), http.MethodGet, transport.TracksPath); rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d", rec.Code)
	}

	rec := get(t, s.Handler(), http.MethodGet, transport.TracksPath)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, expected 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("429 without Retry-After")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := NewServer(":0", 0, nil)
	defer s.StopServer()

	if err := s.Publish(sampleTracks(t)); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	get(t, s.Handler(), http.MethodGet, transport.TracksPath)

	rec := get(t, s.Handler(), http.MethodGet, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	body, _ := io.ReadAll(rec.Body)
	for _, name := range []string{
		"trackstate_snapshots_published_total",
		"trackstate_snapshot_groups 1",
		`trackstate_http_requests_total{path="/tracks",status="200"}`,
	} {
		if !strings.Contains(string(body), name) {
			t.Errorf("metrics output is missing %q", name)
		}
	}
}

func TestWebsocketPush(t *testing.T) {
	s := NewServer(":0", 0, nil)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()
	defer s.StopServer()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	received := make(chan transport.Snapshot, 4)
	done := make(chan error, 1)
	go func() {
		done <- transport.Watch(ctx, transport.WatchURL(ts.URL), func(snap transport.Snapshot) {
			received <- snap
		}, nil)
	}()

	select {
	case snap := <-received:
		if !snap.Tracks.IsEmpty() {
			t.Fatalf("first pushed snapshot = %v, expected empty", snap.Tracks)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for the initial snapshot")
	}

	want := sampleTracks(t)
	if err := s.Publish(want); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case snap := <-received:
		if !snap.Tracks.Equal(want) {
			t.Errorf("pushed %v, expected %v", snap.Tracks, want)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for the published snapshot")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch returned %v after cancel", err)
	}
}

func TestStartServer(t *testing.T) {
	s := NewServer("127.0.0.1:0", 0, io.Discard)

	started := make(chan error, 1)
	go s.StartServer(started)

	if err := <-started; err != nil {
		t.Fatalf("StartServer: %v", err)
	}
	s.StopServer()
}

func TestStartServerListenError(t *testing.T) {
	s := NewServer("256.0.0.1:bad", 0, nil)
	defer s.StopServer()

	started := make(chan error, 1)
	go s.StartServer(started)

	if err := <-started; err == nil {
		t.Fatal("expected listen error")
	}
}
