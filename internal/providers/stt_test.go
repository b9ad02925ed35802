package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestTranscribeSuccess(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("not multipart: %v", err)
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("missing file field: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"transcript": "schedule a meeting tomorrow at 2pm"}`))
	}))
	defer srv.Close()

	tr := NewTranscriber(srv.URL, "key-1", "whisper-1")
	got, err := tr.Transcribe(context.Background(), strings.NewReader("fake-ogg-bytes"), "voice.ogg")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if got != "schedule a meeting tomorrow at 2pm" {
		t.Errorf("transcript = %q", got)
	}
	if gotPath != "/transcribe_audio" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer key-1" {
		t.Errorf("auth = %q", gotAuth)
	}
}

func TestTranscribeUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	tr := NewTranscriber(srv.URL, "", "")
	if _, err := tr.Transcribe(context.Background(), strings.NewReader("x"), "a.ogg"); err == nil {
		t.Fatal("expected error on 503")
	}
}

func TestTranscribeNotConfigured(t *testing.T) {
	tr := NewTranscriber("", "", "")
	if tr.Enabled() {
		t.Error("empty endpoint must report disabled")
	}
	got, err := tr.Transcribe(context.Background(), strings.NewReader("x"), "a.ogg")
	if err != nil || got != "" {
		t.Errorf("unconfigured transcriber must skip silently, got %q, %v", got, err)
	}
}
