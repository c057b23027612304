package asr

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"voicekey/internal/config"
)

func writeUpload(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "RecordTemp_test.wav")
	if err := os.WriteFile(p, []byte("test"), 0644); err != nil {
		t.Fatalf("write temp file failed: %v", err)
	}
	return p
}

func testConfig(url string) config.Config {
	cfg := config.DefaultConfig()
	cfg.STTBackend = "http"
	cfg.APIEndpoint = url
	cfg.TEXTPath = "text"
	cfg.MaxRetry = 2
	cfg.RetryBaseDelay = 0
	cfg.RequestTimeout = 2
	return cfg
}

func TestTranscribeRetryExhaustedError(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("fail"))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	client, err := New(cfg, &http.Client{Timeout: time.Second}, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, err = client.Transcribe(context.Background(), writeUpload(t))
	if err == nil {
		t.Fatalf("expected error")
	}

	var re *RetryExhaustedError
	if !errors.As(err, &re) {
		t.Fatalf("expected RetryExhaustedError, got %T: %v", err, err)
	}
	if re.Attempts != cfg.MaxRetry || re.MaxRetry != cfg.MaxRetry {
		t.Fatalf("expected %d attempts, got %+v", cfg.MaxRetry, re)
	}
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusInternalServerError {
		t.Fatalf("expected wrapped StatusError 500, got %v", err)
	}
	if hits.Load() != int32(cfg.MaxRetry) {
		t.Fatalf("expected %d requests, got %d", cfg.MaxRetry, hits.Load())
	}
}

func TestTranscribeSuccessAfterRetry(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("authorization header = %q", got)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.FormValue("model") != "whisper-1" || r.FormValue("temperature") != "0.2" {
			t.Errorf("unexpected fields: %v", r.MultipartForm.Value)
		}
		if _, ok := r.MultipartForm.Value["language"]; ok {
			t.Errorf("auto language must not be sent")
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("missing file part: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":{"text":"  hello world "}}`))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.TEXTPath = "result.text"
	cfg.Token = "secret"
	cfg.APIModel = "whisper-1"
	cfg.ExtraConfig = `{"temperature":0.2}`
	cfg.MaxRetry = 3

	client, err := New(cfg, nil, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	text, err := client.Transcribe(context.Background(), writeUpload(t))
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if text != "hello world" {
		t.Fatalf("unexpected text %q", text)
	}
	if hits.Load() != 2 {
		t.Fatalf("expected 2 requests, got %d", hits.Load())
	}
}

func TestNewRejectsBadExtraConfig(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.ExtraConfig = "{not json"
	if _, err := New(cfg, nil, nil); err == nil {
		t.Fatalf("expected error for invalid extra config")
	}
	cfg = testConfig("")
	if _, err := New(cfg, nil, nil); err == nil {
		t.Fatalf("expected error for empty endpoint")
	}
}

func TestFormatResponse(t *testing.T) {
	if got := formatResponse(nil); got != "<empty>" {
		t.Fatalf("got %q", got)
	}
	if got := formatResponse([]byte{0xff, 0x00}); got != "<binary 2 bytes, hex: ff00>" {
		t.Fatalf("got %q", got)
	}
}
