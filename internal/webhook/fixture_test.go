package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func writeFixtureFile(t *testing.T, root, name, content string) {
	t.Helper()
	path := filepath.Join(root, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
}

func TestLoadFixture(t *testing.T) {
	root := t.TempDir()
	writeFixtureFile(t, root, "github/push.json", `{"ref": "refs/heads/main", "commits": []}`)
	writeFixtureFile(t, root, "broken.json", `{not json`)

	t.Run("valid fixture", func(t *testing.T) {
		f, err := LoadFixture(root, "github/push.json")
		if err != nil {
			t.Fatalf("LoadFixture() error = %v", err)
		}
		if f.Name != "github/push.json" {
			t.Errorf("Name = %q", f.Name)
		}
		if !json.Valid(f.Payload) {
			t.Error("payload is not valid JSON")
		}
	})

	t.Run("missing fixture", func(t *testing.T) {
		_, err := LoadFixture(root, "github/missing.json")
		if !errors.Is(err, ErrFixtureNotFound) {
			t.Errorf("error = %v, want ErrFixtureNotFound", err)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := LoadFixture(root, "broken.json")
		if !errors.Is(err, ErrFixtureNotJSON) {
			t.Errorf("error = %v, want ErrFixtureNotJSON", err)
		}
	})

	t.Run("rejects traversal", func(t *testing.T) {
		if _, err := LoadFixture(root, "../push.json"); err == nil {
			t.Error("expected error for parent traversal")
		}
		if _, err := LoadFixture(root, "/etc/passwd"); err == nil {
			t.Error("expected error for absolute path")
		}
	})

	t.Run("empty name", func(t *testing.T) {
		if _, err := LoadFixture(root, ""); err == nil {
			t.Error("expected error for empty name")
		}
	})
}

func TestReplayerReplay(t *testing.T) {
	root := t.TempDir()
	writeFixtureFile(t, root, "stripe/invoice.json", `{"id": "in_123", "amount_due": 900}`)

	fixture, err := LoadFixture(root, "stripe/invoice.json")
	if err != nil {
		t.Fatalf("LoadFixture() error = %v", err)
	}

	var gotHeaders http.Header
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	replayer := NewReplayer(srv.Client(), "whsec_test")
	result, err := replayer.Replay(context.Background(), fixture, srv.URL)
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	if result.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d", result.StatusCode)
	}
	if result.Body != `{"ok":true}` {
		t.Errorf("Body = %q", result.Body)
	}

	if ct := gotHeaders.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if gotHeaders.Get("X-Threadline-Fixture") != "stripe/invoice.json" {
		t.Errorf("X-Threadline-Fixture = %q", gotHeaders.Get("X-Threadline-Fixture"))
	}
	ts := gotHeaders.Get("X-Threadline-Timestamp")
	if ts == "" {
		t.Error("missing X-Threadline-Timestamp header")
	}
	sig := gotHeaders.Get("X-Threadline-Signature")
	if len(sig) != 64 {
		t.Errorf("signature length = %d, want 64", len(sig))
	}

	if !json.Valid(gotBody) {
		t.Error("received body is not valid JSON")
	}
}

func TestReplayerUnsigned(t *testing.T) {
	root := t.TempDir()
	writeFixtureFile(t, root, "ping.json", `{"ping": true}`)

	fixture, err := LoadFixture(root, "ping.json")
	if err != nil {
		t.Fatalf("LoadFixture() error = %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Threadline-Signature") != "" {
			t.Error("unsigned replay should not set a signature header")
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	replayer := NewReplayer(srv.Client(), "")
	result, err := replayer.Replay(context.Background(), fixture, srv.URL)
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	if result.StatusCode != http.StatusNoContent {
		t.Errorf("StatusCode = %d", result.StatusCode)
	}
}
