package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Sentinel errors for fixture replay.
var (
	ErrFixtureNotFound = errors.New("fixture file does not exist")
	ErrFixtureNotJSON  = errors.New("fixture is not valid JSON")
)

// Fixture is a captured webhook payload loaded from disk.
type Fixture struct {
	Name    string // Path relative to the fixture root
	Payload []byte // Compact JSON body
}

// LoadFixture reads and validates a fixture file. The path is resolved
// against root; absolute paths and parent traversal are rejected so the
// tooling can only read from the configured fixture directory.
func LoadFixture(root, name string) (*Fixture, error) {
	if name == "" {
		return nil, fmt.Errorf("fixture name is required")
	}
	if filepath.IsAbs(name) || strings.Contains(name, "..") {
		return nil, fmt.Errorf("fixture path %q must be relative to the fixture root", name)
	}

	path := filepath.Join(root, name)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFixtureNotFound, path)
		}
		return nil, fmt.Errorf("read fixture: %w", err)
	}

	// Re-encode to validate and normalize the payload.
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrFixtureNotJSON, path)
	}
	payload, err := json.Marshal(decoded)
	if err != nil {
		return nil, fmt.Errorf("encode fixture: %w", err)
	}

	return &Fixture{Name: name, Payload: payload}, nil
}

// ReplayResult describes the endpoint's response to a replayed fixture.
type ReplayResult struct {
	StatusCode int
	Body       string
}

// Replayer posts fixtures to webhook endpoints.
type Replayer struct {
	client *http.Client
	secret string
	now    func() time.Time
}

// NewReplayer creates a Replayer. secret may be empty, in which case
// posts are sent unsigned.
func NewReplayer(client *http.Client, secret string) *Replayer {
	if client == nil {
		client = NewHTTPClient()
	}
	return &Replayer{
		client: client,
		secret: secret,
		now:    time.Now,
	}
}

// Replay posts the fixture payload to url as JSON.
func (r *Replayer) Replay(ctx context.Context, fixture *Fixture, url string) (*ReplayResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(fixture.Payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	timestamp := r.now().Unix()
	signature := ""
	if r.secret != "" {
		signature = GenerateSignature(r.secret, timestamp, fixture.Payload)
	}
	setReplayHeaders(req, fixture.Name, signature, timestamp)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post fixture: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return &ReplayResult{
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}, nil
}

// formatTimestamp renders a Unix timestamp for the replay headers.
func formatTimestamp(ts int64) string {
	return strconv.FormatInt(ts, 10)
}
