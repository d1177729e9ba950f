package webhook

import (
	"net"
	"net/http"
	"time"
)

const (
	// ClientTimeout is the total request timeout.
	ClientTimeout = 30 * time.Second
	// DialTimeout is the connection timeout.
	DialTimeout = 10 * time.Second
	// TLSHandshakeTimeout is the TLS negotiation timeout.
	TLSHandshakeTimeout = 10 * time.Second
	// ResponseHeaderTimeout is time to wait for response headers.
	ResponseHeaderTimeout = 15 * time.Second
)

// NewHTTPClient creates an HTTP client configured for fixture delivery.
// It has appropriate timeouts and does not follow redirects.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Timeout: ClientTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   DialTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   TLSHandshakeTimeout,
			ResponseHeaderTimeout: ResponseHeaderTimeout,
			MaxIdleConns:          10,
			MaxIdleConnsPerHost:   2,
			IdleConnTimeout:       90 * time.Second,
			DisableCompression:    false,
		},
		// Don't follow redirects - security measure
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// HeaderNames for fixture replay requests.
const (
	HeaderSignature = "X-Threadline-Signature"
	HeaderTimestamp = "X-Threadline-Timestamp"
	HeaderFixture   = "X-Threadline-Fixture"
)

// setReplayHeaders applies the replay headers to an HTTP request.
// Signature headers are only set when a signing secret is configured.
func setReplayHeaders(req *http.Request, fixtureName, signature string, timestamp int64) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Threadline-FixtureReplay/1.0")
	req.Header.Set(HeaderFixture, fixtureName)
	if signature != "" {
		req.Header.Set(HeaderSignature, signature)
		req.Header.Set(HeaderTimestamp, formatTimestamp(timestamp))
	}
}
