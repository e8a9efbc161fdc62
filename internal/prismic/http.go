package prismic

import (
	"net"
	"net/http"
	"time"

	"github.com/nDmitry/spacetravelling/internal/app"
)

var httpTransport = &http.Transport{
	Proxy: http.ProxyFromEnvironment,
	DialContext: (&net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 60 * time.Second,
	}).DialContext,
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     90 * time.Second,
	TLSHandshakeTimeout: 10 * time.Second,
	DisableCompression:  false,
}

// NewHTTPClient returns the HTTP client used for content API calls
func NewHTTPClient() *http.Client {
	return &http.Client{
		Transport: &loggingRoundTripper{inner: httpTransport},
		Timeout:   30 * time.Second,
	}
}

// loggingRoundTripper logs every outbound content API request
type loggingRoundTripper struct {
	inner http.RoundTripper
}

func (l *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	logger := app.Logger()
	start := time.Now()

	resp, err := l.inner.RoundTrip(req)

	if err != nil {
		logger.Error("Content API request failed",
			"method", req.Method,
			"url", redactURL(req),
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)

		return nil, err
	}

	logger.Debug("Content API request",
		"method", req.Method,
		"url", redactURL(req),
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return resp, nil
}

// redactURL hides the access token from logs
func redactURL(req *http.Request) string {
	u := *req.URL
	q := u.Query()

	if q.Has("access_token") {
		q.Set("access_token", "REDACTED")
		u.RawQuery = q.Encode()
	}

	return u.String()
}
