package cloudintegration

import (
	"net/http"
)

// headerRoundTripper adds fixed headers to every request before handing it to the
// underlying transport.
type headerRoundTripper struct {
	headers   map[string]string
	transport http.RoundTripper
}

func newHeaderRoundTripper(headers map[string]string, transport http.RoundTripper) *headerRoundTripper {
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &headerRoundTripper{
		headers:   headers,
		transport: transport,
	}
}

func (h *headerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrippers must not modify the caller's request
	req = req.Clone(req.Context())
	for key, value := range h.headers {
		req.Header.Set(key, value)
	}

	return h.transport.RoundTrip(req)
}
