//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"io"
	"net/http"
	"strings"
)

// StubResponse is one canned answer of a StubRoundTripper.
type StubResponse struct {
	StatusCode int
	Header     http.Header
	Body       string
	Err        error
}

// StubRoundTripper replays canned responses in order and records every
// request it receives. The last response repeats once the queue is drained.
type StubRoundTripper struct {
	Responses []StubResponse
	Requests  []*http.Request
}

var _ http.RoundTripper = (*StubRoundTripper)(nil)

func (s *StubRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	s.Requests = append(s.Requests, req)

	index := len(s.Requests) - 1
	if index >= len(s.Responses) {
		index = len(s.Responses) - 1
	}
	canned := s.Responses[index]
	if canned.Err != nil {
		return nil, canned.Err
	}

	header := canned.Header
	if header == nil {
		header = make(http.Header)
	}
	return &http.Response{
		StatusCode: canned.StatusCode,
		Header:     header.Clone(),
		Body:       io.NopCloser(strings.NewReader(canned.Body)),
		Request:    req,
	}, nil
}

// Redirect builds a canned redirect response to location.
func Redirect(status int, location string) StubResponse {
	return StubResponse{StatusCode: status, Header: http.Header{"Location": []string{location}}}
}
