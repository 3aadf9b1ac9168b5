package app

import (
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"example/chess-history/app/config"
)

const testBase = "https://api.chess.com/pub"

type mockResp struct {
	status int
	body   string
}

type mockRoundTripper struct {
	mu        sync.Mutex
	responses map[string][]mockResp
	requests  []*http.Request
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)
	list, ok := m.responses[req.URL.String()]
	if !ok || len(list) == 0 {
		return nil, io.ErrUnexpectedEOF
	}
	resp := list[0]
	m.responses[req.URL.String()] = list[1:]

	return &http.Response{
		StatusCode: resp.status,
		Body:       io.NopCloser(strings.NewReader(resp.body)),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}

func (m *mockRoundTripper) hits(url string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.requests {
		if r.URL.String() == url {
			n++
		}
	}
	return n
}

func newMockClient(t *testing.T, responses map[string][]mockResp) (*ChessClient, *mockRoundTripper) {
	t.Helper()
	rt := &mockRoundTripper{responses: responses}
	c := NewChessClient(config.ChessComConfig{
		BaseURL:   testBase,
		UserAgent: "chess-history-test/1.0 (contact: test@example.com)",
	}, &http.Client{Transport: rt})
	return c, rt
}

func okResp(body string) []mockResp { return []mockResp{{status: http.StatusOK, body: body}} }
