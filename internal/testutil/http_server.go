package testutil

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
)

// loopback4 is where every test server listens. Sandboxed CI runners often
// lack an IPv6 loopback, which httptest would otherwise try first.
const loopback4 = "127.0.0.1:0"

func serve(ln net.Listener, handler http.Handler) *httptest.Server {
	srv := &httptest.Server{
		Listener: ln,
		Config:   &http.Server{Handler: handler},
	}
	srv.Start()
	return srv
}

// NewHTTPServer starts handler on an IPv4 loopback port, falling back to
// httptest's default listener when tcp4 is unavailable.
func NewHTTPServer(handler http.Handler) *httptest.Server {
	ln, err := net.Listen("tcp4", loopback4)
	if err != nil {
		return httptest.NewServer(handler)
	}
	return serve(ln, handler)
}

// NewHTTPServerT is NewHTTPServer for tests: it skips t when no port can be
// bound and closes the server during cleanup.
func NewHTTPServerT(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	ln, err := net.Listen("tcp4", loopback4)
	if err != nil {
		t.Skipf("tcp4 listener unavailable: %v", err)
		return nil
	}
	srv := serve(ln, handler)
	t.Cleanup(srv.Close)
	return srv
}
