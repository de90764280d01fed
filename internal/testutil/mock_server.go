// Package testutil provides testing utilities for the downloader.
package testutil

import (
	"crypto/rand"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// MockServer is a configurable HTTP test server for download testing.
type MockServer struct {
	Server *httptest.Server
	url    string

	// Configuration
	FileSize          int64         // Size of the served file
	ContentType       string        // Content-Type header value
	Filename          string        // Filename in Content-Disposition header
	RandomData        bool          // If true, serve random data; otherwise serve zeros
	Latency           time.Duration // Artificial latency before the response
	ByteLatency       time.Duration // Latency per 32KB chunk (simulates slow connection)
	FailAfterBytes    int64         // Drop the connection after this many bytes (0 = no fail)
	StatusCode        int           // Respond with this status and no body (0 = 200 with body)
	OmitContentLength bool          // Stream the body without declaring its length

	// Tracking
	RequestCount atomic.Int64
	BytesServed  atomic.Int64

	mu        sync.Mutex
	userAgent string

	// Internal
	data          []byte
	CustomHandler http.HandlerFunc
}

// MockServerOption is a function that configures a MockServer.
type MockServerOption func(*MockServer)

// WithHandler sets a custom request handler.
func WithHandler(h http.HandlerFunc) MockServerOption {
	return func(m *MockServer) {
		m.CustomHandler = h
	}
}

// WithFileSize sets the file size to serve.
func WithFileSize(size int64) MockServerOption {
	return func(m *MockServer) {
		m.FileSize = size
	}
}

// WithContentType sets the Content-Type header.
func WithContentType(ct string) MockServerOption {
	return func(m *MockServer) {
		m.ContentType = ct
	}
}

// WithFilename sets the filename in Content-Disposition header.
func WithFilename(name string) MockServerOption {
	return func(m *MockServer) {
		m.Filename = name
	}
}

// WithRandomData enables serving random bytes instead of zeros.
func WithRandomData(random bool) MockServerOption {
	return func(m *MockServer) {
		m.RandomData = random
	}
}

// WithLatency adds artificial latency per request.
func WithLatency(d time.Duration) MockServerOption {
	return func(m *MockServer) {
		m.Latency = d
	}
}

// WithByteLatency adds artificial latency after every chunk served.
func WithByteLatency(d time.Duration) MockServerOption {
	return func(m *MockServer) {
		m.ByteLatency = d
	}
}

// WithFailAfterBytes causes the connection to drop after serving N bytes.
// The declared Content-Length stays the full size so the client sees a
// truncated body.
func WithFailAfterBytes(n int64) MockServerOption {
	return func(m *MockServer) {
		m.FailAfterBytes = n
	}
}

// WithStatusCode makes every request answer with code and a short text body.
func WithStatusCode(code int) MockServerOption {
	return func(m *MockServer) {
		m.StatusCode = code
	}
}

// WithoutContentLength streams the body chunked, without a length.
func WithoutContentLength() MockServerOption {
	return func(m *MockServer) {
		m.OmitContentLength = true
	}
}

func newMockServer(opts []MockServerOption) *MockServer {
	m := &MockServer{
		FileSize:    1024 * 1024, // 1MB default
		ContentType: "application/octet-stream",
		Filename:    "testfile.bin",
	}

	for _, opt := range opts {
		opt(m)
	}

	// Pre-generate data
	m.data = make([]byte, m.FileSize)
	if m.RandomData {
		_, _ = rand.Read(m.data)
	}
	return m
}

// NewMockServer creates a new mock HTTP server with the given options.
func NewMockServer(opts ...MockServerOption) *MockServer {
	m := newMockServer(opts)
	srv := NewHTTPServer(http.HandlerFunc(m.handleRequest))
	m.Server, m.url = srv, srv.URL
	return m
}

// NewMockServerT creates a new mock HTTP server and skips the test if binding fails.
func NewMockServerT(t *testing.T, opts ...MockServerOption) *MockServer {
	t.Helper()
	m := newMockServer(opts)
	srv := NewHTTPServerT(t, http.HandlerFunc(m.handleRequest))
	m.Server, m.url = srv, srv.URL
	t.Cleanup(m.Close)
	return m
}

// URL returns the server's base URL.
func (m *MockServer) URL() string {
	return m.url
}

// FileURL returns the URL of path (e.g. "/files/a.bin") on the server.
func (m *MockServer) FileURL(path string) string {
	return m.url + path
}

// Data returns the bytes the server serves.
func (m *MockServer) Data() []byte {
	return m.data
}

// LastUserAgent returns the User-Agent of the most recent request.
func (m *MockServer) LastUserAgent() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.userAgent
}

// Close shuts down the mock server.
func (m *MockServer) Close() {
	if m.Server != nil {
		m.Server.Close()
	}
}

// Stats returns a summary of server statistics.
func (m *MockServer) Stats() MockServerStats {
	return MockServerStats{
		TotalRequests: m.RequestCount.Load(),
		BytesServed:   m.BytesServed.Load(),
	}
}

// MockServerStats contains server statistics.
type MockServerStats struct {
	TotalRequests int64
	BytesServed   int64
}

func (m *MockServer) handleRequest(w http.ResponseWriter, r *http.Request) {
	m.RequestCount.Add(1)
	m.mu.Lock()
	m.userAgent = r.UserAgent()
	m.mu.Unlock()

	if m.CustomHandler != nil {
		m.CustomHandler(w, r)
		return
	}

	if m.Latency > 0 {
		time.Sleep(m.Latency)
	}

	if m.StatusCode != 0 && m.StatusCode != http.StatusOK {
		http.Error(w, http.StatusText(m.StatusCode), m.StatusCode)
		return
	}

	w.Header().Set("Content-Type", m.ContentType)
	if m.Filename != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, m.Filename))
	}
	if !m.OmitContentLength {
		w.Header().Set("Content-Length", strconv.FormatInt(m.FileSize, 10))
	}
	w.WriteHeader(http.StatusOK)

	if r.Method == http.MethodHead {
		return
	}

	flusher, _ := w.(http.Flusher)
	length := m.FileSize
	bytesWritten := int64(0)

	// Write in chunks to support byte latency and fail-after-bytes
	chunkSize := int64(32 * 1024)
	for bytesWritten < length {
		if m.FailAfterBytes > 0 && bytesWritten >= m.FailAfterBytes {
			// Abruptly end the response short of the declared length
			return
		}

		remaining := length - bytesWritten
		if remaining < chunkSize {
			chunkSize = remaining
		}

		n, err := w.Write(m.data[bytesWritten : bytesWritten+chunkSize])
		if err != nil {
			return // Client disconnected
		}

		bytesWritten += int64(n)
		m.BytesServed.Add(int64(n))

		if m.ByteLatency > 0 {
			if flusher != nil {
				flusher.Flush()
			}
			time.Sleep(m.ByteLatency)
		}
	}
}
