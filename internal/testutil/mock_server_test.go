package testutil

import (
	"bytes"
	"io"
	"net/http"
	"testing"
	"time"
)

func TestMockServer_BasicDownload(t *testing.T) {
	server := NewMockServerT(t,
		WithFileSize(1024*1024), // 1MB
		WithRandomData(true),
	)

	resp, err := http.Get(server.FileURL("/files/a.bin"))
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}
	if resp.ContentLength != 1024*1024 {
		t.Errorf("Expected Content-Length 1048576, got %d", resp.ContentLength)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read: %v", err)
	}
	if !bytes.Equal(data, server.Data()) {
		t.Error("served bytes differ from Data()")
	}

	stats := server.Stats()
	if stats.TotalRequests != 1 {
		t.Errorf("Expected 1 request, got %d", stats.TotalRequests)
	}
	if stats.BytesServed != 1024*1024 {
		t.Errorf("Expected 1MB served, got %d", stats.BytesServed)
	}
}

func TestMockServer_Headers(t *testing.T) {
	server := NewMockServerT(t,
		WithFileSize(2048),
		WithFilename("report.pdf"),
		WithContentType("application/pdf"),
	)

	req, _ := http.NewRequest(http.MethodHead, server.URL(), nil)
	req.Header.Set("User-Agent", "solvia-test/1")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("HEAD request failed: %v", err)
	}
	_ = resp.Body.Close()

	if got := resp.Header.Get("Content-Disposition"); got != `attachment; filename="report.pdf"` {
		t.Errorf("Content-Disposition: got %q", got)
	}
	if got := resp.Header.Get("Content-Type"); got != "application/pdf" {
		t.Errorf("Content-Type: got %q", got)
	}
	if server.LastUserAgent() != "solvia-test/1" {
		t.Errorf("LastUserAgent: got %q", server.LastUserAgent())
	}
}

func TestMockServer_StatusCode(t *testing.T) {
	server := NewMockServerT(t, WithStatusCode(http.StatusNotFound))

	resp, err := http.Get(server.URL())
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", resp.StatusCode)
	}
	if server.Stats().BytesServed != 0 {
		t.Error("no payload bytes should be served on error status")
	}
}

func TestMockServer_WithoutContentLength(t *testing.T) {
	server := NewMockServerT(t, WithFileSize(100*1024), WithoutContentLength())

	resp, err := http.Get(server.URL())
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.ContentLength != -1 {
		t.Errorf("Expected unknown length, got %d", resp.ContentLength)
	}
	data, _ := io.ReadAll(resp.Body)
	if len(data) != 100*1024 {
		t.Errorf("Expected full body, got %d bytes", len(data))
	}
}

func TestMockServer_FailAfterBytes(t *testing.T) {
	server := NewMockServerT(t,
		WithFileSize(256*1024),
		WithFailAfterBytes(64*1024),
	)

	resp, err := http.Get(server.URL())
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err == nil {
		t.Fatal("expected a read error on a truncated body")
	}
	if len(data) != 64*1024 {
		t.Errorf("Expected 64KB before the drop, got %d", len(data))
	}
}

func TestMockServer_Latency(t *testing.T) {
	latency := 100 * time.Millisecond
	server := NewMockServerT(t,
		WithFileSize(1024),
		WithLatency(latency),
	)

	start := time.Now()
	resp, err := http.Get(server.URL())
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	elapsed := time.Since(start)

	if elapsed < latency {
		t.Errorf("Request should have at least %v latency, took %v", latency, elapsed)
	}
}

func TestMockServer_CustomHandler(t *testing.T) {
	server := NewMockServerT(t, WithHandler(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	resp, err := http.Get(server.URL())
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusTeapot {
		t.Errorf("Expected 418, got %d", resp.StatusCode)
	}
	if server.Stats().TotalRequests != 1 {
		t.Error("custom handler requests are still counted")
	}
}

func TestCreateTestFile(t *testing.T) {
	dir := t.TempDir()

	path, err := CreateTestFile(dir, "test.bin", 1024, false)
	if err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	if err := VerifyFileSize(path, 1024); err != nil {
		t.Error(err)
	}
	if !FileExists(path) {
		t.Error("FileExists should report the new file")
	}
}

func TestVerifyFileSize(t *testing.T) {
	path, _ := CreateTestFile(t.TempDir(), "test.bin", 2048, false)

	if err := VerifyFileSize(path, 2048); err != nil {
		t.Errorf("Should match: %v", err)
	}

	if err := VerifyFileSize(path, 1024); err == nil {
		t.Error("Should fail for wrong size")
	}
}

func TestVerifyFileContent(t *testing.T) {
	path, _ := CreateTestFile(t.TempDir(), "zeros.bin", 4, false)

	if err := VerifyFileContent(path, []byte{0, 0, 0, 0}); err != nil {
		t.Error(err)
	}
	if err := VerifyFileContent(path, []byte{0, 0, 0, 1}); err == nil {
		t.Error("Should fail for different content")
	}
}
