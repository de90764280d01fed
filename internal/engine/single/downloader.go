package single

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/vfaronov/httpheader"

	"github.com/solvia-downloader/solvia/internal/engine/types"
)

// StatusError is returned by Open for a non-2xx response
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Response status code does not indicate success: %d (%s).", e.StatusCode, http.StatusText(e.StatusCode))
}

// Response is an open GET whose body has not been read yet
type Response struct {
	Body          io.ReadCloser
	ContentLength int64  // -1 when the server did not declare one
	ContentType   string // Media type without parameters
	Filename      string // Server-suggested name from Content-Disposition
	FinalURL      string // URL after redirects
	StatusCode    int
}

// Downloader opens single-connection GET requests
type Downloader struct {
	Client  *http.Client
	Runtime *types.RuntimeConfig
}

// NewDownloader creates a downloader whose client is bounded by the request
// timeout (body included) and follows at most MaxRedirects redirects.
func NewDownloader(runtime *types.RuntimeConfig) *Downloader {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   types.DialTimeout,
			KeepAlive: types.KeepAliveDuration,
		}).DialContext,
		IdleConnTimeout:       types.DefaultIdleConnTimeout,
		TLSHandshakeTimeout:   types.DefaultTLSHandshakeTimeout,
		ExpectContinueTimeout: types.DefaultExpectContinueTimeout,
		ForceAttemptHTTP2:     true,
	}

	if runtime != nil && runtime.SkipTLSVerify {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}

	maxRedirects := runtime.GetMaxRedirects()
	client := &http.Client{
		Timeout:   runtime.GetRequestTimeout(),
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			// Keep the caller's headers on every hop
			for key, vals := range via[0].Header {
				if _, ok := req.Header[key]; !ok {
					req.Header[key] = vals
				}
			}
			return nil
		},
	}

	return &Downloader{
		Client:  client,
		Runtime: runtime,
	}
}

// Open issues the GET and returns as soon as the response headers are in.
// The caller owns Response.Body.
func (d *Downloader) Open(ctx context.Context, rawurl string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawurl, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", d.Runtime.GetUserAgent())

	resp, err := d.Client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	out := &Response{
		Body:          resp.Body,
		ContentLength: resp.ContentLength,
		StatusCode:    resp.StatusCode,
		FinalURL:      resp.Request.URL.String(),
	}
	if out.ContentLength < 0 {
		out.ContentLength = -1
	}
	out.ContentType, _ = httpheader.ContentType(resp.Header)
	if _, filename, _ := httpheader.ContentDisposition(resp.Header); filename != "" {
		out.Filename = filename
	}
	return out, nil
}
