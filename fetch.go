package assetpack

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/spf13/afero"
)

// Fetcher retrieves the raw bytes behind a source reference. Failures are
// returned as *FetchError.
type Fetcher interface {
	Fetch(ref string, remote bool) ([]byte, error)
}

// FetcherFunc adapts an ordinary function to the Fetcher interface.
type FetcherFunc func(ref string, remote bool) ([]byte, error)

// Fetch calls f(ref, remote).
func (f FetcherFunc) Fetch(ref string, remote bool) ([]byte, error) {
	return f(ref, remote)
}

type contentFetcher struct {
	fs     afero.Fs
	client *http.Client
}

// NewFetcher returns the default fetcher: local references are read from fs,
// remote ones are requested with client. A nil client is replaced by a pooled
// client whose connect phase is bounded by connectTimeout.
func NewFetcher(fs afero.Fs, client *http.Client, connectTimeout time.Duration) Fetcher {
	if client == nil {
		client = newHTTPClient(connectTimeout)
	}
	return &contentFetcher{fs: fs, client: client}
}

func newHTTPClient(connectTimeout time.Duration) *http.Client {
	if connectTimeout <= 0 {
		connectTimeout = DefaultConnectTimeout
	}
	transport := cleanhttp.DefaultPooledTransport()
	transport.DialContext = (&net.Dialer{
		Timeout:   connectTimeout,
		KeepAlive: 30 * time.Second,
	}).DialContext
	return &http.Client{Transport: transport}
}

func (f *contentFetcher) Fetch(ref string, remote bool) ([]byte, error) {
	if remote {
		return f.fetchRemote(ref)
	}

	data, err := afero.ReadFile(f.fs, ref)
	if err != nil {
		return nil, &FetchError{Ref: ref, Err: err}
	}
	return data, nil
}

func (f *contentFetcher) fetchRemote(ref string) ([]byte, error) {
	url := normalizeRemote(ref)

	resp, err := f.client.Get(url)
	if err != nil {
		return nil, &FetchError{Ref: ref, Remote: true, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{
			Ref:    ref,
			Remote: true,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("%w: %s", ErrBadStatus, resp.Status),
		}
	}

	var buf bytes.Buffer
	bufPtr := bufferPool.Get().(*[]byte)
	defer bufferPool.Put(bufPtr)
	if _, err := io.CopyBuffer(&buf, resp.Body, *bufPtr); err != nil {
		return nil, &FetchError{Ref: ref, Remote: true, Status: resp.StatusCode, Err: err}
	}
	return buf.Bytes(), nil
}

// normalizeRemote turns a protocol-relative reference into an http URL.
func normalizeRemote(ref string) string {
	if strings.HasPrefix(ref, "//") {
		return "http:" + ref
	}
	return ref
}
