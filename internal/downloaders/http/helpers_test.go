package pargethttp

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/tanq16/parget/internal/utils"
)

var testModTime = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// contentServer serves content with range support unless noRanges is set.
type contentServer struct {
	content  []byte
	noRanges bool
	noLength bool
}

func (s *contentServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if s.noLength && r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}
	if s.noRanges {
		w.Header().Set("Content-Length", strconv.Itoa(len(s.content)))
		if r.Method == http.MethodHead {
			return
		}
		w.Write(s.content)
		return
	}
	http.ServeContent(w, r, "payload.bin", testModTime, bytes.NewReader(s.content))
}

func newContentServer(t *testing.T, s *contentServer) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(s)
	t.Cleanup(server.Close)
	return server
}

// recordingTransport wraps a real transport, records every GET range value
// and optionally fails one range before it reaches the network.
type recordingTransport struct {
	inner     utils.Transport
	failRange string

	mu     sync.Mutex
	heads  int
	ranges []string
}

var errInjected = errors.New("injected transport fault")

func (t *recordingTransport) Head(ctx context.Context, url string) (*http.Response, error) {
	t.mu.Lock()
	t.heads++
	t.mu.Unlock()
	return t.inner.Head(ctx, url)
}

func (t *recordingTransport) Get(ctx context.Context, url, rangeValue string) (*http.Response, error) {
	t.mu.Lock()
	t.ranges = append(t.ranges, rangeValue)
	t.mu.Unlock()
	if t.failRange != "" && rangeValue == t.failRange {
		return nil, errInjected
	}
	return t.inner.Get(ctx, url, rangeValue)
}

func (t *recordingTransport) getRanges() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.ranges...)
}

// stubTransport answers from canned responses.
type stubTransport struct {
	head func() (*http.Response, error)
	get  func(rangeValue string) (*http.Response, error)
}

func (s *stubTransport) Head(ctx context.Context, url string) (*http.Response, error) {
	return s.head()
}

func (s *stubTransport) Get(ctx context.Context, url, rangeValue string) (*http.Response, error) {
	return s.get(rangeValue)
}

func stubResponse(status int, headers map[string]string, body string) *http.Response {
	resp := &http.Response{
		StatusCode: status,
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader(body)),
	}
	for k, v := range headers {
		resp.Header.Set(k, v)
	}
	return resp
}

// memWriterAt is an in-memory io.WriterAt.
type memWriterAt struct {
	mu  sync.Mutex
	buf []byte
}

func newMemWriterAt(size int) *memWriterAt {
	return &memWriterAt{buf: make([]byte, size)}
}

func (m *memWriterAt) WriteAt(p []byte, off int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if off < 0 || int(off)+len(p) > len(m.buf) {
		return 0, errors.New("write out of bounds")
	}
	return copy(m.buf[off:], p), nil
}

type failingWriterAt struct{}

func (failingWriterAt) WriteAt(p []byte, off int64) (int, error) {
	return 0, errors.New("disk full")
}

func randomContent(t *testing.T, n int) []byte {
	t.Helper()
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}
	return b
}

func newTestDownloader(transport utils.Transport) *HTTPDownloader {
	d := NewHTTPDownloader(transport, zerolog.Nop())
	d.progressInterval = 5 * time.Millisecond
	return d
}

// progressRecorder keeps every snapshot handed to a ProgressFunc.
type progressRecorder struct {
	mu        sync.Mutex
	snapshots [][2]int64
}

func (p *progressRecorder) record(completed, total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshots = append(p.snapshots, [2]int64{completed, total})
}

func (p *progressRecorder) last() (int64, int64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.snapshots) == 0 {
		return 0, 0, false
	}
	s := p.snapshots[len(p.snapshots)-1]
	return s[0], s[1], true
}
