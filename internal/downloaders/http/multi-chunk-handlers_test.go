package pargethttp

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/rs/zerolog"
	"github.com/tanq16/parget/internal/utils"
)

func newTestFetcher(transport utils.Transport, sink *memWriterAt, total int64) *fetcher {
	return &fetcher{
		transport: transport,
		url:       "http://example.test/file",
		sink:      sink,
		path:      "file",
		progress:  NewProgress(total),
		log:       zerolog.Nop(),
	}
}

func TestStreamWritesAtOffset(t *testing.T) {
	sink := newMemWriterAt(10)
	f := newTestFetcher(nil, sink, 10)
	// one byte per Read exercises the running offset
	body := iotest.OneByteReader(strings.NewReader("abcd"))
	if err := f.stream(body, 3, 4, "bytes=3-6"); err != nil {
		t.Fatalf("stream: %v", err)
	}
	if got := string(sink.buf); got != "\x00\x00\x00abcd\x00\x00\x00" {
		t.Errorf("sink = %q", got)
	}
	if got := f.progress.Completed(); got != 4 {
		t.Errorf("progress = %d, want 4", got)
	}
}

func TestStreamStopsAtRangeEnd(t *testing.T) {
	sink := newMemWriterAt(10)
	f := newTestFetcher(nil, sink, 10)
	err := f.stream(strings.NewReader("abcdefgh"), 2, 3, "bytes=2-4")
	if !errors.Is(err, utils.ErrTransport) {
		t.Fatalf("stream error = %v, want TransportError", err)
	}
	if got := string(sink.buf); got != "\x00\x00abc\x00\x00\x00\x00\x00" {
		t.Errorf("sink = %q, bytes beyond the range were written", got)
	}
	if got := f.progress.Completed(); got != 3 {
		t.Errorf("progress = %d, want 3", got)
	}
}

func TestStreamShortBody(t *testing.T) {
	sink := newMemWriterAt(10)
	f := newTestFetcher(nil, sink, 10)
	err := f.stream(strings.NewReader("ab"), 0, 5, "bytes=0-4")
	var transportErr *utils.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("stream error = %v, want TransportError", err)
	}
	if !strings.Contains(err.Error(), "length mismatch") {
		t.Errorf("error = %q, want length mismatch", err)
	}
}

func TestStreamReadFailure(t *testing.T) {
	sink := newMemWriterAt(10)
	f := newTestFetcher(nil, sink, 10)
	body := iotest.TimeoutReader(strings.NewReader("abcdef"))
	err := f.stream(iotest.OneByteReader(body), 0, 6, "")
	if !errors.Is(err, utils.ErrTransport) {
		t.Fatalf("stream error = %v, want TransportError", err)
	}
}

func TestStreamWriteFailure(t *testing.T) {
	f := &fetcher{
		url:      "http://example.test/file",
		sink:     failingWriterAt{},
		path:     "out.bin",
		progress: NewProgress(10),
		log:      zerolog.Nop(),
	}
	err := f.stream(strings.NewReader("abc"), 4, 3, "bytes=4-6")
	var writeErr *utils.WriteError
	if !errors.As(err, &writeErr) {
		t.Fatalf("stream error = %v, want WriteError", err)
	}
	if writeErr.Path != "out.bin" || writeErr.Offset != 4 {
		t.Errorf("WriteError = %+v", writeErr)
	}
	if f.progress.Completed() != 0 {
		t.Errorf("failed writes must not advance progress")
	}
}

func TestFetchRangeRequiresPartialContent(t *testing.T) {
	tests := []struct {
		name   string
		status int
		header map[string]string
		body   string
		want   error
	}{
		{"partial content", 206, map[string]string{"Content-Range": "bytes 2-4/10"}, "cde", nil},
		{"full body instead of range", 200, map[string]string{"Content-Length": "10"}, "abcdefghij", utils.ErrTransport},
		{"missing content range", 206, nil, "cde", utils.ErrTransport},
		{"mismatched content range", 206, map[string]string{"Content-Range": "bytes 0-2/10"}, "abc", utils.ErrTransport},
		{"range not satisfiable", 416, nil, "", utils.ErrTransport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotRange string
			transport := &stubTransport{get: func(rangeValue string) (*http.Response, error) {
				gotRange = rangeValue
				return stubResponse(tt.status, tt.header, tt.body), nil
			}}
			sink := newMemWriterAt(10)
			f := newTestFetcher(transport, sink, 10)
			err := f.fetchRange(context.Background(), utils.ByteRange{Start: 2, End: 4})
			if gotRange != "bytes=2-4" {
				t.Errorf("Range header = %q, want bytes=2-4", gotRange)
			}
			if tt.want == nil {
				if err != nil {
					t.Fatalf("fetchRange: %v", err)
				}
				if !bytes.Equal(sink.buf[2:5], []byte("cde")) {
					t.Errorf("sink = %q", sink.buf)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("fetchRange error = %v, want %v", err, tt.want)
			}
			if !bytes.Equal(sink.buf, make([]byte, 10)) {
				t.Errorf("rejected response was written: %q", sink.buf)
			}
		})
	}
}

func TestFetchAllSendsNoRange(t *testing.T) {
	var gotRange = "unset"
	transport := &stubTransport{get: func(rangeValue string) (*http.Response, error) {
		gotRange = rangeValue
		return stubResponse(200, nil, "hello"), nil
	}}
	sink := newMemWriterAt(5)
	f := newTestFetcher(transport, sink, 5)
	if err := f.fetchAll(context.Background(), 5); err != nil {
		t.Fatalf("fetchAll: %v", err)
	}
	if gotRange != "" {
		t.Errorf("single stream sent Range %q", gotRange)
	}
	if string(sink.buf) != "hello" {
		t.Errorf("sink = %q", sink.buf)
	}
}

func TestCheckContentRange(t *testing.T) {
	r := utils.ByteRange{Start: 100, End: 199}
	tests := []struct {
		header string
		ok     bool
	}{
		{"bytes 100-199/1000", true},
		{"bytes 100-199/*", true},
		{"", false},
		{"bytes 100-198/1000", false},
		{"bytes 0-99/1000", false},
		{"items 100-199/1000", false},
		{"bytes 100-199", false},
		{"bytes x-199/1000", false},
	}
	for _, tt := range tests {
		err := checkContentRange(tt.header, r)
		if (err == nil) != tt.ok {
			t.Errorf("checkContentRange(%q) = %v, want ok=%v", tt.header, err, tt.ok)
		}
	}
}
