package pargethttp

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/tanq16/parget/internal/utils"
)

func TestProbe(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		headers    map[string]string
		size       int64
		ranges     bool
		wantErrKnd error
	}{
		{"ranges supported", 200, map[string]string{"Content-Length": "1000", "Accept-Ranges": "bytes"}, 1000, true, nil},
		{"ranges none", 200, map[string]string{"Content-Length": "1000", "Accept-Ranges": "none"}, 1000, false, nil},
		{"ranges header absent", 200, map[string]string{"Content-Length": "42"}, 42, false, nil},
		{"ranges token case differs", 200, map[string]string{"Content-Length": "42", "Accept-Ranges": "Bytes"}, 42, false, nil},
		{"empty resource", 200, map[string]string{"Content-Length": "0", "Accept-Ranges": "bytes"}, 0, true, nil},
		{"missing length", 200, map[string]string{"Accept-Ranges": "bytes"}, 0, false, utils.ErrMissingLength},
		{"garbage length", 200, map[string]string{"Content-Length": "lots"}, 0, false, utils.ErrMissingLength},
		{"negative length", 200, map[string]string{"Content-Length": "-5"}, 0, false, utils.ErrMissingLength},
		{"not found", 404, map[string]string{"Content-Length": "10"}, 0, false, utils.ErrTransport},
		{"server error", 503, nil, 0, false, utils.ErrTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := &stubTransport{head: func() (*http.Response, error) {
				return stubResponse(tt.status, tt.headers, ""), nil
			}}
			meta, err := newTestDownloader(transport).Probe(context.Background(), "http://example.test/file")
			if tt.wantErrKnd != nil {
				if !errors.Is(err, tt.wantErrKnd) {
					t.Fatalf("Probe error = %v, want %v", err, tt.wantErrKnd)
				}
				return
			}
			if err != nil {
				t.Fatalf("Probe: %v", err)
			}
			if meta.TotalSize != tt.size || meta.SupportsRanges != tt.ranges {
				t.Errorf("Probe = %+v, want size %d ranges %v", meta, tt.size, tt.ranges)
			}
		})
	}
}

func TestProbeRequestFailure(t *testing.T) {
	transport := &stubTransport{head: func() (*http.Response, error) {
		return nil, errInjected
	}}
	_, err := newTestDownloader(transport).Probe(context.Background(), "http://example.test/file")
	var transportErr *utils.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("Probe error = %v, want TransportError", err)
	}
	if !errors.Is(err, errInjected) {
		t.Errorf("Probe error does not wrap the cause: %v", err)
	}
	if transportErr.URL != "http://example.test/file" {
		t.Errorf("TransportError.URL = %q", transportErr.URL)
	}
}

func TestProbeAgainstServer(t *testing.T) {
	content := randomContent(t, 512)
	server := newContentServer(t, &contentServer{content: content})
	meta, err := newTestDownloader(utils.NewHTTPClient(utils.HTTPClientConfig{})).Probe(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if meta.TotalSize != 512 || !meta.SupportsRanges {
		t.Errorf("Probe = %+v", meta)
	}
}
