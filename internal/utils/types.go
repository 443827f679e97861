package utils

import (
	"fmt"
	"time"
)

type HTTPClientConfig struct {
	Timeout        time.Duration
	KATimeout      time.Duration
	ProxyURL       string
	ProxyUsername  string
	ProxyPassword  string
	UserAgent      string
	Headers        map[string]string
	HighThreadMode bool // advanced socket options for high concurrency
}

// DownloadRequest is fixed once a download starts.
type DownloadRequest struct {
	URL        string
	Jobs       int
	OutputPath string
}

// ResourceMetadata is produced once per download by the prober.
type ResourceMetadata struct {
	TotalSize      int64
	SupportsRanges bool
}

// ByteRange is an inclusive span of byte offsets [Start, End].
type ByteRange struct {
	Start int64
	End   int64
}

func (r ByteRange) Len() int64 {
	return r.End - r.Start + 1
}

// Header formats the range as an RFC 7233 byte-range-spec.
func (r ByteRange) Header() string {
	return fmt.Sprintf("bytes=%d-%d", r.Start, r.End)
}

func (r ByteRange) String() string {
	return fmt.Sprintf("[%d,%d]", r.Start, r.End)
}

type Job struct {
	ID               string
	Request          DownloadRequest
	HTTPClientConfig HTTPClientConfig
	ProgressFunc     func(completed, total int64)
}

type DownloadEntry struct {
	OutputPath string `yaml:"op"`
	URL        string `yaml:"link"`
	Jobs       int    `yaml:"jobs"`
}
