package pargethttp

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/tanq16/parget/internal/utils"
)

const defaultProgressInterval = 100 * time.Millisecond

type HTTPDownloader struct {
	transport        utils.Transport
	log              zerolog.Logger
	progressInterval time.Duration
}

func NewHTTPDownloader(transport utils.Transport, log zerolog.Logger) *HTTPDownloader {
	return &HTTPDownloader{
		transport:        transport,
		log:              log,
		progressInterval: defaultProgressInterval,
	}
}

// Probe issues a single HEAD request and extracts the total size and
// whether the server advertises byte-range support.
func (d *HTTPDownloader) Probe(ctx context.Context, link string) (utils.ResourceMetadata, error) {
	resp, err := d.transport.Head(ctx, link)
	if err != nil {
		return utils.ResourceMetadata{}, &utils.TransportError{URL: link, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return utils.ResourceMetadata{}, &utils.TransportError{URL: link, StatusCode: resp.StatusCode}
	}

	contentLength := resp.Header.Get("Content-Length")
	if contentLength == "" {
		return utils.ResourceMetadata{}, &utils.MissingLengthError{URL: link}
	}
	size, err := strconv.ParseInt(contentLength, 10, 64)
	if err != nil || size < 0 {
		return utils.ResourceMetadata{}, &utils.MissingLengthError{URL: link, Value: contentLength}
	}

	meta := utils.ResourceMetadata{
		TotalSize:      size,
		SupportsRanges: resp.Header.Get("Accept-Ranges") == "bytes",
	}
	d.log.Debug().Str("op", "http/probe").Str("url", link).Int64("size", meta.TotalSize).Bool("ranges", meta.SupportsRanges).Msg("Resource probed")
	return meta, nil
}
