package pargethttp

import (
	"context"
	"net/http"

	"github.com/tanq16/parget/internal/utils"
)

// fetchAll streams the whole resource with one unranged GET, writing from
// offset 0. A failure mid-stream leaves the partial file in place.
func (f *fetcher) fetchAll(ctx context.Context, totalSize int64) error {
	log := f.log.With().Str("op", "http/simple-downloader").Logger()
	resp, err := f.transport.Get(ctx, f.url, "")
	if err != nil {
		return &utils.TransportError{URL: f.url, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &utils.TransportError{URL: f.url, StatusCode: resp.StatusCode}
	}
	if err := f.stream(resp.Body, 0, totalSize, ""); err != nil {
		log.Debug().Err(err).Msg("Simple download failed")
		return err
	}
	log.Debug().Int64("bytes", totalSize).Msg("Simple download completed")
	return nil
}
