package pargethttp

import (
	"context"
	"time"

	"github.com/tanq16/parget/internal/utils"
	"golang.org/x/sync/errgroup"
)

type Mode string

const (
	ModeRanged Mode = "ranged"
	ModeSingle Mode = "single"
)

// Outcome describes a finished download attempt. Ranges is empty in
// single-stream mode.
type Outcome struct {
	Metadata  utils.ResourceMetadata
	Mode      Mode
	Ranges    []utils.ByteRange
	Completed int64
	Elapsed   time.Duration
}

// Speed is the average throughput in bytes per second.
func (o *Outcome) Speed() float64 {
	if o.Elapsed <= 0 {
		return 0
	}
	return float64(o.Completed) / o.Elapsed.Seconds()
}

// Download probes req.URL, preallocates req.OutputPath and fills it either
// with one fetcher per byte range or with a single unranged stream when the
// server lacks range support or only one job is requested.
//
// Fetchers are never cancelled because a sibling failed: Download waits for
// all of them and returns the first error in completion order; failures are
// logged at debug level only and left to the caller to report. The returned
// Outcome is non-nil whenever probing succeeded, including on failure. A
// partially written file is left on disk.
func (d *HTTPDownloader) Download(ctx context.Context, req utils.DownloadRequest, onProgress ProgressFunc) (*Outcome, error) {
	if err := utils.ValidateRequest(req); err != nil {
		return nil, err
	}
	log := d.log.With().Str("op", "http/download").Str("url", req.URL).Str("output", req.OutputPath).Logger()
	startTime := time.Now()

	meta, err := d.Probe(ctx, req.URL)
	if err != nil {
		log.Debug().Err(err).Msg("Probe failed")
		return nil, err
	}

	outcome := &Outcome{Metadata: meta, Mode: ModeSingle}
	if meta.SupportsRanges && req.Jobs > 1 {
		ranges, err := Partition(meta.TotalSize, req.Jobs)
		if err != nil {
			return outcome, err
		}
		// a clamped partition of one range is just a single stream
		if len(ranges) > 1 {
			outcome.Mode = ModeRanged
			outcome.Ranges = ranges
		}
	}

	sink, err := CreateOutputSink(req.OutputPath, meta.TotalSize)
	if err != nil {
		log.Debug().Err(err).Msg("Preallocation failed")
		return outcome, err
	}
	progress := NewProgress(meta.TotalSize)
	stop := progress.Watch(d.progressInterval, onProgress)

	f := &fetcher{
		transport: d.transport,
		url:       req.URL,
		sink:      sink,
		path:      sink.Path(),
		progress:  progress,
		log:       d.log,
	}
	log.Debug().Str("mode", string(outcome.Mode)).Int("ranges", len(outcome.Ranges)).Int64("size", meta.TotalSize).Msg("Dispatching")
	if outcome.Mode == ModeRanged {
		err = dispatch(ctx, f, outcome.Ranges)
	} else {
		err = f.fetchAll(ctx, meta.TotalSize)
	}

	stop()
	if closeErr := sink.Close(); err == nil {
		err = closeErr
	}
	outcome.Completed = progress.Completed()
	outcome.Elapsed = time.Since(startTime)
	if err != nil {
		log.Debug().Err(err).Int64("completed", outcome.Completed).Msg("Download failed")
		return outcome, err
	}
	log.Debug().Int64("bytes", outcome.Completed).Dur("elapsed", outcome.Elapsed).Msg("Download completed")
	return outcome, nil
}

// dispatch runs one fetcher per range and joins them. The plain errgroup
// (no derived context) keeps the first error without cancelling siblings.
func dispatch(ctx context.Context, f *fetcher, ranges []utils.ByteRange) error {
	var g errgroup.Group
	for _, r := range ranges {
		g.Go(func() error {
			return f.fetchRange(ctx, r)
		})
	}
	return g.Wait()
}
