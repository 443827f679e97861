package pargethttp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tanq16/parget/internal/utils"
)

// fetcher streams response bodies into the shared sink. Each call owns the
// span it was given and never writes outside it.
type fetcher struct {
	transport utils.Transport
	url       string
	sink      io.WriterAt
	path      string
	progress  *Progress
	log       zerolog.Logger
}

func (f *fetcher) fetchRange(ctx context.Context, r utils.ByteRange) error {
	log := f.log.With().Str("op", "http/chunk").Str("range", r.String()).Logger()
	rangeHeader := r.Header()
	log.Debug().Msg("Sending range request")
	resp, err := f.transport.Get(ctx, f.url, rangeHeader)
	if err != nil {
		return &utils.TransportError{URL: f.url, Range: rangeHeader, Err: err}
	}
	defer resp.Body.Close()
	// a 200 here means the server ignored the range and is sending everything
	if resp.StatusCode != http.StatusPartialContent {
		return &utils.TransportError{URL: f.url, Range: rangeHeader, StatusCode: resp.StatusCode}
	}
	if err := checkContentRange(resp.Header.Get("Content-Range"), r); err != nil {
		return &utils.TransportError{URL: f.url, Range: rangeHeader, Err: err}
	}
	if err := f.stream(resp.Body, r.Start, r.Len(), rangeHeader); err != nil {
		log.Debug().Err(err).Msg("Chunk failed")
		return err
	}
	log.Debug().Int64("bytes", r.Len()).Msg("Chunk download completed")
	return nil
}

// stream writes body at offset, advancing progress per written chunk. Exactly
// length bytes must arrive: short bodies and bodies that overrun the span are
// both treated as transport failures.
func (f *fetcher) stream(body io.Reader, offset, length int64, rangeHeader string) error {
	buffer := make([]byte, min(int64(utils.DefaultBufferSize), max(length, 1)))
	end := offset + length
	pos := offset
	for {
		bytesRead, readErr := body.Read(buffer)
		if bytesRead > 0 {
			chunk := buffer[:bytesRead]
			overrun := pos+int64(len(chunk)) > end
			if overrun {
				chunk = chunk[:end-pos]
			}
			if len(chunk) > 0 {
				if _, err := f.sink.WriteAt(chunk, pos); err != nil {
					return &utils.WriteError{Path: f.path, Op: "write", Offset: pos, Err: err}
				}
				pos += int64(len(chunk))
				f.progress.Advance(int64(len(chunk)))
			}
			if overrun {
				return &utils.TransportError{URL: f.url, Range: rangeHeader, Err: fmt.Errorf("length mismatch: server sent more than %d bytes", length)}
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}
			return &utils.TransportError{URL: f.url, Range: rangeHeader, Err: fmt.Errorf("reading response body: %w", readErr)}
		}
	}
	if written := pos - offset; written != length {
		return &utils.TransportError{URL: f.url, Range: rangeHeader, Err: fmt.Errorf("length mismatch: expected %d bytes, got %d", length, written)}
	}
	return nil
}

// checkContentRange requires a "bytes start-end/total" header matching r.
func checkContentRange(header string, r utils.ByteRange) error {
	if header == "" {
		return errors.New("missing Content-Range header")
	}
	value, ok := strings.CutPrefix(header, "bytes ")
	if !ok {
		return fmt.Errorf("malformed Content-Range %q", header)
	}
	span, _, ok := strings.Cut(value, "/")
	if !ok {
		return fmt.Errorf("malformed Content-Range %q", header)
	}
	startStr, endStr, ok := strings.Cut(span, "-")
	if !ok {
		return fmt.Errorf("malformed Content-Range %q", header)
	}
	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil {
		return fmt.Errorf("malformed Content-Range %q", header)
	}
	end, err := strconv.ParseInt(endStr, 10, 64)
	if err != nil {
		return fmt.Errorf("malformed Content-Range %q", header)
	}
	if start != r.Start || end != r.End {
		return fmt.Errorf("content range %q does not match requested %s", header, r.Header())
	}
	return nil
}
