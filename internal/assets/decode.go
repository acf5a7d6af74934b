package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoding
	_ "image/jpeg" // Register JPEG decoding
	_ "image/png"  // Register PNG decoding

	"github.com/forgeworks/botsmith/internal/draft"
	"github.com/forgeworks/botsmith/internal/logger"
)

// ErrNotDecodable is returned when Decode is asked for a preview of an
// asset that carries no local bytes.
var ErrNotDecodable = errors.New("asset has no local bytes to decode")

// Preview is the in-memory preview handle for a local-pending image.
// Token carries the identity of the asset the preview was decoded from:
// consumers must compare it against the field's current token before
// applying the preview, so a stale decode can never overwrite the preview
// of a newer selection regardless of completion order.
type Preview struct {
	Token  uint64
	Format string // "png", "jpeg", "gif"
	Width  int
	Height int
}

// Decode produces a preview for a local-pending image asset. It honors
// context cancellation, so navigating away aborts the decode instead of
// delivering a result to a torn-down view.
func Decode(ctx context.Context, a draft.Asset) (Preview, error) {
	if a.State() != draft.AssetLocalPending {
		return Preview{}, ErrNotDecodable
	}

	type result struct {
		cfg    image.Config
		format string
		err    error
	}

	done := make(chan result, 1)
	go func() {
		cfg, format, err := image.DecodeConfig(bytes.NewReader(a.Data()))
		done <- result{cfg: cfg, format: format, err: err}
	}()

	select {
	case <-ctx.Done():
		logger.Debug("Preview decode cancelled for %s", a.Name())
		return Preview{}, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return Preview{}, fmt.Errorf("decoding %s: %w", a.Name(), r.err)
		}
		return Preview{
			Token:  a.Token(),
			Format: r.format,
			Width:  r.cfg.Width,
			Height: r.cfg.Height,
		}, nil
	}
}
