package item

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// ErrEmptyImage is returned by DecodeImage for a zero-length payload.
var ErrEmptyImage = errors.New("empty image payload")

// DecodeImage reads the header of a bitmap payload and returns it as an Image.
// PNG, JPEG, GIF, BMP and TIFF are recognised; only the header is parsed.
func DecodeImage(data []byte) (Image, error) {
	if len(data) == 0 {
		return Image{}, ErrEmptyImage
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Image{}, fmt.Errorf("decode image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Image{}, fmt.Errorf("decode image header: invalid dimensions %dx%d", cfg.Width, cfg.Height)
	}
	return Image{Data: data, Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// Summary returns a one-line description of k suitable for log attributes.
func Summary(k Kind) string {
	return Match(k,
		func(t Text) string { return fmt.Sprintf("text (%d chars)", len([]rune(t.Value))) },
		func(i Image) string { return fmt.Sprintf("image %dx%d (%d bytes)", i.Width, i.Height, len(i.Data)) },
		func(f FileList) string { return fmt.Sprintf("files (%d)", len(f.Paths)) },
		func(Unknown) string { return "unknown" },
	)
}

// Preview returns a short human-readable rendering of k, truncated to max runes.
func Preview(k Kind, max int) string {
	s := Match(k,
		func(t Text) string { return strings.Join(strings.Fields(t.Value), " ") },
		func(i Image) string { return fmt.Sprintf("[%s image %dx%d]", i.Format, i.Width, i.Height) },
		func(f FileList) string { return strings.Join(f.Paths, ", ") },
		func(Unknown) string { return "[unknown]" },
	)
	r := []rune(s)
	if max > 0 && len(r) > max {
		return string(r[:max]) + "…"
	}
	return s
}

// Log logs an item event at INFO (kind and summary) and DEBUG (a content
// preview up to 120 characters).
func Log(event string, it Item) {
	slog.Info(event, "id", it.ID(), "kind", it.Kind().Name(), "summary", Summary(it.Kind()))

	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	slog.Debug("clipboard item", "id", it.ID(), "preview", Preview(it.Kind(), 120))
}
