package recognize

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/synospot/synospot/internal/utils"
)

// TesseractConfig holds settings for the Tesseract-backed service.
type TesseractConfig struct {
	// Language is the Tesseract language code.
	Language string
	// PageSegMode controls layout analysis. Charts carry sparse isolated
	// tokens, so sparse-text mode is the default.
	PageSegMode gosseract.PageSegMode
}

// DefaultTesseractConfig returns the configuration used for synoptic charts.
func DefaultTesseractConfig() TesseractConfig {
	return TesseractConfig{
		Language:    "eng",
		PageSegMode: gosseract.PSM_SPARSE_TEXT,
	}
}

// Tesseract adapts a gosseract client to the Service contract. It is not
// safe for concurrent use; the pipeline runs recognition synchronously.
type Tesseract struct {
	client *gosseract.Client
	cfg    TesseractConfig
}

// NewTesseract creates a Tesseract-backed recognition service.
func NewTesseract(cfg TesseractConfig) (*Tesseract, error) {
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	client := gosseract.NewClient()
	if err := client.SetLanguage(cfg.Language); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("set language %q: %w", cfg.Language, err)
	}
	slog.Debug("Tesseract client initialized", "language", cfg.Language)
	return &Tesseract{client: client, cfg: cfg}, nil
}

// Recognize runs word-level OCR over img, restricted to the allowlist.
// Tokens below the confidence floor or outside the allowlist are dropped.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image, opts Options) ([]Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if img == nil || img.Bounds().Empty() {
		return nil, nil
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode region: %w", err)
	}
	if err := t.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}
	if err := t.client.SetWhitelist(opts.Allowlist); err != nil {
		return nil, fmt.Errorf("set whitelist: %w", err)
	}
	if err := t.client.SetPageSegMode(t.cfg.PageSegMode); err != nil {
		return nil, fmt.Errorf("set page segmentation mode: %w", err)
	}

	boxes, err := t.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("bounding boxes: %w", err)
	}

	min := img.Bounds().Min
	tokens := make([]Token, 0, len(boxes))
	for _, b := range boxes {
		text := strings.TrimSpace(b.Word)
		if text == "" {
			continue
		}
		conf := b.Confidence / 100.0
		if conf < opts.MinConfidence {
			continue
		}
		if opts.Allowlist != "" && !allowed(text, opts.Allowlist) {
			continue
		}
		rect := b.Box.Sub(min)
		tokens = append(tokens, Token{
			Quad:       utils.NewQuadFromRect(rect),
			Text:       text,
			Confidence: conf,
		})
	}
	return tokens, nil
}

// Close releases the underlying Tesseract client.
func (t *Tesseract) Close() error {
	if t.client == nil {
		return nil
	}
	err := t.client.Close()
	t.client = nil
	return err
}

// allowed reports whether every rune of text is in the allowlist. Tesseract
// honors the whitelist but can still emit stray punctuation on noisy input.
func allowed(text, allowlist string) bool {
	for _, r := range text {
		if !strings.ContainsRune(allowlist, r) {
			return false
		}
	}
	return true
}
