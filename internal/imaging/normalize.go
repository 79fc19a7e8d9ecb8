package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/image/draw"
)

// Defaults for image normalization. They cap the payload size and latency of
// the outbound classification request and can be retuned via config without
// touching the flow logic.
const (
	DefaultMaxDimension = 512
	DefaultJPEGQuality  = 90
)

// ValidationError reports input that is not an image at all.
type ValidationError struct {
	ContentType string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("not a valid image file (detected %s)", e.ContentType)
}

// ProcessingError reports an image that could not be decoded or re-encoded.
type ProcessingError struct {
	Err error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("could not process image: %v", e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

// Normalized is an image payload ready for transmission: JPEG bytes plus the
// base64 body sent inline to the classification endpoint.
type Normalized struct {
	Data     []byte
	Base64   string
	MIMEType string
	Width    int
	Height   int
}

// Normalizer scales images proportionally so neither dimension exceeds
// MaxDimension and re-encodes them as JPEG at Quality.
type Normalizer struct {
	MaxDimension int
	Quality      int
}

// NewNormalizer returns a Normalizer with the default bounds.
func NewNormalizer() *Normalizer {
	return &Normalizer{MaxDimension: DefaultMaxDimension, Quality: DefaultJPEGQuality}
}

// Normalize validates and normalizes an uploaded image. The declared content
// type (if any) and the sniffed content type must both carry the image/
// prefix; anything else is a ValidationError. Decode or encode failures are
// ProcessingErrors.
func (n *Normalizer) Normalize(data []byte, declaredType string) (*Normalized, error) {
	if declaredType != "" && !strings.HasPrefix(declaredType, "image/") {
		return nil, &ValidationError{ContentType: declaredType}
	}
	sniffed := http.DetectContentType(data)
	if !strings.HasPrefix(sniffed, "image/") {
		return nil, &ValidationError{ContentType: sniffed}
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &ProcessingError{Err: err}
	}

	scaled := n.scale(img)
	out, err := encodeJPEG(scaled, n.Quality)
	if err != nil {
		return nil, &ProcessingError{Err: err}
	}

	bounds := scaled.Bounds()
	slog.Debug("Normalized image",
		"format", format,
		"original_width", img.Bounds().Dx(),
		"original_height", img.Bounds().Dy(),
		"width", bounds.Dx(),
		"height", bounds.Dy(),
		"bytes", len(out))

	return &Normalized{
		Data:     out,
		Base64:   base64.StdEncoding.EncodeToString(out),
		MIMEType: "image/jpeg",
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
	}, nil
}

// EncodeFrame re-encodes a captured camera frame as JPEG at the configured
// quality without downscaling. Camera frames are already bounded by the
// device resolution.
func (n *Normalizer) EncodeFrame(frame image.Image) (*Normalized, error) {
	out, err := encodeJPEG(frame, n.Quality)
	if err != nil {
		return nil, &ProcessingError{Err: err}
	}

	bounds := frame.Bounds()
	return &Normalized{
		Data:     out,
		Base64:   base64.StdEncoding.EncodeToString(out),
		MIMEType: "image/jpeg",
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
	}, nil
}

// scale shrinks img proportionally so that max(width, height) does not exceed
// MaxDimension. Images already within bounds are returned unchanged.
func (n *Normalizer) scale(img image.Image) image.Image {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	max := n.MaxDimension
	if max <= 0 {
		max = DefaultMaxDimension
	}
	if width <= max && height <= max {
		return img
	}

	var newWidth, newHeight int
	if width > height {
		newWidth = max
		newHeight = int(float64(height) * float64(max) / float64(width))
	} else {
		newHeight = max
		newWidth = int(float64(width) * float64(max) / float64(height))
	}
	if newWidth < 1 {
		newWidth = 1
	}
	if newHeight < 1 {
		newHeight = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}
