package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"testing"
)

func encodeTestJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func decodeDimensions(t *testing.T, data []byte) (int, int) {
	t.Helper()
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode normalized payload: %v", err)
	}
	return cfg.Width, cfg.Height
}

func TestNormalizeDownscalesLargeImages(t *testing.T) {
	tests := []struct {
		name       string
		width      int
		height     int
		wantWidth  int
		wantHeight int
	}{
		{name: "wide landscape", width: 4000, height: 2000, wantWidth: 512, wantHeight: 256},
		{name: "tall portrait", width: 1000, height: 2000, wantWidth: 256, wantHeight: 512},
		{name: "square oversize", width: 1024, height: 1024, wantWidth: 512, wantHeight: 512},
		{name: "within bounds untouched", width: 300, height: 200, wantWidth: 300, wantHeight: 200},
		{name: "exactly at bound", width: 512, height: 512, wantWidth: 512, wantHeight: 512},
	}

	n := NewNormalizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := n.Normalize(encodeTestJPEG(t, tt.width, tt.height), "image/jpeg")
			if err != nil {
				t.Fatalf("Normalize() error = %v", err)
			}
			if result.Width != tt.wantWidth || result.Height != tt.wantHeight {
				t.Errorf("normalized to %dx%d, want %dx%d", result.Width, result.Height, tt.wantWidth, tt.wantHeight)
			}
			if result.MIMEType != "image/jpeg" {
				t.Errorf("MIMEType = %q, want image/jpeg", result.MIMEType)
			}

			// The reported dimensions must match the encoded payload.
			w, h := decodeDimensions(t, result.Data)
			if w != tt.wantWidth || h != tt.wantHeight {
				t.Errorf("encoded payload is %dx%d, want %dx%d", w, h, tt.wantWidth, tt.wantHeight)
			}

			if result.Base64 == "" {
				t.Fatal("expected non-empty base64 body")
			}
			decoded, err := base64.StdEncoding.DecodeString(result.Base64)
			if err != nil {
				t.Fatalf("base64 body does not decode: %v", err)
			}
			if !bytes.Equal(decoded, result.Data) {
				t.Error("base64 body does not match JPEG payload")
			}
		})
	}
}

func TestNormalizeAcceptsPNGInput(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 700, 100))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode PNG: %v", err)
	}

	result, err := NewNormalizer().Normalize(buf.Bytes(), "image/png")
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if result.Width != 512 {
		t.Errorf("width = %d, want 512", result.Width)
	}
	// PNG input is re-encoded as JPEG.
	if result.MIMEType != "image/jpeg" {
		t.Errorf("MIMEType = %q, want image/jpeg", result.MIMEType)
	}
}

func TestNormalizeRejectsNonImage(t *testing.T) {
	tests := []struct {
		name         string
		data         []byte
		declaredType string
	}{
		{name: "declared text type", data: []byte("hello"), declaredType: "text/plain"},
		{name: "sniffed text content", data: []byte("just some text, not pixels"), declaredType: ""},
		{name: "declared pdf", data: []byte("%PDF-1.4"), declaredType: "application/pdf"},
	}

	n := NewNormalizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := n.Normalize(tt.data, tt.declaredType)
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestNormalizeReturnsProcessingErrorForCorruptImage(t *testing.T) {
	// Valid JPEG magic bytes so sniffing passes, but no decodable image data.
	corrupt := append([]byte("\xff\xd8\xff"), bytes.Repeat([]byte{0x00}, 64)...)

	_, err := NewNormalizer().Normalize(corrupt, "image/jpeg")
	var processingErr *ProcessingError
	if !errors.As(err, &processingErr) {
		t.Fatalf("expected ProcessingError, got %v", err)
	}
}

func TestEncodeFramePreservesResolution(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 1920, 1080))

	result, err := NewNormalizer().EncodeFrame(frame)
	if err != nil {
		t.Fatalf("EncodeFrame() error = %v", err)
	}
	// Camera frames are not downscaled.
	if result.Width != 1920 || result.Height != 1080 {
		t.Errorf("frame encoded at %dx%d, want 1920x1080", result.Width, result.Height)
	}

	w, h := decodeDimensions(t, result.Data)
	if w != 1920 || h != 1080 {
		t.Errorf("encoded payload is %dx%d, want 1920x1080", w, h)
	}
}
