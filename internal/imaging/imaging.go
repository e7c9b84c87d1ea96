// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging validates uploaded image files and downscales oversized
// covers before they reach object storage. Decoding is bounded by a pixel
// cap so a crafted file cannot exhaust memory.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // register GIF decoder
	"image/jpeg"
	_ "image/png" // register PNG decoder
	"net/http"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	// MaxUploadSize is the maximum allowed file upload size (20 MB).
	MaxUploadSize = 20 << 20

	// maxImagePixels caps the number of pixels to prevent memory bombs.
	// 10000x10000 = 100 million pixels, ~400 MB decoded in RGBA.
	maxImagePixels = 100_000_000

	// CoverMaxWidth is the width covers are downscaled to when larger.
	CoverMaxWidth = 1920

	// coverQuality is the JPEG quality for downscaled covers.
	coverQuality = 85
)

// allowedTypes defines MIME types accepted for post images.
var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// DetectType sniffs the content type from the file bytes, correcting the
// generic XML detection for files named .svg. SVGs are rejected for post
// images anyway, but the caller gets an honest type in the error.
func DetectType(data []byte, filename string) string {
	contentType := http.DetectContentType(data)
	if strings.HasSuffix(strings.ToLower(filename), ".svg") &&
		(strings.Contains(contentType, "xml") || strings.Contains(contentType, "text/plain")) {
		return "image/svg+xml"
	}
	return contentType
}

// Validate checks that the bytes are an acceptable post image: an allowed
// raster type, within the size limit, and decodable within the pixel cap.
// It returns the sniffed content type.
func Validate(data []byte, filename string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty file")
	}
	if len(data) > MaxUploadSize {
		return "", fmt.Errorf("file too large: %d bytes exceeds %d", len(data), MaxUploadSize)
	}

	contentType := DetectType(data, filename)
	if !allowedTypes[contentType] {
		return "", fmt.Errorf("file type %q is not allowed", contentType)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode config: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxImagePixels {
		return "", fmt.Errorf("image too large: %dx%d exceeds %d pixels", cfg.Width, cfg.Height, maxImagePixels)
	}

	return contentType, nil
}

// DownscaleCover re-encodes a cover as JPEG constrained to maxWidth while
// preserving aspect ratio. Returns (nil, "") when the image is already
// narrow enough or animated (GIF), in which case the original bytes should
// be stored as-is.
func DownscaleCover(data []byte, contentType string, maxWidth int) ([]byte, string, error) {
	// GIFs keep their animation; never re-encode them.
	if contentType == "image/gif" {
		return nil, "", nil
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode config: %w", err)
	}
	if cfg.Width <= maxWidth {
		return nil, "", nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	ratio := float64(maxWidth) / float64(bounds.Dx())
	newWidth := maxWidth
	newHeight := int(float64(bounds.Dy()) * ratio)

	// Resize using CatmullRom (high quality).
	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: coverQuality}); err != nil {
		return nil, "", fmt.Errorf("encode cover: %w", err)
	}
	return buf.Bytes(), "image/jpeg", nil
}
