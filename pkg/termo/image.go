package termo

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"strings"

	"golang.org/x/image/draw"
)

var ErrInvalidSignatureImage = errors.New("invalid signature image")

// Max decoded size of a signature image, 2MB is plenty for a drawn signature.
const MaxSignatureImageBytes = 2 << 20

// A compressed payload can declare huge dimensions, these bound what gets decoded.
const (
	MaxSignatureImageSide   = 4096
	MaxSignatureImagePixels = 16 << 20
)

// Decode a data URL (data:image/png;base64,...) or plain base64 payload into an image.
func DecodeSignatureImage(payload string) (image.Image, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidSignatureImage)
	}

	if strings.HasPrefix(payload, "data:") {
		header, data, ok := strings.Cut(payload, ",")
		if !ok {
			return nil, fmt.Errorf("%w: malformed data url", ErrInvalidSignatureImage)
		}
		if !strings.HasPrefix(header, "data:image/png") && !strings.HasPrefix(header, "data:image/jpeg") && !strings.HasPrefix(header, "data:image/jpg") {
			return nil, fmt.Errorf("%w: unsupported media type %q", ErrInvalidSignatureImage, strings.TrimPrefix(header, "data:"))
		}
		if !strings.HasSuffix(header, ";base64") {
			return nil, fmt.Errorf("%w: data url must be base64 encoded", ErrInvalidSignatureImage)
		}
		payload = data
	}

	if base64.StdEncoding.DecodedLen(len(payload)) > MaxSignatureImageBytes {
		return nil, fmt.Errorf("%w: image larger than %d bytes", ErrInvalidSignatureImage, MaxSignatureImageBytes)
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignatureImage, err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignatureImage, err)
	}
	if cfg.Width > MaxSignatureImageSide || cfg.Height > MaxSignatureImageSide || cfg.Width*cfg.Height > MaxSignatureImagePixels {
		return nil, fmt.Errorf("%w: image is %dx%d, max side is %d", ErrInvalidSignatureImage, cfg.Width, cfg.Height, MaxSignatureImageSide)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignatureImage, err)
	}

	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidSignatureImage)
	}

	return img, nil
}

// Fit the signature into a width x height canvas (1px = 1pt), keeping the aspect ratio,
// centered on a transparent background, and encode as PNG.
func FitSignature(src image.Image, width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid target size %dx%d", width, height)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.Transparent, image.Point{}, draw.Src)

	sb := src.Bounds()
	scale := min(float64(width)/float64(sb.Dx()), float64(height)/float64(sb.Dy()))
	w := max(int(float64(sb.Dx())*scale), 1)
	h := max(int(float64(sb.Dy())*scale), 1)
	offX := (width - w) / 2
	offY := (height - h) / 2

	draw.CatmullRom.Scale(dst, image.Rect(offX, offY, offX+w, offY+h), src, sb, draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("failed to encode signature png: %w", err)
	}

	return buf.Bytes(), nil
}
