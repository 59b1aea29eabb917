package termo

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSignatureImage(t *testing.T) {
	valid := signatureDataURL(t, 120, 40, color.Black)
	rawBase64 := strings.TrimPrefix(valid, "data:image/png;base64,")

	tests := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{"Data URL", valid, false},
		{"Raw base64", rawBase64, false},
		{"Empty", "   ", true},
		{"Unsupported media type", "data:image/gif;base64," + rawBase64, true},
		{"Not base64 data url", "data:image/png," + rawBase64, true},
		{"Malformed data url", "data:image/png;base64", true},
		{"Invalid base64", "data:image/png;base64,@@@", true},
		{"Not an image", "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("hello")), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := DecodeSignatureImage(tt.payload)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSignatureImage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 120, img.Bounds().Dx())
			assert.Equal(t, 40, img.Bounds().Dy())
		})
	}
}

// A 1x1 PNG whose IHDR claims width x height, the pixel data never matches.
func pngDeclaring(t *testing.T, width, height uint32) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 1, 1))))
	raw := buf.Bytes()

	// signature(8) length(4) "IHDR"(4) width(4) height(4) ... crc after 13 data bytes
	require.Equal(t, "IHDR", string(raw[12:16]))
	binary.BigEndian.PutUint32(raw[16:20], width)
	binary.BigEndian.PutUint32(raw[20:24], height)
	binary.BigEndian.PutUint32(raw[29:33], crc32.ChecksumIEEE(raw[12:29]))
	return raw
}

func TestDecodeSignatureImageRejectsHugeDimensions(t *testing.T) {
	huge := pngDeclaring(t, 60000, 60000)
	require.Less(t, len(huge), 100)

	cfg, err := png.DecodeConfig(bytes.NewReader(huge))
	require.NoError(t, err)
	require.Equal(t, 60000, cfg.Width)

	_, err = DecodeSignatureImage("data:image/png;base64," + base64.StdEncoding.EncodeToString(huge))
	assert.ErrorIs(t, err, ErrInvalidSignatureImage)
	assert.Contains(t, err.Error(), "60000x60000")

	_, err = DecodeSignatureImage(base64.StdEncoding.EncodeToString(pngDeclaring(t, MaxSignatureImageSide+1, 10)))
	assert.ErrorIs(t, err, ErrInvalidSignatureImage)
}

func TestFitSignature(t *testing.T) {
	img, err := DecodeSignatureImage(signatureDataURL(t, 400, 100, color.Black))
	require.NoError(t, err)

	out, err := FitSignature(img, 200, 70)
	require.NoError(t, err)

	decoded, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 200, 70), decoded.Bounds())

	// Outside the stroke the page shows through
	_, _, _, a := decoded.At(0, 69).RGBA()
	assert.Equal(t, uint32(0), a)

	// 400x100 scales to 200x50 centered at y=10, the diagonal crosses (100, 35)
	_, _, _, a = decoded.At(100, 35).RGBA()
	assert.NotZero(t, a)

	_, err = FitSignature(img, 0, 70)
	assert.Error(t, err)
}
