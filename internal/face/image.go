package face

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/Sarvveshp/Face-Recognition-Rag/internal/core/model"
)

// DecodeImage decodes a base64 image, with or without a data URL prefix.
func DecodeImage(b64 string) (image.Image, error) {
	if i := strings.Index(b64, "base64,"); i >= 0 {
		b64 = b64[i+len("base64,"):]
	}
	b64 = strings.TrimSpace(b64)
	if b64 == "" {
		return nil, fmt.Errorf("%w: empty image", model.ErrInvalidImage)
	}

	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		// some clients strip the padding
		if data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(b64, "=")); err != nil {
			return nil, fmt.Errorf("%w: %w", model.ErrInvalidImage, err)
		}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrInvalidImage, err)
	}
	return img, nil
}
