package media

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"mykitchen/internal/apperr"

	"github.com/nfnt/resize"
)

const jpegQuality = 85

// Prepare decodes an uploaded jpeg or png, shrinks it to maxWidth while
// keeping the aspect ratio, and re-encodes it in its original format.
// Images already narrow enough are re-encoded unchanged.
func Prepare(data []byte, maxWidth int) ([]byte, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", apperr.Validationf("unsupported or corrupt image")
	}

	if maxWidth > 0 && img.Bounds().Dx() > maxWidth {
		img = resize.Resize(uint(maxWidth), 0, img, resize.Lanczos3)
	}

	var out bytes.Buffer
	switch format {
	case "jpeg":
		err = jpeg.Encode(&out, img, &jpeg.Options{Quality: jpegQuality})
	case "png":
		err = png.Encode(&out, img)
	default:
		return nil, "", apperr.Validationf("unsupported image format: %s", format)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode image: %w", err)
	}

	return out.Bytes(), format, nil
}
