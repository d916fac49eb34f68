// Package images содержит нормализацию загружаемых изображений.
package images

import (
	"bytes"
	"context"
	"fmt"

	"github.com/disintegration/imaging"

	"gotasker/internal/domain/entities"
	svc "gotasker/internal/ports/services"
)

const (
	errCtxDecodingImage = "decoding image"
	errCtxEncodingImage = "encoding image"
)

// Resizer приводит изображения к заданному размеру и кодирует их в PNG.
type Resizer struct{}

// NewResizer создает новый экземпляр Resizer.
func NewResizer() svc.ImageService {
	return &Resizer{}
}

// Resize декодирует изображение, масштабирует его с обрезкой по центру
// и возвращает PNG. Некорректные данные отклоняются как
// неподдерживаемое изображение.
func (r *Resizer) Resize(_ context.Context, data []byte, width, height int) ([]byte, error) {
	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtxDecodingImage, entities.ErrUnsupportedImage)
	}

	resized := imaging.Fill(src, width, height, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.PNG); err != nil {
		return nil, fmt.Errorf("%s: %w", errCtxEncodingImage, err)
	}

	return buf.Bytes(), nil
}
