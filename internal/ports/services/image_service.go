package services

import "context"

// ImageService определяет интерфейс преобразования изображений.
type ImageService interface {
	// Resize декодирует изображение, приводит его к указанному размеру
	// и возвращает результат в формате PNG.
	Resize(ctx context.Context, data []byte, width, height int) ([]byte, error)
}
