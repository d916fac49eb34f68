package users

import (
	"fmt"
	"io"
	"mime/multipart"
)

// readFormFile читает содержимое загруженного файла целиком.
func readFormFile(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("opening form file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("reading form file: %w", err)
	}
	return data, nil
}
