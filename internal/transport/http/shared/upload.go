package shared

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
)

var ErrMissingUpload = errors.New("a file upload is required")

// ReadUpload reads one multipart file field fully into memory.
func ReadUpload(r *http.Request, field string, maxBytes int64) (string, []byte, error) {
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return "", nil, err
	}
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil, ErrMissingUpload
	}
	if err != nil {
		return "", nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return "", nil, err
	}
	if int64(len(data)) > maxBytes {
		return "", nil, errors.New("uploaded file is too large")
	}
	return filepath.Base(header.Filename), data, nil
}
