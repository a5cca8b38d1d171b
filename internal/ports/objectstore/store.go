package objectstore

import (
	"context"
	"io"
)

// Store guarda binarios (fotos) bajo un path y resuelve su URL pública.
type Store interface {
	Upload(ctx context.Context, path, contentType string, body io.Reader, size int64) error
	PublicURL(path string) string
}
