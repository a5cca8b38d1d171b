package reports

import (
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"
)

const MaxPhotoSize = 5 * 1024 * 1024

// tipos aceptados -> extensión por defecto
var allowedPhotoTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Photo es el archivo opcional que acompaña un reporte.
type Photo struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// MediaType normaliza el Content-Type (sin parámetros, minúsculas).
func (p Photo) MediaType() string {
	mt, _, err := mime.ParseMediaType(p.ContentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(p.ContentType))
	}
	return strings.ToLower(mt)
}

// Validate corre antes de cualquier llamada al object store.
func (p Photo) Validate() error {
	if p.Body == nil {
		return fmt.Errorf("%w: photo body missing", ErrInvalidInput)
	}
	if p.Size > MaxPhotoSize {
		return ErrPhotoTooLarge
	}
	if _, ok := allowedPhotoTypes[p.MediaType()]; !ok {
		return ErrPhotoType
	}
	return nil
}

// objectName: <unix millis>-<token><ext>. La extensión sale del nombre
// original; si no tiene, del content type.
func objectName(now time.Time, token string, p Photo) string {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(p.Filename)))
	if ext == "" || ext == "." {
		ext = allowedPhotoTypes[p.MediaType()]
	}
	return fmt.Sprintf("%d-%s%s", now.UnixMilli(), token, ext)
}
