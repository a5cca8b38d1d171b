// Package local guarda las fotos en disco y las sirve bajo un prefijo HTTP.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"animal-rescue/internal/platform/logger"
)

var ErrNotFound = errors.New("photo not found")

type Store struct {
	basePath      string
	publicBaseURL string
	log           logger.Logger
}

// NewStore crea el directorio si no existe. publicBaseURL es el prefijo con
// el que se arman las URLs públicas (p.ej. "/photos" o "https://host/photos").
func NewStore(basePath, publicBaseURL string, log logger.Logger) (*Store, error) {
	if strings.TrimSpace(basePath) == "" {
		return nil, errors.New("photo base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create photo directory: %w", err)
	}
	if log == nil {
		log = logger.NewNop()
	}
	if publicBaseURL == "" {
		publicBaseURL = "/photos"
	}
	return &Store{
		basePath:      basePath,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		log:           log,
	}, nil
}

// Upload no pisa archivos existentes.
func (s *Store) Upload(_ context.Context, path, _ string, body io.Reader, _ int64) error {
	filePath, err := s.safeJoin(path)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := io.Copy(f, body); err != nil {
		if cerr := f.Close(); cerr != nil {
			s.log.Error("failed to close file after write error", map[string]any{"err": cerr})
		}
		if rerr := os.Remove(filePath); rerr != nil {
			s.log.Error("failed to remove file after write error", map[string]any{"err": rerr})
		}
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := f.Close(); err != nil {
		if rerr := os.Remove(filePath); rerr != nil {
			s.log.Error("failed to remove file after close error", map[string]any{"err": rerr})
		}
		return fmt.Errorf("failed to close file: %w", err)
	}
	return nil
}

func (s *Store) PublicURL(path string) string {
	return s.publicBaseURL + "/" + strings.TrimLeft(path, "/")
}

func (s *Store) Open(_ context.Context, path string) (io.ReadCloser, string, error) {
	filePath, err := s.safeJoin(path)
	if err != nil {
		return nil, "", err
	}
	f, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}
	return f, extToMimeType(filePath), nil
}

// Handler sirve GET <prefix>/<path>. Montarlo con http.StripPrefix.
func (s *Store) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rc, mimeType, err := s.Open(r.Context(), strings.TrimPrefix(r.URL.Path, "/"))
		if err != nil {
			http.NotFound(w, r)
			return
		}
		defer rc.Close()

		w.Header().Set("Content-Type", mimeType)
		w.Header().Set("Cache-Control", "public, max-age=3600")
		if _, err := io.Copy(w, rc); err != nil {
			s.log.Warn("write photo failed", map[string]any{"path": r.URL.Path, "err": err})
		}
	})
}

// safeJoin resuelve path dentro de basePath y rechaza traversal.
func (s *Store) safeJoin(path string) (string, error) {
	absBase, err := filepath.Abs(s.basePath)
	if err != nil {
		return "", fmt.Errorf("invalid base path: %w", err)
	}
	absPath, err := filepath.Abs(filepath.Join(s.basePath, path))
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}
	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", errors.New("path traversal attempt")
	}
	return absPath, nil
}

func extToMimeType(filePath string) string {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
