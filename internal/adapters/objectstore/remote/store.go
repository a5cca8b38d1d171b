// Package remote sube fotos a un bucket HTTP (API estilo storage:
// POST {base}/object/{bucket}/{path}, lectura pública en
// {base}/object/public/{bucket}/{path}).
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"animal-rescue/internal/platform/httpclient"
)

type Store struct {
	client        *httpclient.Client
	bucket        string
	publicBaseURL string
	customPublic  bool
}

type Options struct {
	BaseURL string // ej: https://xyz.example.co/storage/v1
	APIKey  string
	Bucket  string

	// PublicBaseURL reemplaza {base}/object/public/{bucket} si viene (CDN).
	PublicBaseURL string
	Timeout       time.Duration
}

func NewStore(opts Options) (*Store, error) {
	if strings.TrimSpace(opts.Bucket) == "" {
		return nil, errors.New("bucket is required")
	}
	c, err := httpclient.NewWithBaseURL(opts.BaseURL, opts.Timeout)
	if err != nil {
		return nil, err
	}
	if c.BaseURL == "" {
		return nil, errors.New("object store url is required")
	}
	return newStore(c, opts), nil
}

func newStore(c *httpclient.Client, opts Options) *Store {
	if key := strings.TrimSpace(opts.APIKey); key != "" {
		c.Headers["Authorization"] = "Bearer " + key
		c.Headers["apikey"] = key
	}

	public := strings.TrimRight(opts.PublicBaseURL, "/")
	custom := public != ""
	if !custom {
		public = c.BaseURL + "/object/public/" + opts.Bucket
	}
	return &Store{client: c, bucket: opts.Bucket, publicBaseURL: public, customPublic: custom}
}

// Upload no pisa objetos existentes (x-upsert: false).
func (s *Store) Upload(ctx context.Context, path, contentType string, body io.Reader, size int64) error {
	return s.client.Upload(ctx, http.MethodPost, "/object/"+s.bucket+"/"+escapePath(path), map[string]string{
		"x-upsert":      "false",
		"cache-control": "max-age=3600",
	}, contentType, body, size)
}

type bucketInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Public bool   `json:"public"`
}

// CheckBucket confirma que el bucket existe. Si no es público y no hay
// PublicBaseURL, las URLs que devuelve PublicURL no se podrían abrir.
func (s *Store) CheckBucket(ctx context.Context) error {
	var info bucketInfo
	if err := s.client.DoJSON(ctx, http.MethodGet, "/bucket/"+url.PathEscape(s.bucket), nil, nil, &info); err != nil {
		return fmt.Errorf("bucket %q: %w", s.bucket, err)
	}
	if !info.Public && !s.customPublic {
		return fmt.Errorf("bucket %q is not public", s.bucket)
	}
	return nil
}

func (s *Store) PublicURL(path string) string {
	return s.publicBaseURL + "/" + escapePath(path)
}

func escapePath(p string) string {
	parts := strings.Split(strings.TrimLeft(p, "/"), "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
