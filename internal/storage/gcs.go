package storage

import (
	"context"
	"fmt"
	"path"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSConfig — настройки выгрузки в Google Cloud Storage.
type GCSConfig struct {
	Bucket string

	// Prefix — префикс имени объекта (по умолчанию "yandex").
	Prefix string

	// CredentialsFile — ключ сервисного аккаунта. Пусто — учётные данные
	// по умолчанию (ADC).
	CredentialsFile string
}

// GCSSink выгружает фиды в бакет.
type GCSSink struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCSSink создаёт клиент GCS.
func NewGCSSink(ctx context.Context, cfg GCSConfig) (*GCSSink, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("gcs bucket is required")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = FeedDir
	}

	return &GCSSink{client: client, bucket: cfg.Bucket, prefix: prefix}, nil
}

// Write загружает фид как объект <prefix>/<name>.
func (s *GCSSink) Write(ctx context.Context, name string, body []byte) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	if len(body) == 0 {
		return "", ErrEmptyBody
	}

	objectName := path.Join(s.prefix, name)
	w := s.client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = "application/xml; charset=utf-8"
	w.CacheControl = "no-cache, max-age=0"

	if _, err := w.Write(body); err != nil {
		w.Close()
		return "", fmt.Errorf("upload gs://%s/%s: %w", s.bucket, objectName, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize gs://%s/%s: %w", s.bucket, objectName, err)
	}

	return fmt.Sprintf("gs://%s/%s", s.bucket, objectName), nil
}

// Close закрывает клиент GCS.
func (s *GCSSink) Close() error {
	return s.client.Close()
}
