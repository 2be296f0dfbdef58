package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalSink пишет фиды в каталог <Root>/yandex.
type LocalSink struct {
	dir string
}

// NewLocalSink создаёт LocalSink с корнем root.
func NewLocalSink(root string) *LocalSink {
	return &LocalSink{dir: filepath.Join(root, FeedDir)}
}

// Dir возвращает каталог с фидами.
func (s *LocalSink) Dir() string {
	return s.dir
}

// Write атомарно записывает файл: читатель видит либо старую,
// либо новую версию фида целиком.
func (s *LocalSink) Write(ctx context.Context, name string, body []byte) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	if len(body) == 0 {
		return "", ErrEmptyBody
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create feed dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	// Временный файл удаляется при любой ошибке до rename
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return "", fmt.Errorf("chmod temp file: %w", err)
	}

	target := filepath.Join(s.dir, name)
	if err := os.Rename(tmpName, target); err != nil {
		return "", fmt.Errorf("rename feed file: %w", err)
	}
	committed = true

	return target, nil
}
