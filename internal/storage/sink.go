package storage

import (
	"context"
	"errors"
	"path"
	"strings"
)

// Ошибки записи.
var (
	// ErrEmptyBody — нечего записывать.
	ErrEmptyBody = errors.New("empty feed body")

	// ErrInvalidName — имя файла пустое или выходит за пределы каталога.
	ErrInvalidName = errors.New("invalid feed file name")
)

// Sink — место назначения фида.
type Sink interface {
	// Write сохраняет body под именем name и возвращает итоговое
	// расположение (путь к файлу или gs:// URL).
	Write(ctx context.Context, name string, body []byte) (string, error)
}

// FeedDir — подкаталог, в который складываются фиды.
const FeedDir = "yandex"

// FileName возвращает имя файла фида по алиасу категории.
func FileName(alias string) string {
	return alias + ".feed.xml"
}

// validateName проверяет, что имя — одно имя файла без пути.
func validateName(name string) error {
	if name == "" || name == "." || name == ".." {
		return ErrInvalidName
	}
	if strings.ContainsAny(name, `/\`) || path.Base(name) != name {
		return ErrInvalidName
	}
	return nil
}
