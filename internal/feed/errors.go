package feed

import "errors"

// Ошибки генерации фида.
var (
	// ErrPrimaryCategory — первая выбранная категория не найдена
	// (по ней строится имя файла и информация о магазине).
	ErrPrimaryCategory = errors.New("primary category not found")

	// ErrInvalidParams — параметры фида не прошли валидацию.
	ErrInvalidParams = errors.New("invalid feed params")

	// ErrRender — ошибка сериализации документа.
	ErrRender = errors.New("render feed")
)
