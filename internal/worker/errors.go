package worker

import "errors"

// Ошибки воркера.
var (
	// ErrRunNotFound — run не найден в БД.
	ErrRunNotFound = errors.New("run not found")

	// ErrRunNotPending — run уже забран другим воркером или завершён.
	ErrRunNotPending = errors.New("run is not in PENDING status")

	// ErrFeedNotFound — фид run'а удалён.
	ErrFeedNotFound = errors.New("feed not found")

	// ErrGenerationTimeout — генерация превысила таймаут.
	ErrGenerationTimeout = errors.New("generation timeout")
)
