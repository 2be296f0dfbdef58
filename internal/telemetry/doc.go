// Package telemetry — логи и метрики сервисов ymlfeed.
//
// logging.go настраивает slog по LOG_LEVEL и LOG_FORMAT (json или text)
// и кладёт логгер в context. Хелперы WithFeedID, WithRunID и
// WithScheduleID добавляют идентификаторы, по которым ищут одну
// генерацию фида в логах всех трёх сервисов.
//
// metrics.go объявляет счётчики генераций, выгруженных офферов, повторов
// и запланированных run'ов, а также метрики HTTP API. Они
// регистрируются через promauto и отдаются на /metrics каждого сервиса.
package telemetry
