// Package api содержит HTTP API сервер ymlfeed.
//
// Структура:
//   - handler.go          — Handler с DI (хранилища, previewer, notifier, logger)
//   - routes.go           — регистрация маршрутов
//   - middleware.go       — middleware (recovery, metrics, logging)
//   - response.go         — унифицированные JSON-ответы и обработка ошибок
//   - dto.go              — Data Transfer Objects (request/response)
//   - feed_handler.go     — обработчики для /feeds
//   - run_handler.go      — обработчики для /runs
//   - schedule_handler.go — обработчики для /schedules
//
// API предоставляет REST endpoints для управления фидами, их генерациями
// и расписаниями, а также предпросмотр YML документа.
package api
