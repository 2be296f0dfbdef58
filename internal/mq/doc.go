// Package mq — RabbitMQ для передачи runs между сервисами.
//
// Структура:
//   - connection.go — соединение с автоматическим переподключением
//   - topology.go   — exchanges, queues, bindings
//   - publisher.go  — публикация событий
//   - consumer.go   — потребление с ack/nack
//
// Сообщения:
//   - run.pending   — run создан (API или scheduler), его забирает worker
//   - run.completed — генерация фида завершена (успешно или с ошибкой)
//
// Exchanges:
//   - ymlfeed.runs — события runs
//   - ymlfeed.dlq  — dead letter для runs.pending
package mq
