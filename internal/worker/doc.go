// Package worker генерирует фиды по runs.
//
// # Обзор
//
// Worker — stateless компонент, который выполняет runs, созданные API
// (ручной запуск) или scheduler'ом (по расписанию):
//
//   - получает run.pending из очереди runs.pending (event-driven)
//   - периодически проверяет PENDING runs в БД (polling fallback)
//   - атомарно забирает run (PENDING → RUNNING)
//   - генерирует фид через feed.Generator
//   - публикует run.completed
//
//	w := worker.New(worker.Config{
//	    Runs:      runRepo,
//	    Feeds:     feedRepo,
//	    Generator: generator,
//	    Notifier:  publisher,
//	    Conn:      mqConn,
//	    Logger:    logger,
//	})
//
//	if err := w.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Stop()
//
// # Retry
//
// Retry выполняется в процессе, а не через requeue в RabbitMQ.
// Каждая попытка увеличивает Run.Attempt.
//
// Стратегии backoff:
//   - "exponential": delay = initialDelay * 2^(attempt-1), не больше maxDelay
//   - "fixed": delay = initialDelay
//
// Ошибки параметров фида (нет категорий, первая категория не найдена)
// не повторяются: run сразу получает FAILED.
//
// # Остановка
//
// При остановке прерванный run возвращается в PENDING и будет
// подхвачен другим экземпляром.
package worker
