// Package scheduler создаёт runs по расписаниям фидов.
//
// Scheduler периодически выбирает schedules с истекшим next_due_at
// и создаёт для каждого PENDING run генерации фида.
//
// Структура:
//   - scheduler.go — Tick и обработка одного schedule
//   - cron.go      — cron-выражения и вычисление следующего времени
//   - leader.go    — цикл тиков под advisory lock
//
// Использование:
//
//	sched := scheduler.New(scheduler.Config{
//	    Schedules: scheduleRepo,
//	    Runs:      runRepo,
//	    Feeds:     feedRepo,
//	    Notifier:  publisher, // опционально
//	    Logger:    logger,
//	})
//
//	loop := scheduler.NewLoop(sched, repo.NewAdvisoryLock(pool, key), time.Second, logger)
//	loop.Run(ctx)
//
// Tick выполняет только лидер: экземпляр, захвативший pg_try_advisory_lock.
package scheduler
