// Package cli реализует инструмент командной строки ymlfeed.
//
// # Обзор
//
// CLI — клиентская утилита для взаимодействия с ymlfeed API.
// Работает через HTTP; из внутренних пакетов импортирует только domain
// (параметры фида и их валидацию).
//
// # Ключевые компоненты
//
// ## Client
//
// HTTP-клиент для ymlfeed API. Инкапсулирует все HTTP-запросы,
// парсинг ответов (DataResponse, ListResponse, ErrorResponse)
// и обработку ошибок (APIError).
//
//	client := cli.NewClient("http://localhost:8080")
//	feeds, err := client.ListFeeds()
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON (json.MarshalIndent) — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr.
// Это позволяет использовать pipe: ymlfeed feed preview ID > feed.xml
//
// ## Commands
//
// Cobra-команды организованы по ресурсам:
//   - feed: list, create, show, update, delete, preview, run
//   - run: list, show, cancel
//   - schedule: list, create, show, update, delete, enable, disable
//
// Определение фида для create/update задаётся в YAML (см. FeedFile).
//
// Каждая группа создаётся через фабричную функцию (NewFeedCmd и т.д.),
// принимающую clientFn и outputFn — замыкания для ленивого создания
// Client и Output после парсинга PersistentFlags.
package cli
