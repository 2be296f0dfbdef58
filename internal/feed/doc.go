// Package feed строит YML-фид (Яндекс Маркет) из материалов CMS.
//
// Конвейер генерации:
//
//	категории CMS → catalog.Tree.Expand → BuildQuery → ArticleSource.List
//	             → Renderer.Render → storage.Sink.Write
//
// Структура:
//   - query.go     — фильтр материалов по категориям и ID
//   - text.go      — очистка HTML, текстовые переменные
//   - url.go       — ссылки на материалы и изображения
//   - yml.go       — XML-структура документа yml_catalog
//   - render.go    — сборка документа из материалов
//   - generator.go — весь конвейер от чтения БД до записи файла
package feed
