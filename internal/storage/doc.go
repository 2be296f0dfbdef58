// Package storage сохраняет сгенерированные фиды.
//
// Sink — место назначения фида:
//   - LocalSink — каталог на диске (<root>/yandex/<alias>.feed.xml),
//     запись атомарная: временный файл + rename;
//   - GCSSink — объект в бакете Google Cloud Storage.
package storage
