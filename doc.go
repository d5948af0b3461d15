// Package dailybrief is the Daily Brief backend: one short article per topic
// per day, generated on demand or ingested from RSS, with votes, pins and
// comments from signed-in readers.
//
// Binaries:
//
//   - cmd/server: the HTTP API
//   - cmd/cli: migrations, seeding, feed ingestion, generation and tokens
//
// Packages:
//
//   - internal/content: resolving (date, topic) to an article, generating on miss
//   - internal/parser: turning model output into headline and analysis
//   - internal/topics: the global topic registry and per-user custom topics
//   - internal/generation: Gemini and simulated text generation
//   - internal/feeds: RSS ingestion
//   - internal/repository, internal/database, internal/docstore, internal/storage:
//     persistence on sqlite, postgres or MongoDB
//   - internal/handlers, internal/middleware: the HTTP surface
//   - internal/queue: background ingestion jobs
package dailybrief
