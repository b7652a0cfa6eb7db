// Package repositories implements SQLite persistence for creators, sets and crawl runs.
//
// Key Implementations:
//   - [CreatorRepository] : creator upserts keyed by the platform id
//   - [SetRepository] : batch set inserts that skip already known URLs
//   - [CrawlRunRepository] : history of successful crawls
//   - [SyncRepository] : one transaction covering all of the above for a crawl
//
// Every write that spans more than one statement runs inside a single transaction
// through [withTx]; repositories accept a [querier] so the same statements serve
// both a plain connection and an open transaction.
package repositories
