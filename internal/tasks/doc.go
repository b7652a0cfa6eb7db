// Package tasks runs a creator crawl from session establishment to persistence.
//
// # State machine
//
// [CrawlEngine.Crawl] moves strictly forward through
//
//	Unauthenticated → SessionEstablished → CreatorResolved → PagesFetching → Persisted
//
// Any failure ends the run in [Aborted] with the error that caused it. Only the
// Persisted step touches storage, and it does so through a single [Store.Save]
// call, so an aborted crawl never leaves partial rows behind.
//
// # Sources
//
// The uploads are read either from the GraphQL uploads connection ([SourceGraphQL],
// the default) or from the public REST cloudcasts listing ([SourceREST]). Both
// paths establish a session and resolve the creator's platform id first.
//
// # Progress Reporting
//
// If [CrawlOpts.Progress] is set, every state change and every fetched page is
// reported as a [ProgressUpdate]. Sends never block: updates are dropped when
// nobody is reading.
package tasks
