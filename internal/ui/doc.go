// Package ui renders command output and the interactive crawl views.
//
// Plain output ([Palette], [CreatorsTable], [SetsTable], [CrawlsTable],
// [FormatUpdate]) is built with lipgloss and is safe to pipe.
//
// Two bubbletea programs are provided:
//  1. [CrawlModel] : follows a running crawl through its progress channel and
//     shows the state, a spinner, a page counter and a bar against the profile's
//     expected set count, then the result
//  2. [BrowseModel] : a filterable list of stored sets
//
// Progress updates flow through a channel from the [tasks.CrawlEngine], providing
// non-blocking status reporting while pages are fetched.
package ui
