// Package models defines the records fetchmixes moves from Mixcloud into its local store.
//
// The package contains two categories of types:
//
// 1. Remote records decoded from Mixcloud responses
//   - [CloudcastSummary] : one entry of the REST cloudcasts listing
//   - [Profile] : the REST user document
//   - [Cloudcast] : a GraphQL upload node, with optional [StreamInfo] and [Picture]
//   - [Upload] and [PageInfo] : one edge and the paging state of an uploads connection
//
// 2. Stored entities
//   - [Creator] : a Mixcloud user keyed by its platform id
//   - [PublishedSet] : a set keyed by its external URL
//   - [CrawlRun] : bookkeeping for one successful crawl
//
// Mandatory remote fields are enforced while decoding; a record missing one fails with
// [shared.ErrData]. Optional remote fields are pointers so that "omitted by the
// platform" (nil) stays distinguishable from an empty value.
package models
