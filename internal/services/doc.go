// Package services talks to Mixcloud.
//
// # Transport
//
// [APIService] performs raw GET and POST requests, paced by a token-bucket limiter,
// and hands back status, headers, cookies and body without interpreting them.
//
// # Mixcloud
//
// [MixcloudService] implements [Platform] on top of the transport:
//   - EstablishSession harvests the csrftoken cookie from a profile page into a [Session]
//   - Profile and Cloudcasts read the public REST API (api.mixcloud.com)
//   - ResolveCreator and Uploads use the GraphQL endpoint, authenticated by the [Session]
//
// The [Session] is a plain value passed to every GraphQL call; the service keeps no
// authentication state of its own.
//
// # Pagination
//
// [Paginate] walks a GraphQL uploads connection one page at a time. The cursor for the
// next request is the cursor of the last edge received, not pageInfo.endCursor. The
// walk ends when pageInfo.hasNextPage is false or a page comes back without edges.
//
// # Error Handling
//
// Errors wrap the sentinels from the shared package:
//   - [shared.ErrAuth] : no csrftoken cookie on the profile page
//   - [shared.ErrNetwork] : transport failure or non-2xx status
//   - [shared.ErrData] : a response did not decode into the expected records
//   - [shared.ErrCreatorNotFound] : GraphQL knows no such user
package services
