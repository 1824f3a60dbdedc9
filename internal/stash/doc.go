// Package stash talks to the upstream Stash GraphQL API.
//
// Client is the transport: it POSTs one of the fixed queries in queries.go
// and returns the raw "data" payload. Any failure to reach the API or to get
// a well-formed, error-free GraphQL response is wrapped in *UpstreamError so
// the scrape loop can tell an upstream outage apart from a programming
// defect.
//
// Fetcher sits on top of the transport and knows the query shapes: it
// retrieves the library statistics snapshot and the full scene working set,
// transparently paginating the latter and enforcing the configured maximum
// scene count. Fields absent from a response decode to their zero values —
// schema drift on the Stash side degrades metrics, it never aborts a cycle.
//
// Authentication (ApiKey header, key resolved from an environment variable)
// and TLS options are handled by the authRoundTripper built in NewClient.
package stash
