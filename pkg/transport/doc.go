// Package transport defines the platform interface served over HTTP and
// the middleware chain shared by every route.
//
// Built-in middleware provides panic recovery, request ID assignment
// (X-Request-ID, generated with github.com/google/uuid when absent),
// structured access logging via log/slog, and CORS. Errors are written
// as the pkg/api ErrorResponse envelope with the status code derived from
// the APIError type.
//
// The route table itself lives in the http subpackage.
package transport
