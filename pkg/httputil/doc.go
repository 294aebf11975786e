// Package httputil holds the JSON plumbing shared by costgraph's HTTP
// handlers.
//
// # Responses
//
// [WriteJSON] encodes a value with the right content type and status.
// [WriteError] maps coded errors from pkg/errors to HTTP statuses and writes
// a uniform error body:
//
//	{"error": {"code": "NOT_FOUND", "message": "node 9 not found"}}
//
// # Requests
//
// [DecodeJSON] decodes a size-limited body into a value and rejects unknown
// fields and trailing data, so malformed requests fail loudly.
package httputil
