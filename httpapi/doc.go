// Package httpapi is the HTTP request layer of the reservation engine.
//
// It maps requests to the command and query handlers, reads the acting user from the X-Actor-ID and
// X-Actor-Role headers, and translates rejections to status codes. Bodies are JSON.
package httpapi
