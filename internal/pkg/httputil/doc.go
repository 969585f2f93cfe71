// Package httputil provides shared HTTP response/request utilities for handlers.
//
// Every handler file should use these helpers instead of writing raw
// http.ResponseWriter calls. Mutations answer with a Notice, the short
// success/error/info message the admin front-end shows in its banner.
package httputil
