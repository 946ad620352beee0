// Package middleware provides the HTTP middleware of the console: caller
// identification from the session cookie or a bearer token, the permission
// check guarding each page, and request logging.
package middleware
