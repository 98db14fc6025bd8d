// Package errs defines the client-facing error shape of the API.
//
// Every handler and service failure that reaches a client is an *HTTPError:
// a machine code, a human message, the HTTP status, optional field errors
// for forms and an optional action hint (e.g. redirect to login).
package errs
