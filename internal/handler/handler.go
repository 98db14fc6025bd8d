// Package handler is the HTTP layer. Handlers bind and validate requests
// through the validation package, call the service layer and write the
// result; errors are left to the global error handler.
package handler
