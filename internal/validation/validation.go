// Package validation binds and validates request payloads.
//
// Request types carry validator tags and implement Validatable; failures
// are turned into a 400 *errs.HTTPError with one FieldError per field,
// named after the JSON key the client sent.
package validation
