// Package sqlerr turns database driver errors into API errors.
//
// It maps SQLSTATE codes from PostgreSQL into a small set of categories and
// converts them into *errs.HTTPError values with stable machine codes such
// as PRODUCT_ALREADY_EXISTS or ORDER_NOT_FOUND.
package sqlerr
