package sqlerr

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/deppfellow/storefront/internal/errs"
)

// TablePrefix tags not-found errors with the table they refer to:
//
//	fmt.Errorf("table:products: %w", pgx.ErrNoRows)
const TablePrefix = "table:"

type entity struct {
	name string
	code string
}

// entities names the store tables the way customers and staff see them.
var entities = map[string]entity{
	"products":               {name: "Product", code: "PRODUCT"},
	"users":                  {name: "Account", code: "ACCOUNT"},
	"carts":                  {name: "Cart", code: "CART"},
	"cart_items":             {name: "Cart item", code: "CART_ITEM"},
	"orders":                 {name: "Order", code: "ORDER"},
	"order_items":            {name: "Order item", code: "ORDER_ITEM"},
	"contact_messages":       {name: "Message", code: "CONTACT_MESSAGE"},
	"whatsapp_sessions":      {name: "Chat session", code: "CHAT_SESSION"},
	"email_campaigns":        {name: "Campaign", code: "CAMPAIGN"},
	"newsletter_subscribers": {name: "Subscriber", code: "SUBSCRIBER"},
}

// constraintError is the response for a constraint a client can trip.
type constraintError struct {
	code    string
	message string
	field   string
	detail  string
}

var constraints = map[string]constraintError{
	"users_email_key": {
		code:    "EMAIL_ALREADY_REGISTERED",
		message: "An account with this email already exists",
		field:   "email",
		detail:  "is already registered",
	},
	"products_slug_key": {
		code:    "PRODUCT_SLUG_TAKEN",
		message: "A product with this slug already exists",
		field:   "slug",
		detail:  "is already taken",
	},
	"newsletter_subscribers_email_key": {
		code:    "ALREADY_SUBSCRIBED",
		message: "This email is already subscribed",
		field:   "email",
		detail:  "is already subscribed",
	},
	"orders_status_check": {
		code:    "ORDER_STATUS_INVALID",
		message: "The order status is not valid",
		field:   "status",
		detail:  "is not allowed",
	},
	"email_campaigns_status_check": {
		code:    "CAMPAIGN_STATUS_INVALID",
		message: "The campaign status is not valid",
		field:   "status",
		detail:  "is not allowed",
	},
}

// ErrCode reports the Code of the first *Error in err's chain, Other if none.
func ErrCode(err error) Code {
	var pgerr *Error
	if errors.As(err, &pgerr) {
		return pgerr.Code
	}
	return Other
}

// ConvertPgError converts a raw PostgreSQL error into an *Error.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapCode(src.Code),
		Severity:       MapSeverity(src.Severity),
		DatabaseCode:   src.Code,
		Message:        src.Message,
		SchemaName:     src.SchemaName,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		DataTypeName:   src.DataTypeName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}

// NotFound tags pgx.ErrNoRows with the table it came from.
func NotFound(table string) error {
	return fmt.Errorf("%s%s: %w", TablePrefix, table, pgx.ErrNoRows)
}

// lookupEntity falls back to the humanized singular table name for tables
// outside the registry.
func lookupEntity(table string) entity {
	if e, ok := entities[table]; ok {
		return e
	}
	if table == "" {
		return entity{name: "Record", code: "RECORD"}
	}
	single := strings.TrimSuffix(table, "s")
	return entity{
		name: cases.Title(language.English).String(strings.ReplaceAll(single, "_", " ")),
		code: strings.ToUpper(single),
	}
}

// referencedEntity names the row a foreign key points at: product_id -> products.
func referencedEntity(column, table string) entity {
	if col := strings.ToLower(column); strings.HasSuffix(col, "_id") {
		return lookupEntity(strings.TrimSuffix(col, "_id") + "s")
	}
	return lookupEntity(table)
}

// tableFromError extracts the table tagged by NotFound, if any.
func tableFromError(err error) string {
	msg := err.Error()
	idx := strings.Index(msg, TablePrefix)
	if idx < 0 {
		return ""
	}
	rest := msg[idx+len(TablePrefix):]
	if end := strings.Index(rest, ":"); end >= 0 {
		return rest[:end]
	}
	return ""
}

func fieldErrors(field, message string) []errs.FieldError {
	if field == "" {
		return nil
	}
	return []errs.FieldError{{Field: field, Error: message}}
}

func fromPgError(sqlErr *Error) error {
	if known, ok := constraints[sqlErr.ConstraintName]; ok {
		code := known.code
		return errs.NewBadRequestError(known.message, true, &code, fieldErrors(known.field, known.detail), nil)
	}

	switch sqlErr.Code {
	case ForeignKeyViolation:
		ref := referencedEntity(sqlErr.ColumnName, sqlErr.TableName)
		code := ref.code + "_NOT_FOUND"
		return errs.NewBadRequestError(fmt.Sprintf("The referenced %s does not exist", strings.ToLower(ref.name)), false, &code, nil, nil)

	case UniqueViolation:
		ent := lookupEntity(sqlErr.TableName)
		code := ent.code + "_ALREADY_EXISTS"
		return errs.NewBadRequestError(fmt.Sprintf("%s already exists", ent.name), true, &code, nil, nil)

	case NotNullViolation:
		ent := lookupEntity(sqlErr.TableName)
		code := ent.code + "_REQUIRED"
		field := strings.ToLower(sqlErr.ColumnName)
		return errs.NewBadRequestError(fmt.Sprintf("%s is missing %s", ent.name, strings.ReplaceAll(field, "_", " ")),
			true, &code, fieldErrors(field, "is required"), nil)

	case CheckViolation:
		ent := lookupEntity(sqlErr.TableName)
		code := ent.code + "_INVALID"
		return errs.NewBadRequestError(fmt.Sprintf("%s has an invalid value", ent.name), true, &code, nil, nil)

	case InvalidTextValue:
		return errs.NewBadRequestError("One or more identifiers are malformed", true, nil, nil, nil)
	}

	return errs.NewInternalServerError()
}

// HandleError converts a database error into an API error. *errs.HTTPError
// passes through unchanged and anything unrecognised becomes a 500.
func HandleError(err error) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		return fromPgError(ConvertPgError(pgerr))
	}

	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		if table := tableFromError(err); table != "" {
			ent := lookupEntity(table)
			code := ent.code + "_NOT_FOUND"
			return errs.NewNotFoundError(ent.name+" not found", true, &code)
		}
		return errs.NewNotFoundError("Resource not found", false, nil)
	}

	return errs.NewInternalServerError()
}
