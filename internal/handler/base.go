package handler

import (
	"reflect"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/deppfellow/storefront/internal/middleware"
	"github.com/deppfellow/storefront/internal/server"
	"github.com/deppfellow/storefront/internal/validation"
)

// Handler holds the dependencies shared by every handler.
type Handler struct {
	server *server.Server
}

func NewHandler(s *server.Server) Handler {
	return Handler{server: s}
}

// HandlerFunc is a typed endpoint. Req is a pointer to a request struct.
type HandlerFunc[Req validation.Validatable, Res any] func(c echo.Context, req Req) (Res, error)

// HandlerFuncNoContent is a typed endpoint without a response body.
type HandlerFuncNoContent[Req validation.Validatable] func(c echo.Context, req Req) error

// ResponseHandler writes a successful result and describes it for logs and traces.
type ResponseHandler interface {
	Handle(c echo.Context, result interface{}) error
	GetOperation() string
	AddAttributes(txn *newrelic.Transaction, result interface{})
}

type JSONResponseHandler struct {
	status int
}

func (h JSONResponseHandler) Handle(c echo.Context, result interface{}) error {
	return c.JSON(h.status, result)
}

func (h JSONResponseHandler) GetOperation() string {
	return "handler"
}

func (h JSONResponseHandler) AddAttributes(txn *newrelic.Transaction, result interface{}) {}

type NoContentResponseHandler struct {
	status int
}

func (h NoContentResponseHandler) Handle(c echo.Context, result interface{}) error {
	return c.NoContent(h.status)
}

func (h NoContentResponseHandler) GetOperation() string {
	return "handler_no_content"
}

func (h NoContentResponseHandler) AddAttributes(txn *newrelic.Transaction, result interface{}) {}

// FileResponseHandler sends the []byte result as a download. filename may
// be a func(echo.Context) string when the name depends on the request.
type FileResponseHandler struct {
	status      int
	filename    func(c echo.Context) string
	contentType string
}

func (h FileResponseHandler) Handle(c echo.Context, result interface{}) error {
	data, _ := result.([]byte)
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+h.filename(c)+`"`)
	return c.Blob(h.status, h.contentType, data)
}

func (h FileResponseHandler) GetOperation() string {
	return "handler_file"
}

func (h FileResponseHandler) AddAttributes(txn *newrelic.Transaction, result interface{}) {
	if txn == nil {
		return
	}
	txn.AddAttribute("file.content_type", h.contentType)
	if data, ok := result.([]byte); ok {
		txn.AddAttribute("file.size_bytes", len(data))
	}
}

// newRequest returns a zero value of the type req points to, so concurrent
// requests never bind into the same struct.
func newRequest[Req validation.Validatable](req Req) Req {
	t := reflect.TypeOf(req)
	if t == nil || t.Kind() != reflect.Pointer {
		return req
	}
	return reflect.New(t.Elem()).Interface().(Req)
}

// requestTrace records handler phases on the New Relic transaction, if any.
type requestTrace struct {
	txn   *newrelic.Transaction
	start time.Time
}

func (t requestTrace) phase(name, status string, took time.Duration) {
	if t.txn == nil {
		return
	}
	t.txn.AddAttribute(name+".status", status)
	t.txn.AddAttribute(name+".duration_ms", took.Milliseconds())
}

func (t requestTrace) finish(status string) {
	if t.txn != nil {
		t.txn.AddAttribute("handler.outcome", status)
		t.txn.AddAttribute("total.duration_ms", time.Since(t.start).Milliseconds())
	}
}

// handleRequest binds and validates req, runs handler and writes the result.
func handleRequest[Req validation.Validatable](
	c echo.Context,
	req Req,
	handler func(c echo.Context, req Req) (interface{}, error),
	responseHandler ResponseHandler,
) error {
	trace := requestTrace{txn: newrelic.FromContext(c.Request().Context()), start: time.Now()}
	if trace.txn != nil {
		trace.txn.AddAttribute("handler.name", c.Path())
	}

	logger := middleware.GetLogger(c).With().
		Str("operation", responseHandler.GetOperation()).
		Str("route", c.Path()).
		Logger()

	bindStart := time.Now()
	if err := validation.BindAndValidate(c, req); err != nil {
		took := time.Since(bindStart)
		logger.Warn().Err(err).Dur("validation_duration", took).Msg("request validation failed")
		if trace.txn != nil {
			trace.txn.NoticeError(nrpkgerrors.Wrap(err))
		}
		trace.phase("validation", "failed", took)
		trace.finish("invalid")
		return err
	}
	trace.phase("validation", "success", time.Since(bindStart))

	runStart := time.Now()
	result, err := handler(c, req)
	took := time.Since(runStart)
	if err != nil {
		logger.Debug().Err(err).Dur("handler_duration", took).Msg("handler returned an error")
		trace.phase("handler", "error", took)
		trace.finish("error")
		return err
	}

	trace.phase("handler", "success", took)
	trace.finish("success")
	if trace.txn != nil {
		responseHandler.AddAttributes(trace.txn, result)
	}

	logger.Debug().
		Dur("handler_duration", took).
		Dur("total_duration", time.Since(trace.start)).
		Msg("request completed")
	return responseHandler.Handle(c, result)
}

// Handle registers a typed JSON endpoint:
//
//	api.POST("/cart/items", handler.Handle(h.Handler, h.AddItem, http.StatusOK, &model.AddCartItemPayload{}))
//
// req is only used for its type; every request binds into a fresh value.
func Handle[Req validation.Validatable, Res any](
	h Handler,
	handler HandlerFunc[Req, Res],
	status int,
	req Req,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		return handleRequest(c, newRequest(req), func(c echo.Context, req Req) (interface{}, error) {
			return handler(c, req)
		}, JSONResponseHandler{status: status})
	}
}

// HandleFile registers an endpoint that returns a download.
func HandleFile[Req validation.Validatable](
	h Handler,
	handler HandlerFunc[Req, []byte],
	status int,
	req Req,
	filename func(c echo.Context) string,
	contentType string,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		return handleRequest(c, newRequest(req), func(c echo.Context, req Req) (interface{}, error) {
			return handler(c, req)
		}, FileResponseHandler{
			status:      status,
			filename:    filename,
			contentType: contentType,
		})
	}
}

func HandleNoContent[Req validation.Validatable](
	h Handler,
	handler HandlerFuncNoContent[Req],
	status int,
	req Req,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		return handleRequest(c, newRequest(req), func(c echo.Context, req Req) (interface{}, error) {
			return nil, handler(c, req)
		}, NoContentResponseHandler{status: status})
	}
}
