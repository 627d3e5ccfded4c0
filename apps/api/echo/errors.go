package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/bulk"
	"github.com/trezcool/ratiba/core/listview"
	"github.com/trezcool/ratiba/core/workload"
)

var errHttpNotFound = echo.NewHTTPError(http.StatusNotFound, "not found")

// sentinelCodes maps the domain sentinel errors to their HTTP status.
// A slice and not a map: the cause of an error is not always hashable.
var sentinelCodes = []struct {
	err  error
	code int
}{
	{workload.ErrTeacherNotFound, http.StatusNotFound},
	{workload.ErrAssignmentExists, http.StatusConflict},
	{workload.ErrInvalidScope, http.StatusBadRequest},
	{bulk.ErrInvalidFormat, http.StatusBadRequest},
	{bulk.ErrNoRecipients, http.StatusBadRequest},
	{listview.ErrUnknownKey, http.StatusBadRequest},
}

func sentinelCode(err error) (int, bool) {
	for _, sc := range sentinelCodes {
		if err == sc.err {
			return sc.code, true
		}
	}
	return 0, false
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(core.Translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if fldErrs := origErr.FieldMap(); fldErrs != nil {
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		case *workload.EmptyScopeError:
			code = http.StatusUnprocessableEntity
			message = origErr.Error()
		default:
			if c, ok := sentinelCode(origErr); ok {
				code = c
				message = origErr.Error()
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg
			logger.Error(msg, errors.Wrap(err, msg), map[string]interface{}{
				"method": ctx.Request().Method,
				"path":   ctx.Path(),
			})

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
