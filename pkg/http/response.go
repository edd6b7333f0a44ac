package http

import (
	"errors"
	"net/http"

	applogger "NiftyDash/pkg/logger"

	"github.com/labstack/echo/v4"
)

// APIResponse is the envelope of every JSON answer served by the dashboard.
type APIResponse struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func respond(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, APIResponse{Status: status, Message: http.StatusText(status), Data: data})
}

func SuccessResponse(c echo.Context, data interface{}) error {
	return respond(c, http.StatusOK, data)
}

// AcceptedResponse is used for actions whose outcome arrives later through
// the state stream.
func AcceptedResponse(c echo.Context, data interface{}) error {
	return respond(c, http.StatusAccepted, data)
}

func BadRequestResponse(c echo.Context, data interface{}) error {
	return respond(c, http.StatusBadRequest, data)
}

// AppErrorResponse writes err as a one-element error list. Errors that are not
// *AppError become a generic 500.
func AppErrorResponse(c echo.Context, err error) error {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = InternalError("Something went wrong").WithError(err)
	}
	return respond(c, appErr.Status, []*AppError{appErr})
}

// ErrorHandler renders echo's own errors (unknown route, bad method, bind
// failures) in the same envelope as handler errors.
func ErrorHandler(l *applogger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		var he *echo.HTTPError
		if errors.As(err, &he) {
			msg, _ := he.Message.(string)
			if msg == "" {
				msg = http.StatusText(he.Code)
			}
			err = newAppError(he.Code, "ERR_HTTP", msg).WithError(he.Internal)
		}
		if werr := AppErrorResponse(c, err); werr != nil {
			l.Warn("write error response", applogger.Error(werr))
		}
	}
}
