package api

import (
	"errors"

	"github.com/labstack/echo/v4"

	models "NiftyDash/internal/domain/models"
	domsvc "NiftyDash/internal/domain/service"
	"NiftyDash/internal/usecase"
	xhttp "NiftyDash/pkg/http"
	xlogger "NiftyDash/pkg/logger"
)

// DashboardEchoHandler exposes the dashboard state and user actions over HTTP.
type DashboardEchoHandler struct {
	logger  *xlogger.Logger
	orch    *usecase.Orchestrator
	stream  *DashboardStream
	limiter echo.MiddlewareFunc
}

type HandlerOption func(*DashboardEchoHandler)

// WithStream mounts the websocket stream at /api/ws.
func WithStream(s *DashboardStream) HandlerOption {
	return func(h *DashboardEchoHandler) { h.stream = s }
}

// WithActionLimiter guards the action endpoints with mw.
func WithActionLimiter(mw echo.MiddlewareFunc) HandlerOption {
	return func(h *DashboardEchoHandler) { h.limiter = mw }
}

func NewDashboardEchoHandler(logger *xlogger.Logger, orch *usecase.Orchestrator, opts ...HandlerOption) *DashboardEchoHandler {
	h := &DashboardEchoHandler{logger: logger, orch: orch}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

var _ xhttp.Handler = (*DashboardEchoHandler)(nil)

func (h *DashboardEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/dashboard", h.Dashboard)
	g.GET("/state", h.State)
	g.GET("/notification", h.Notification)
	g.PUT("/view", h.UpdateView)
	if h.stream != nil {
		g.GET("/ws", h.stream.Serve)
	}

	var mws []echo.MiddlewareFunc
	if h.limiter != nil {
		mws = append(mws, h.limiter)
	}
	actions := g.Group("/actions", mws...)
	actions.POST("/predict", h.Predict)
	actions.POST("/train", h.Train)
	actions.POST("/refresh", h.Refresh)
	actions.POST("/health", h.Health)
}

func (h *DashboardEchoHandler) Dashboard(c echo.Context) error {
	return xhttp.SuccessResponse(c, usecase.Project(h.orch.Store().Snapshot()))
}

func (h *DashboardEchoHandler) State(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.orch.Store().Snapshot())
}

func (h *DashboardEchoHandler) Notification(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.orch.Store().Notification())
}

// Predict starts a forecast. Without a body the view's horizon is used.
func (h *DashboardEchoHandler) Predict(c echo.Context) error {
	req := &models.PredictRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if req.Days == nil {
		return h.accepted(c, models.OpPredict, h.orch.Predict(c.Request().Context()))
	}
	started, err := h.orch.PredictDays(c.Request().Context(), *req.Days)
	if err != nil {
		return h.actionError(c, err)
	}
	return h.accepted(c, models.OpPredict, started)
}

func (h *DashboardEchoHandler) Train(c echo.Context) error {
	return h.accepted(c, models.OpTrain, h.orch.Train(c.Request().Context()))
}

func (h *DashboardEchoHandler) Refresh(c echo.Context) error {
	return h.accepted(c, models.OpRefresh, h.orch.RefreshHistorical(c.Request().Context()))
}

func (h *DashboardEchoHandler) Health(c echo.Context) error {
	return h.accepted(c, models.OpHealth, h.orch.CheckHealth(c.Request().Context()))
}

func (h *DashboardEchoHandler) UpdateView(c echo.Context) error {
	req := &models.ViewUpdateRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if err := h.orch.ApplyView(*req); err != nil {
		return h.actionError(c, err)
	}
	return xhttp.SuccessResponse(c, h.orch.Store().View())
}

func (h *DashboardEchoHandler) accepted(c echo.Context, action models.OperationKind, started bool) error {
	if !started {
		h.logger.Debug("action already in progress", xlogger.String("action", string(action)))
	}
	return xhttp.AcceptedResponse(c, models.ActionResponse{Action: action, Started: started})
}

func (h *DashboardEchoHandler) actionError(c echo.Context, err error) error {
	var gerr *domsvc.GatewayError
	if errors.As(err, &gerr) && gerr.Kind == domsvc.KindInvalidArgument {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(gerr.Message).WithError(err))
	}
	h.logger.Error("dashboard action error", xlogger.Error(err))
	return xhttp.AppErrorResponse(c, xhttp.InternalError("action failed").WithError(err))
}
