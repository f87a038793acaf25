package api

import (
	"EquitySignal/internal/domain/models"
	"EquitySignal/internal/usecase"
	xhttp "EquitySignal/pkg/http"
	xlogger "EquitySignal/pkg/logger"

	"github.com/labstack/echo/v4"
)

// DecisionEchoHandler exposes the decision pipeline over HTTP.
type DecisionEchoHandler struct {
	logger *xlogger.Logger
	uc     *usecase.DecisionUseCase
}

func NewDecisionEchoHandler(logger *xlogger.Logger, uc *usecase.DecisionUseCase) *DecisionEchoHandler {
	return &DecisionEchoHandler{logger: logger, uc: uc}
}

func (h *DecisionEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/decision", h.Decision)
	g.GET("/regime", h.Regime)
}

func (h *DecisionEchoHandler) Decision(c echo.Context) error {
	req := &models.DecisionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.uc.Decide(c.Request().Context(), usecase.DecideParams{
		Symbol: req.Symbol,
		N:      req.N,
		Fresh:  req.Fresh,
	})
	if err != nil {
		h.logger.Error("decision usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *DecisionEchoHandler) Regime(c echo.Context) error {
	req := &models.RegimeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.uc.Regime(c.Request().Context(), req.Symbol, req.N)
	if err != nil {
		h.logger.Error("regime usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}
