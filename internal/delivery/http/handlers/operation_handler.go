package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	operationRequest "github.com/LavaJover/shvark-signal-service/internal/delivery/http/dto/operation/request"
	operationResponse "github.com/LavaJover/shvark-signal-service/internal/delivery/http/dto/operation/response"
	signalResponse "github.com/LavaJover/shvark-signal-service/internal/delivery/http/dto/signal/response"
	"github.com/LavaJover/shvark-signal-service/internal/domain"
	"github.com/LavaJover/shvark-signal-service/internal/usecase"
	operationdto "github.com/LavaJover/shvark-signal-service/internal/usecase/dto/operation"
	"github.com/LavaJover/shvark-signal-service/internal/usecase/operation"
	"github.com/LavaJover/shvark-signal-service/internal/usecase/signal"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type OperationHandler struct {
	Lifecycle   operation.OperationLifecycle
	Operations  domain.OperationRepository
	Prices      domain.PriceProvider
	Eligibility usecase.EligibilityChecker
	Users       domain.UserDirectory
	Log         *zap.Logger
}

func (h *OperationHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1")
	group.GET("/operations", h.listOpen)
	group.GET("/operations/:id", h.getOperation)
	group.POST("/operations/:id/close", h.closeOperation)
	group.GET("/eligibility", h.eligibility)
}

func (h *OperationHandler) listOpen(c *gin.Context) {
	ops, err := h.Operations.FindOpenOperations(c.Request.Context(), domain.OperationFilter{
		UserID: strings.TrimSpace(c.Query("user_id")),
		Symbol: signal.NormalizeSymbol(c.Query("symbol")),
		Side:   domain.Direction(strings.ToUpper(strings.TrimSpace(c.Query("side")))),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]operationResponse.OperationResponse, 0, len(ops))
	for _, op := range ops {
		out = append(out, toOperation(op))
	}
	c.JSON(http.StatusOK, out)
}

func (h *OperationHandler) getOperation(c *gin.Context) {
	op, err := h.Operations.GetOperationByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOperation(op))
}

func (h *OperationHandler) closeOperation(c *gin.Context) {
	var req operationRequest.CloseOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, signalResponse.ErrorResponse{Success: false, Error: err.Error()})
		return
	}

	ctx := c.Request.Context()
	operationID := c.Param("id")
	var exitPrice = req.ExitPrice
	if exitPrice == nil {
		op, err := h.Operations.GetOperationByID(ctx, operationID)
		if err != nil {
			writeError(c, err)
			return
		}
		if h.Prices == nil {
			writeError(c, domain.ErrPriceUnavailable)
			return
		}
		price, err := h.Prices.GetPrice(ctx, op.Symbol)
		if err != nil {
			writeError(c, err)
			return
		}
		exitPrice = &price
	}

	out, err := h.Lifecycle.Close(ctx, &operationdto.CloseInput{
		OperationID: operationID,
		ExitPrice:   *exitPrice,
		Reason:      domain.CloseReasonManual,
	})
	if err != nil {
		h.Log.Warn("manual close failed", zap.String("operation_id", operationID), zap.Error(err))
		writeError(c, err)
		return
	}

	resp := operationResponse.CloseOperationResponse{Operation: toOperation(out.Operation)}
	if out.Commission != nil {
		resp.CommissionID = out.Commission.ID
		resp.Commission = out.Commission.Amount.String()
	}
	c.JSON(http.StatusOK, resp)
}

func (h *OperationHandler) eligibility(c *gin.Context) {
	userID := strings.TrimSpace(c.Query("user_id"))
	symbol := signal.NormalizeSymbol(c.Query("symbol"))
	if userID == "" || symbol == "" {
		c.JSON(http.StatusBadRequest, signalResponse.ErrorResponse{Success: false, Error: "user_id and symbol are required"})
		return
	}

	ctx := c.Request.Context()
	trader, err := h.Users.GetTrader(ctx, userID)
	if err != nil {
		writeError(c, err)
		return
	}

	result, err := h.Eligibility.CanOpen(ctx, *trader, symbol)
	if err != nil {
		writeError(c, err)
		return
	}
	resp := operationResponse.EligibilityResponse{
		Allowed:          result.Allowed,
		ReasonCode:       result.ReasonCode,
		MinutesRemaining: result.MinutesRemaining,
	}
	if result.ReasonCode == domain.ReasonInsufficientBalance {
		resp.Required = result.Required.String()
		resp.Available = result.Available.String()
	}
	c.JSON(http.StatusOK, resp)
}
