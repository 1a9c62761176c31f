package handlers

import (
	"errors"
	"net/http"
	"time"

	affiliateResponse "github.com/LavaJover/shvark-signal-service/internal/delivery/http/dto/affiliate/response"
	operationResponse "github.com/LavaJover/shvark-signal-service/internal/delivery/http/dto/operation/response"
	signalResponse "github.com/LavaJover/shvark-signal-service/internal/delivery/http/dto/signal/response"
	"github.com/LavaJover/shvark-signal-service/internal/domain"
	operationdto "github.com/LavaJover/shvark-signal-service/internal/usecase/dto/operation"
	"github.com/gin-gonic/gin"
)

func writeError(c *gin.Context, err error) {
	c.JSON(statusFor(err), signalResponse.ErrorResponse{Success: false, Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyClosed),
		errors.Is(err, domain.ErrLinkAlreadyExists),
		errors.Is(err, domain.ErrLinkNotPending),
		errors.Is(err, domain.ErrLinkNotActive),
		errors.Is(err, domain.ErrCommissionNotPending):
		return http.StatusConflict
	case errors.Is(err, domain.ErrLinkingWindowExpired),
		errors.Is(err, domain.ErrLinkRequestExpired),
		errors.Is(err, domain.ErrSelfLink),
		errors.Is(err, domain.ErrInvalidRate),
		errors.Is(err, domain.ErrInvalidFormat):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrPriceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func toSummary(summary *operationdto.BatchSummary) *signalResponse.BatchSummary {
	if summary == nil {
		return nil
	}
	out := &signalResponse.BatchSummary{
		UsersProcessed:   summary.UsersProcessed,
		OperationsOpened: summary.OperationsOpened,
		OperationsClosed: summary.OperationsClosed,
		Skipped:          summary.Skipped,
		Errors:           summary.Errors,
		PerUserDetail:    make([]signalResponse.UserDetail, 0, len(summary.Details)),
	}
	for _, d := range summary.Details {
		out.PerUserDetail = append(out.PerUserDetail, signalResponse.UserDetail{
			UserID:      d.UserID,
			OperationID: d.OperationID,
			Outcome:     string(d.Outcome),
			ReasonCode:  d.ReasonCode,
			Message:     d.Message,
		})
	}
	return out
}

func toOperation(op *domain.Operation) operationResponse.OperationResponse {
	out := operationResponse.OperationResponse{
		ID:            op.ID,
		UserID:        op.UserID,
		Symbol:        op.Symbol,
		Side:          string(op.Side),
		EntryPrice:    op.EntryPrice.String(),
		Quantity:      op.Quantity.String(),
		Leverage:      op.Leverage,
		TakeProfit:    op.TakeProfit.String(),
		StopLoss:      op.StopLoss.String(),
		Status:        string(op.Status),
		OpenedAt:      formatTime(op.OpenedAt),
		ClosedAt:      formatTimePtr(op.ClosedAt),
		PnL:           op.PnL.String(),
		PnLPercentage: op.PnLPercentage.String(),
		CloseReason:   string(op.CloseReason),
		SignalID:      op.SignalID,
	}
	if op.ExitPrice != nil {
		exit := op.ExitPrice.String()
		out.ExitPrice = &exit
	}
	return out
}

func toLink(link *domain.AffiliateLink) affiliateResponse.LinkResponse {
	return affiliateResponse.LinkResponse{
		ID:                 link.ID,
		AffiliateID:        link.AffiliateID,
		UserID:             link.UserID,
		Status:             string(link.Status),
		RequestedAt:        formatTime(link.RequestedAt),
		ExpiresAt:          formatTime(link.ExpiresAt),
		LinkedAt:           formatTimePtr(link.LinkedAt),
		CommissionEligible: link.CommissionEligible,
		Reason:             link.Reason,
	}
}

func toAffiliate(affiliate *domain.Affiliate) affiliateResponse.AffiliateResponse {
	out := affiliateResponse.AffiliateResponse{
		ID:                affiliate.ID,
		TotalCommission:   affiliate.TotalCommission.String(),
		PendingCommission: affiliate.PendingCommission.String(),
		CommissionCount:   affiliate.CommissionCount,
	}
	if affiliate.CommissionRate != nil {
		rate := affiliate.CommissionRate.String()
		out.CommissionRate = &rate
	}
	return out
}
