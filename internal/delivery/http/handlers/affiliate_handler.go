package handlers

import (
	"net/http"

	affiliateRequest "github.com/LavaJover/shvark-signal-service/internal/delivery/http/dto/affiliate/request"
	affiliateResponse "github.com/LavaJover/shvark-signal-service/internal/delivery/http/dto/affiliate/response"
	signalResponse "github.com/LavaJover/shvark-signal-service/internal/delivery/http/dto/signal/response"
	"github.com/LavaJover/shvark-signal-service/internal/usecase/affiliate"
	affiliatedto "github.com/LavaJover/shvark-signal-service/internal/usecase/dto/affiliate"
	"github.com/gin-gonic/gin"
)

type AffiliateHandler struct {
	Usecase affiliate.AffiliateUsecase
}

func (h *AffiliateHandler) Register(r *gin.Engine) {
	links := r.Group("/api/v1/affiliate/links")
	links.POST("", h.requestLink)
	links.GET("/:id", h.getLink)
	links.POST("/:id/approve", h.approveLink)
	links.POST("/:id/reject", h.rejectLink)
	links.PATCH("/:id/eligibility", h.setEligibility)

	affiliates := r.Group("/api/v1/affiliates")
	affiliates.GET("/:id", h.getAffiliate)
	affiliates.GET("/:id/links", h.getAffiliateLinks)
	affiliates.PUT("/:id/rate", h.setRate)
	affiliates.POST("/:id/compensation", h.reserve)

	r.POST("/api/v1/commissions/:id/confirm", h.confirmCommission)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, signalResponse.ErrorResponse{Success: false, Error: err.Error()})
}

func (h *AffiliateHandler) requestLink(c *gin.Context) {
	var req affiliateRequest.LinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	link, err := h.Usecase.RequestLink(c.Request.Context(), &affiliatedto.RequestLinkInput{
		AffiliateID: req.AffiliateID,
		UserID:      req.UserID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toLink(link))
}

func (h *AffiliateHandler) getLink(c *gin.Context) {
	link, err := h.Usecase.GetLink(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toLink(link))
}

// approveLink answers 422 together with the link when the request was
// auto-rejected or had expired.
func (h *AffiliateHandler) approveLink(c *gin.Context) {
	link, err := h.Usecase.ApproveLink(c.Request.Context(), c.Param("id"))
	if err != nil && link != nil {
		c.JSON(statusFor(err), gin.H{"success": false, "error": err.Error(), "link": toLink(link)})
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toLink(link))
}

func (h *AffiliateHandler) rejectLink(c *gin.Context) {
	var req affiliateRequest.RejectLinkRequest
	_ = c.ShouldBindJSON(&req)
	link, err := h.Usecase.RejectLink(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toLink(link))
}

func (h *AffiliateHandler) setEligibility(c *gin.Context) {
	var req affiliateRequest.EligibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	link, err := h.Usecase.SetCommissionEligible(c.Request.Context(), &affiliatedto.SetEligibilityInput{
		LinkID:   c.Param("id"),
		Eligible: *req.Eligible,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toLink(link))
}

func (h *AffiliateHandler) getAffiliate(c *gin.Context) {
	a, err := h.Usecase.GetAffiliate(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAffiliate(a))
}

func (h *AffiliateHandler) getAffiliateLinks(c *gin.Context) {
	links, err := h.Usecase.GetAffiliateLinks(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]affiliateResponse.LinkResponse, 0, len(links))
	for _, link := range links {
		out = append(out, toLink(link))
	}
	c.JSON(http.StatusOK, out)
}

func (h *AffiliateHandler) setRate(c *gin.Context) {
	var req affiliateRequest.RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Usecase.SetAffiliateRate(c.Request.Context(), &affiliatedto.SetRateInput{
		AffiliateID: c.Param("id"),
		Rate:        req.Rate,
	}); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AffiliateHandler) confirmCommission(c *gin.Context) {
	if err := h.Usecase.ConfirmCommission(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AffiliateHandler) reserve(c *gin.Context) {
	out, err := h.Usecase.ReserveForCompensation(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, affiliateResponse.ReservationResponse{
		AffiliateID: out.AffiliateID,
		Amount:      out.Amount.String(),
		Count:       out.Count,
	})
}
