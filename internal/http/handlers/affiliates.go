package handlers

import (
	"net/http"

	"sales_dashboard/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListAffiliates(c *gin.Context) {
	res, err := h.Affiliates.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"affiliates": res})
}

func (h *Handler) GetAffiliate(c *gin.Context) {
	u, err := h.Affiliates.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// CreateAffiliate onboards a new affiliate under an optional referrer.
func (h *Handler) CreateAffiliate(c *gin.Context) {
	var in service.CreateAffiliateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	in.Request = requestInfo(c)

	u, err := h.Affiliates.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (h *Handler) Sellers(c *gin.Context) {
	res, err := h.Affiliates.Sellers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sellers": res})
}

func (h *Handler) PotentialReferrers(c *gin.Context) {
	level, ok := queryInt(c, "level", 0)
	if !ok {
		badRequest(c, "level must be a number")
		return
	}

	res, err := h.Affiliates.PotentialReferrers(c.Request.Context(), level)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"referrers": res})
}

// Referrals returns an affiliate's direct referrals and downline totals.
func (h *Handler) Referrals(c *gin.Context) {
	res, err := h.Affiliates.Referrals(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
