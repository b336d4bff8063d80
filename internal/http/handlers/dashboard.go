package handlers

import (
	"net/http"
	"strconv"

	"sales_dashboard/internal/domain"

	"github.com/gin-gonic/gin"
)

func (h *Handler) DashboardSummary(c *gin.Context) {
	res, err := h.Dashboard.Summary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) CommissionsByLevel(c *gin.Context) {
	res, err := h.Dashboard.CommissionsByLevel(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"levels": res})
}

func (h *Handler) CommissionsByMonth(c *gin.Context) {
	res, err := h.Dashboard.CommissionsByMonth(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"months": res})
}

func (h *Handler) TopEarners(c *gin.Context) {
	res, err := h.Dashboard.TopEarners(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"affiliates": res})
}

func (h *Handler) LatestSales(c *gin.Context) {
	res, err := h.Dashboard.LatestSales(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sales": res})
}

// Level lists the affiliates of one tier with their sales and commission totals.
func (h *Handler) Level(c *gin.Context) {
	level, err := strconv.Atoi(c.Param("level"))
	if err != nil {
		respondError(c, domain.NotFoundError("level not found"))
		return
	}

	res, err := h.Dashboard.AffiliatesByLevel(c.Request.Context(), level)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"level":      level,
		"name":       domain.LevelName(level),
		"affiliates": res,
	})
}
