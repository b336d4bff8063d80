package handlers

import (
	"net/http"

	"sales_dashboard/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateSale records a sale and its commission payouts.
func (h *Handler) CreateSale(c *gin.Context) {
	var in service.CreateSaleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	in.Request = requestInfo(c)

	res, err := h.Sales.CreateSale(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) GetSale(c *gin.Context) {
	res, err := h.Sales.GetSale(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) DeleteSale(c *gin.Context) {
	if err := h.Sales.DeleteSale(c.Request.Context(), c.Param("id"), requestInfo(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) ListSales(c *gin.Context) {
	page, ok := queryInt(c, "page", 1)
	if !ok {
		badRequest(c, "page must be a number")
		return
	}
	limit, ok := queryInt(c, "limit", 0)
	if !ok {
		badRequest(c, "limit must be a number")
		return
	}

	res, err := h.Sales.ListSales(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) SearchSales(c *gin.Context) {
	page, ok := queryInt(c, "page", 1)
	if !ok {
		badRequest(c, "page must be a number")
		return
	}

	res, err := h.Sales.SearchSales(c.Request.Context(), c.Query("query"), page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
