package handlers

import (
	"net/http"

	"sales_dashboard/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Login(c *gin.Context) {
	var in service.LoginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "bad request")
		return
	}
	in.Request = requestInfo(c)

	res, err := h.Auth.Login(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
