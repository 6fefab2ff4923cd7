package handler

import (
	"strconv"

	"transaction-service/internal/adapter/http/dto"
	"transaction-service/internal/core/ports"
	"transaction-service/pkg/apperror"
	"transaction-service/pkg/response"

	"github.com/gin-gonic/gin"
)

// BalanceHandler handles balance reads.
type BalanceHandler struct {
	balanceSvc ports.BalanceService
}

// NewBalanceHandler creates a new BalanceHandler.
func NewBalanceHandler(balanceSvc ports.BalanceService) *BalanceHandler {
	return &BalanceHandler{balanceSvc: balanceSvc}
}

// GetBalance handles GET /v1/accounts/:id/balance.
func (h *BalanceHandler) GetBalance(c *gin.Context) {
	accountID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || accountID <= 0 {
		response.Error(c, apperror.Validation("account id must be a positive integer"))
		return
	}

	view, err := h.balanceSvc.GetBalance(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewBalanceResponse(view))
}
