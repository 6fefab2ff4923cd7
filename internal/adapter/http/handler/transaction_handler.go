package handler

import (
	"transaction-service/internal/adapter/http/dto"
	"transaction-service/internal/core/domain"
	"transaction-service/internal/core/ports"
	"transaction-service/pkg/response"

	"github.com/gin-gonic/gin"
)

// TransactionHandler handles transaction submission.
type TransactionHandler struct {
	processor ports.TransactionProcessor
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(processor ports.TransactionProcessor) *TransactionHandler {
	return &TransactionHandler{processor: processor}
}

// Submit handles POST /v1/transactions.
func (h *TransactionHandler) Submit(c *gin.Context) {
	var req dto.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Transaction(c, domain.Failed(req.TransactionID, domain.ErrorKindInvalidRequest, err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	res := h.processor.Process(c.Request.Context(), req.ToPort())
	response.Transaction(c, res)
}
