package response

import (
	"errors"
	"net/http"
	"time"

	"transaction-service/internal/core/domain"
	"transaction-service/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SuccessResponse is the standard success envelope.
type SuccessResponse struct {
	Data      interface{} `json:"data"`
	RequestID string      `json:"request_id"`
	Timestamp string      `json:"timestamp"`
}

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp string `json:"timestamp"`
}

// TransactionResponse is the body of a submitted transaction.
type TransactionResponse struct {
	TransactionID string           `json:"transactionId"`
	Status        string           `json:"status"`
	Balance       *decimal.Decimal `json:"balance"`
	Error         string           `json:"error,omitempty"`
	ErrorCode     string           `json:"errorCode,omitempty"`
	RequestID     string           `json:"requestId"`
}

// OK sends a 200 response with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Data:      data,
		RequestID: getRequestID(c),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Transaction writes a processing outcome: 200 when committed, 202 while the
// outcome is still pending, 400 otherwise.
func Transaction(c *gin.Context, res *domain.TransactionResult) {
	body := TransactionResponse{
		TransactionID: res.TxID,
		Status:        string(res.Status),
		Balance:       res.Balance,
		Error:         res.Error,
		RequestID:     getRequestID(c),
	}

	status := http.StatusBadRequest
	switch res.Status {
	case domain.TransactionStatusCommitted:
		status = http.StatusOK
	case domain.TransactionStatusPending:
		status = http.StatusAccepted
	default:
		body.ErrorCode = apperror.FromKind(res.Kind).Code
	}
	c.JSON(status, body)
}

// Error sends an error response. It checks if err is an *apperror.AppError
// and maps it accordingly, otherwise returns 500.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus, ErrorResponse{
			ErrorCode: appErr.Code,
			Message:   appErr.Message,
			RequestID: getRequestID(c),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	// Unknown error -> 500
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		ErrorCode: "SYS_000",
		Message:   "Internal server error",
		RequestID: getRequestID(c),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// getRequestID retrieves request ID from context, or generates one.
func getRequestID(c *gin.Context) string {
	if id, exists := c.Get("request_id"); exists {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return uuid.New().String()
}
