package dto

import (
	"strings"
	"time"

	"transaction-service/internal/core/domain"
	"transaction-service/internal/core/ports"

	"github.com/shopspring/decimal"
)

// TransactionRequest is the request body for POST /v1/transactions.
// Either AccountID or both SourceAccountID and DestinationAccountID are set.
// Amount is checked by the processor so that a bad amount is reported as such.
type TransactionRequest struct {
	TransactionID        string           `json:"transactionId" binding:"required,max=128,safe_id"`
	Amount               *decimal.Decimal `json:"amount"`
	Currency             string           `json:"currency" binding:"omitempty,currency_code"`
	Type                 string           `json:"type" binding:"omitempty,oneof=DEBIT CREDIT TRANSFER debit credit transfer"`
	AccountID            *int64           `json:"accountId,omitempty" binding:"omitempty,gt=0"`
	SourceAccountID      *int64           `json:"sourceAccountId,omitempty" binding:"omitempty,gt=0"`
	DestinationAccountID *int64           `json:"destinationAccountId,omitempty" binding:"omitempty,gt=0"`
	Timestamp            *time.Time       `json:"timestamp,omitempty"`
}

// ToPort converts the body into a processor request.
func (r TransactionRequest) ToPort() ports.TransactionRequest {
	txType := domain.TransactionType(strings.ToUpper(r.Type))
	if r.SourceAccountID != nil && r.DestinationAccountID != nil {
		txType = domain.TransactionTypeTransfer
	}
	return ports.TransactionRequest{
		TxID:                 r.TransactionID,
		Amount:               r.Amount,
		Currency:             strings.ToUpper(r.Currency),
		Type:                 txType,
		AccountID:            r.AccountID,
		SourceAccountID:      r.SourceAccountID,
		DestinationAccountID: r.DestinationAccountID,
		Timestamp:            r.Timestamp,
	}
}

// BalanceResponse is the response for a balance query.
type BalanceResponse struct {
	AccountID int64           `json:"accountId"`
	Balance   decimal.Decimal `json:"balance"`
	Available decimal.Decimal `json:"availableBalance"`
	Currency  string          `json:"currency"`
	Source    string          `json:"source"`
}

// NewBalanceResponse converts a balance view to its response body.
func NewBalanceResponse(v *domain.BalanceView) BalanceResponse {
	return BalanceResponse{
		AccountID: v.AccountID,
		Balance:   v.Balance,
		Available: v.Available,
		Currency:  v.Currency,
		Source:    v.Source,
	}
}
