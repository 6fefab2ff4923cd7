package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"transaction-service/internal/adapter/http/middleware"
	redisStore "transaction-service/internal/adapter/storage/redis"
	"transaction-service/internal/core/domain"
	"transaction-service/internal/core/ports"
	"transaction-service/internal/core/ports/mocks"
	"transaction-service/pkg/apperror"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubChecker struct {
	name string
	err  error
}

func (s stubChecker) Ping(context.Context) error { return s.err }
func (s stubChecker) Name() string               { return s.name }

func setupRouter(t *testing.T) (*gin.Engine, *mocks.MockTransactionProcessor, *mocks.MockBalanceService) {
	ctrl := gomock.NewController(t)
	processor := mocks.NewMockTransactionProcessor(ctrl)
	balances := mocks.NewMockBalanceService(ctrl)
	r := SetupRouter(RouterDeps{
		Processor:  processor,
		BalanceSvc: balances,
		Mode:       gin.TestMode,
		Logger:     zerolog.Nop(),
	})
	return r, processor, balances
}

func postTransaction(r *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/transactions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// --- Transaction Handler Tests ---

func TestSubmit_Committed(t *testing.T) {
	r, processor, _ := setupRouter(t)
	bal := decimal.RequireFromString("900")

	processor.EXPECT().Process(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req ports.TransactionRequest) *domain.TransactionResult {
			assert.Equal(t, "tx-1", req.TxID)
			assert.Equal(t, domain.TransactionTypeDebit, req.Type)
			assert.Equal(t, "USD", req.Currency)
			require.NotNil(t, req.AccountID)
			assert.Equal(t, int64(7), *req.AccountID)
			assert.True(t, decimal.RequireFromString("100.50").Equal(*req.Amount))
			return &domain.TransactionResult{TxID: "tx-1", Status: domain.TransactionStatusCommitted, Balance: &bal}
		})

	w := postTransaction(r, `{"transactionId":"tx-1","amount":100.50,"currency":"usd","type":"DEBIT","accountId":7}`)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody(t, w)
	assert.Equal(t, "tx-1", resp["transactionId"])
	assert.Equal(t, "COMMITTED", resp["status"])
	assert.Equal(t, "900", resp["balance"])
	assert.NotContains(t, resp, "errorCode")
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderRequestID))
}

func TestSubmit_TransferInferredFromAccounts(t *testing.T) {
	r, processor, _ := setupRouter(t)

	processor.EXPECT().Process(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req ports.TransactionRequest) *domain.TransactionResult {
			assert.True(t, req.IsTransfer())
			assert.Equal(t, domain.TransactionTypeTransfer, req.Type)
			return &domain.TransactionResult{TxID: req.TxID, Status: domain.TransactionStatusPending}
		})

	w := postTransaction(r, `{"transactionId":"tx-2","amount":"5","sourceAccountId":1,"destinationAccountId":2}`)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "PENDING", decodeBody(t, w)["status"])
}

func TestSubmit_BusinessRejection(t *testing.T) {
	r, processor, _ := setupRouter(t)

	processor.EXPECT().Process(gomock.Any(), gomock.Any()).Return(
		domain.Failed("tx-3", domain.ErrorKindInsufficientFunds, "insufficient funds"))

	w := postTransaction(r, `{"transactionId":"tx-3","amount":10,"type":"DEBIT","accountId":1}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeBody(t, w)
	assert.Equal(t, "FAILED", resp["status"])
	assert.Equal(t, "insufficient funds", resp["error"])
	assert.Equal(t, "TXN_003", resp["errorCode"])
	assert.Nil(t, resp["balance"])
}

func TestSubmit_BindingErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"transactionId":`},
		{"missing id", `{"amount":1,"type":"DEBIT","accountId":1}`},
		{"unsafe id", `{"transactionId":"a b","amount":1,"accountId":1}`},
		{"bad currency", `{"transactionId":"tx","amount":1,"currency":"EURO","accountId":1}`},
		{"unknown type", `{"transactionId":"tx","amount":1,"type":"REFUND","accountId":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, _ := setupRouter(t)

			w := postTransaction(r, tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decodeBody(t, w)
			assert.Equal(t, "FAILED", resp["status"])
			assert.Equal(t, "TXN_002", resp["errorCode"])
		})
	}
}

func TestSubmit_OversizedBody(t *testing.T) {
	r, _, _ := setupRouter(t)
	body := `{"transactionId":"tx","note":"` + strings.Repeat("x", maxBodyBytes) + `"}`

	w := postTransaction(r, body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- Balance Handler Tests ---

func TestGetBalance_Success(t *testing.T) {
	r, _, balances := setupRouter(t)

	balances.EXPECT().GetBalance(gomock.Any(), int64(42)).Return(&domain.BalanceView{
		AccountID: 42,
		Balance:   decimal.RequireFromString("100.00"),
		Available: decimal.RequireFromString("75.50"),
		Currency:  "USD",
		Source:    "cache",
	}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/accounts/42/balance", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(42), data["accountId"])
	assert.Equal(t, "75.5", data["availableBalance"])
	assert.Equal(t, "cache", data["source"])
}

func TestGetBalance_InvalidID(t *testing.T) {
	r, _, _ := setupRouter(t)

	for _, path := range []string{"/v1/accounts/abc/balance", "/v1/accounts/0/balance"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
}

func TestGetBalance_NotFound(t *testing.T) {
	r, _, balances := setupRouter(t)
	balances.EXPECT().GetBalance(gomock.Any(), int64(9)).Return(nil, apperror.ErrNotFound("account"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/accounts/9/balance", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "ACC_001", decodeBody(t, w)["error_code"])
}

func TestGetBalance_UnexpectedError(t *testing.T) {
	r, _, balances := setupRouter(t)
	balances.EXPECT().GetBalance(gomock.Any(), int64(9)).Return(nil, errors.New("boom"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/accounts/9/balance", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// --- Health & Router Tests ---

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name     string
		checkers []ports.HealthChecker
		wantCode int
		want     string
	}{
		{"all healthy", []ports.HealthChecker{stubChecker{name: "postgresql"}, stubChecker{name: "redis"}}, http.StatusOK, "healthy"},
		{"redis down", []ports.HealthChecker{stubChecker{name: "postgresql"}, stubChecker{name: "redis", err: errors.New("refused")}}, http.StatusServiceUnavailable, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/health", HealthCheck(tt.checkers...))

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.want, decodeBody(t, w)["status"])
		})
	}
}

func TestSetupRouter_MetricsEndpoint(t *testing.T) {
	r := SetupRouter(RouterDeps{
		Mode:           gin.TestMode,
		Logger:         zerolog.Nop(),
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("txs_up 1")) }),
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "txs_up 1", w.Body.String())
}

func TestSetupRouter_RateLimitOverride(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctrl := gomock.NewController(t)
	processor := mocks.NewMockTransactionProcessor(ctrl)
	processor.EXPECT().Process(gomock.Any(), gomock.Any()).
		Return(&domain.TransactionResult{TxID: "tx", Status: domain.TransactionStatusCommitted}).Times(1)

	r := SetupRouter(RouterDeps{
		Processor:      processor,
		RateLimitStore: redisStore.NewRateLimitStore(client),
		RateLimitRules: map[string]middleware.RateLimitRule{"transactions": {Limit: 1, Window: time.Minute}},
		Mode:           gin.TestMode,
		Logger:         zerolog.Nop(),
	})

	body := `{"transactionId":"tx","amount":1,"type":"CREDIT","accountId":1}`
	assert.Equal(t, http.StatusOK, postTransaction(r, body).Code)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/transactions", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
