package handler

import (
	"net/http"

	"transaction-service/internal/adapter/http/middleware"
	redisStore "transaction-service/internal/adapter/storage/redis"
	"transaction-service/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 64 << 10

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	Processor      ports.TransactionProcessor
	BalanceSvc     ports.BalanceService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	// RateLimitRules overrides DefaultRateLimitRules per group.
	RateLimitRules map[string]middleware.RateLimitRule
	HealthCheckers []ports.HealthChecker
	HTTPObserver   middleware.HTTPObserver // nil = no request metrics
	MetricsHandler http.Handler            // nil = no /metrics
	Mode           string
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	mode := deps.Mode
	if mode == "" {
		mode = gin.ReleaseMode
	}
	gin.SetMode(mode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(maxBodyBytes))
	if deps.HTTPObserver != nil {
		r.Use(middleware.Metrics(deps.HTTPObserver))
	}

	r.GET("/health", HealthCheck(deps.HealthCheckers...))
	if deps.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(deps.MetricsHandler))
	}

	rules := middleware.DefaultRateLimitRules()
	for group, rule := range deps.RateLimitRules {
		rules[group] = rule
	}

	rl := func(group string) gin.HandlerFunc {
		rule, ok := rules[group]
		if deps.RateLimitStore == nil || !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	v1 := r.Group("/v1")

	txHandler := NewTransactionHandler(deps.Processor)
	v1.POST("/transactions", rl("transactions"), txHandler.Submit)

	balanceHandler := NewBalanceHandler(deps.BalanceSvc)
	v1.GET("/accounts/:id/balance", rl("balances"), balanceHandler.GetBalance)

	return r
}
