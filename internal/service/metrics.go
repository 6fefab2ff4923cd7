package service

import "transaction-service/internal/core/domain"

// NopMetrics discards every signal.
type NopMetrics struct{}

func (NopMetrics) TransactionProcessed(domain.TransactionType, domain.TransactionStatus) {}
func (NopMetrics) PermanentFailure(domain.TransactionType)                            {}
func (NopMetrics) ReconcileAttempt()                                                   {}
func (NopMetrics) ReconcileFailure()                                                   {}
func (NopMetrics) ReconcilePermanentFailure()                                          {}
func (NopMetrics) CacheWarmed(int)                                                     {}
