// Package service holds the business operations of the back office.
package service

import (
	"github.com/Freeeeeet/lms_backoffice/internal/repository"
	"go.uber.org/zap"
)

// Services bundles everything the HTTP layer and background jobs call into.
type Services struct {
	Parents       *ParentService
	Students      *StudentService
	Classes       *ClassService
	Subscriptions *SubscriptionService
	Ledger        *SessionLedger
}

func New(store repository.Store, clock Clock, logger *zap.Logger) *Services {
	engine := NewRegistrationEngine(store, clock, logger.Named("registration"))
	ledger := NewSessionLedger(store, clock, logger.Named("ledger"))

	return &Services{
		Parents:       NewParentService(store, clock, logger),
		Students:      NewStudentService(store, clock, logger),
		Classes:       NewClassService(store, engine, clock, logger),
		Subscriptions: NewSubscriptionService(store, ledger, clock, logger),
		Ledger:        ledger,
	}
}
