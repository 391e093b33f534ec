package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/lms_backoffice/internal/model"
	"github.com/Freeeeeet/lms_backoffice/internal/repository"
	"go.uber.org/zap"
)

// DeriveStatus возвращает статус, который абонемент должен иметь на дату asOf.
// sub не изменяется; сохранять ли разницу, решает вызывающий.
func DeriveStatus(sub *model.Subscription, asOf time.Time) model.SubscriptionStatus {
	if model.DateOf(asOf).After(model.DateOf(sub.EndDate)) {
		return model.SubscriptionExpired
	}

	switch sub.Status {
	case model.SubscriptionActive:
		if sub.UsedSessions >= sub.TotalSessions {
			return model.SubscriptionCompleted
		}
		return model.SubscriptionActive
	case model.SubscriptionCompleted:
		return model.SubscriptionCompleted
	case model.SubscriptionExpired:
		return model.SubscriptionExpired
	}
	panic(fmt.Sprintf("unhandled subscription status %d", int(sub.Status)))
}

// Consume списывает одно занятие с копии sub на момент now.
//
// next всегда не nil. persist сообщает, что next отличается от sub и его нужно записать;
// это возможно и при err != nil: исправленный статус сохраняется и при отказе.
func Consume(sub *model.Subscription, now time.Time) (next *model.Subscription, persist bool, err error) {
	copied := *sub
	next = &copied
	stamp := now

	// Дата важнее остатка занятий
	if model.DateOf(now).After(model.DateOf(sub.EndDate)) {
		if sub.Status != model.SubscriptionExpired {
			next.Status = model.SubscriptionExpired
			next.UpdatedAt = &stamp
			return next, true, ErrSubscriptionExpired
		}
		return next, false, ErrSubscriptionExpired
	}

	switch sub.Status {
	case model.SubscriptionActive:
	case model.SubscriptionCompleted:
		// Все занятия списаны: та же причина, что и при первом отказе после последнего занятия
		if sub.UsedSessions >= sub.TotalSessions {
			return next, false, ErrSubscriptionSessionsExhausted
		}
		return next, false, ErrSubscriptionNotActive
	case model.SubscriptionExpired:
		return next, false, ErrSubscriptionNotActive
	default:
		panic(fmt.Sprintf("unhandled subscription status %d", int(sub.Status)))
	}

	if sub.UsedSessions >= sub.TotalSessions {
		next.Status = model.SubscriptionCompleted
		next.UpdatedAt = &stamp
		return next, true, ErrSubscriptionSessionsExhausted
	}

	next.UsedSessions++
	next.UpdatedAt = &stamp
	if next.UsedSessions == next.TotalSessions {
		next.Status = model.SubscriptionCompleted
	}
	return next, true, nil
}

// SessionLedger ведёт учёт списания занятий по абонементам
type SessionLedger struct {
	store  repository.Store
	clock  Clock
	logger *zap.Logger
}

func NewSessionLedger(store repository.Store, clock Clock, logger *zap.Logger) *SessionLedger {
	return &SessionLedger{
		store:  store,
		clock:  clock,
		logger: logger,
	}
}

// UseOneSession списывает одно занятие с абонемента.
// Исправление статуса (Expired или Completed) сохраняется, даже если списание отклонено.
func (l *SessionLedger) UseOneSession(ctx context.Context, subscriptionID int64) (*model.Subscription, error) {
	var (
		result *model.Subscription
		useErr error
	)

	err := l.store.WithinTx(ctx, func(tx repository.Tx) error {
		sub, err := tx.Subscriptions().GetForUpdate(ctx, subscriptionID)
		if err != nil {
			return fmt.Errorf("get subscription: %w", err)
		}
		if sub == nil {
			useErr = ErrSubscriptionNotFound
			return nil
		}

		next, persist, consumeErr := Consume(sub, l.clock())
		if persist {
			if err := tx.Subscriptions().Update(ctx, next); err != nil {
				return fmt.Errorf("update subscription: %w", err)
			}
			if next.Status != sub.Status {
				l.logger.Info("Subscription status changed",
					zap.Int64("subscription_id", sub.ID),
					zap.Stringer("from", sub.Status),
					zap.Stringer("to", next.Status),
				)
			}
		}

		result, useErr = next, consumeErr
		return nil
	})
	if err != nil {
		return nil, err
	}
	if useErr != nil {
		return nil, useErr
	}

	l.logger.Info("Session used",
		zap.Int64("subscription_id", result.ID),
		zap.Int("used_sessions", result.UsedSessions),
		zap.Int("total_sessions", result.TotalSessions),
	)

	return result, nil
}

// Reconcile сохраняет DeriveStatus для всех активных абонементов и возвращает число изменённых
func (l *SessionLedger) Reconcile(ctx context.Context) (int, error) {
	active, err := l.store.Subscriptions().ListByStatus(ctx, model.SubscriptionActive)
	if err != nil {
		return 0, fmt.Errorf("list active subscriptions: %w", err)
	}

	changed := 0
	for _, candidate := range active {
		if DeriveStatus(candidate, l.clock()) == candidate.Status {
			continue
		}

		err := l.store.WithinTx(ctx, func(tx repository.Tx) error {
			sub, err := tx.Subscriptions().GetForUpdate(ctx, candidate.ID)
			if err != nil {
				return fmt.Errorf("get subscription: %w", err)
			}
			if sub == nil {
				return nil
			}

			now := l.clock()
			status := DeriveStatus(sub, now)
			if status == sub.Status {
				return nil
			}
			sub.Status = status
			sub.UpdatedAt = &now
			if err := tx.Subscriptions().Update(ctx, sub); err != nil {
				return fmt.Errorf("update subscription: %w", err)
			}
			changed++
			return nil
		})
		if err != nil {
			return changed, err
		}
	}

	return changed, nil
}
