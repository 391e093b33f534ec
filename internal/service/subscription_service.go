package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/lms_backoffice/internal/model"
	"github.com/Freeeeeet/lms_backoffice/internal/repository"
	"go.uber.org/zap"
)

// SubscriptionInput holds the fields of a new subscription.
type SubscriptionInput struct {
	StudentID     int64
	PackageName   string
	StartDate     time.Time
	EndDate       time.Time
	TotalSessions int
}

type SubscriptionService struct {
	store  repository.Store
	ledger *SessionLedger
	clock  Clock
	logger *zap.Logger
}

func NewSubscriptionService(store repository.Store, ledger *SessionLedger, clock Clock, logger *zap.Logger) *SubscriptionService {
	return &SubscriptionService{
		store:  store,
		ledger: ledger,
		clock:  clock,
		logger: logger,
	}
}

// List возвращает все абонементы
func (s *SubscriptionService) List(ctx context.Context) ([]*model.Subscription, error) {
	subs, err := s.store.Subscriptions().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return s.withDerivedStatus(subs), nil
}

// Get возвращает абонемент
func (s *SubscriptionService) Get(ctx context.Context, id int64) (*model.Subscription, error) {
	sub, err := s.store.Subscriptions().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	if sub == nil {
		return nil, ErrSubscriptionNotFound
	}
	return s.withDerivedStatus([]*model.Subscription{sub})[0], nil
}

// ListByStudent возвращает абонементы ученика, новые первыми
func (s *SubscriptionService) ListByStudent(ctx context.Context, studentID int64) ([]*model.Subscription, error) {
	student, err := s.store.Students().GetByID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}
	if student == nil {
		return nil, ErrStudentNotFound
	}

	subs, err := s.store.Subscriptions().ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return s.withDerivedStatus(subs), nil
}

// Create оформляет абонемент; дата окончания не может быть раньше даты начала
func (s *SubscriptionService) Create(ctx context.Context, in SubscriptionInput) (*model.Subscription, error) {
	sub := &model.Subscription{
		StudentID:     in.StudentID,
		PackageName:   in.PackageName,
		StartDate:     model.DateOf(in.StartDate),
		EndDate:       model.DateOf(in.EndDate),
		TotalSessions: in.TotalSessions,
		UsedSessions:  0,
		Status:        model.SubscriptionActive,
	}
	if !sub.HasValidDateRange() {
		return nil, ErrInvalidDateRange
	}

	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		student, err := tx.Students().GetByID(ctx, in.StudentID)
		if err != nil {
			return fmt.Errorf("get student: %w", err)
		}
		if student == nil {
			return ErrStudentNotFound
		}

		if err := tx.Subscriptions().Create(ctx, sub); err != nil {
			if errors.Is(err, repository.ErrMissingReference) {
				return ErrStudentNotFound
			}
			return fmt.Errorf("create subscription: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Subscription created",
		zap.Int64("subscription_id", sub.ID),
		zap.Int64("student_id", sub.StudentID),
		zap.Int("total_sessions", sub.TotalSessions),
	)
	return sub, nil
}

// UseOneSession списывает одно занятие
func (s *SubscriptionService) UseOneSession(ctx context.Context, id int64) (*model.Subscription, error) {
	return s.ledger.UseOneSession(ctx, id)
}

// Delete удаляет абонемент
func (s *SubscriptionService) Delete(ctx context.Context, id int64) error {
	if err := s.store.Subscriptions().Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSubscriptionNotFound
		}
		return fmt.Errorf("delete subscription: %w", err)
	}

	s.logger.Info("Subscription deleted", zap.Int64("subscription_id", id))
	return nil
}

// withDerivedStatus shows the status each subscription has today. Nothing is written.
func (s *SubscriptionService) withDerivedStatus(subs []*model.Subscription) []*model.Subscription {
	now := s.clock()
	for _, sub := range subs {
		sub.Status = DeriveStatus(sub, now)
	}
	return subs
}
