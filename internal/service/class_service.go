package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Freeeeeet/lms_backoffice/internal/model"
	"github.com/Freeeeeet/lms_backoffice/internal/repository"
	"go.uber.org/zap"
)

// ClassInput holds the editable fields of a class.
type ClassInput struct {
	Name        string
	Subject     string
	DayOfWeek   model.DayOfWeek
	StartTime   model.TimeOfDay
	EndTime     model.TimeOfDay
	TeacherName string
	MaxStudents int
}

type ClassService struct {
	store  repository.Store
	engine *RegistrationEngine
	clock  Clock
	logger *zap.Logger
}

func NewClassService(store repository.Store, engine *RegistrationEngine, clock Clock, logger *zap.Logger) *ClassService {
	return &ClassService{
		store:  store,
		engine: engine,
		clock:  clock,
		logger: logger,
	}
}

// List возвращает все классы с числом записанных учеников
func (s *ClassService) List(ctx context.Context) ([]*model.Class, error) {
	classes, err := s.store.Classes().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}

// ListByDay возвращает классы одного дня недели
func (s *ClassService) ListByDay(ctx context.Context, day model.DayOfWeek) ([]*model.Class, error) {
	classes, err := s.store.Classes().ListByDay(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("list classes by day: %w", err)
	}
	return classes, nil
}

// Get возвращает класс с записанными учениками
func (s *ClassService) Get(ctx context.Context, id int64) (*model.Class, error) {
	class, err := s.store.Classes().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get class: %w", err)
	}
	if class == nil {
		return nil, ErrClassNotFound
	}

	class.Registrations, err = s.store.Registrations().ListByClass(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}

	class.ActiveStudents = 0
	for _, r := range class.Registrations {
		if r.IsActive() {
			class.ActiveStudents++
		}
	}

	return class, nil
}

// Create создаёт класс; время окончания должно быть позже времени начала
func (s *ClassService) Create(ctx context.Context, in ClassInput) (*model.Class, error) {
	class := in.apply(&model.Class{})
	if !class.HasValidTimeRange() {
		return nil, ErrInvalidTimeRange
	}

	if err := s.store.Classes().Create(ctx, class); err != nil {
		return nil, fmt.Errorf("create class: %w", err)
	}

	s.logger.Info("Class created",
		zap.Int64("class_id", class.ID),
		zap.String("name", class.Name),
		zap.Stringer("day", class.DayOfWeek),
		zap.Stringer("start", class.StartTime),
		zap.Stringer("end", class.EndTime),
	)
	return class, nil
}

// Update изменяет класс. Вместимость не может стать меньше числа записанных,
// а новое время не должно пересекаться с другими классами записанных учеников.
func (s *ClassService) Update(ctx context.Context, id int64, in ClassInput) (*model.Class, error) {
	var class *model.Class

	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		current, err := tx.Classes().GetForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("get class: %w", err)
		}
		if current == nil {
			return ErrClassNotFound
		}

		// Порядок блокировок как в Enroll: класс -> ученики
		if _, err := tx.Students().LockEnrolledInClass(ctx, id); err != nil {
			return fmt.Errorf("lock students: %w", err)
		}

		slotChanged := current.DayOfWeek != in.DayOfWeek ||
			current.StartTime != in.StartTime ||
			current.EndTime != in.EndTime

		updated := in.apply(current)
		if !updated.HasValidTimeRange() {
			return ErrInvalidTimeRange
		}

		active, err := tx.Registrations().CountActiveByClass(ctx, id)
		if err != nil {
			return fmt.Errorf("count registrations: %w", err)
		}
		if updated.MaxStudents < active {
			return ErrCapacityBelowEnrollment
		}

		if slotChanged {
			overlaps, err := tx.Registrations().HasEnrolledScheduleConflict(ctx, id, updated.DayOfWeek, updated.StartTime, updated.EndTime)
			if err != nil {
				return fmt.Errorf("check schedule: %w", err)
			}
			if overlaps {
				return ErrScheduleConflict
			}
		}

		now := s.clock()
		updated.UpdatedAt = &now
		if err := tx.Classes().Update(ctx, updated); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrClassNotFound
			}
			return fmt.Errorf("update class: %w", err)
		}
		updated.ActiveStudents = active
		class = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Class updated", zap.Int64("class_id", id))
	return class, nil
}

// Delete удаляет класс вместе с записями
func (s *ClassService) Delete(ctx context.Context, id int64) error {
	if err := s.store.Classes().Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrClassNotFound
		}
		return fmt.Errorf("delete class: %w", err)
	}

	s.logger.Info("Class deleted", zap.Int64("class_id", id))
	return nil
}

// Enroll записывает ученика в класс
func (s *ClassService) Enroll(ctx context.Context, classID, studentID int64) (*model.ClassRegistration, error) {
	return s.engine.Enroll(ctx, classID, studentID)
}

func (in ClassInput) apply(c *model.Class) *model.Class {
	c.Name = in.Name
	c.Subject = in.Subject
	c.DayOfWeek = in.DayOfWeek
	c.StartTime = in.StartTime
	c.EndTime = in.EndTime
	c.TeacherName = in.TeacherName
	c.MaxStudents = in.MaxStudents
	return c
}
