package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Freeeeeet/lms_backoffice/internal/model"
	"github.com/Freeeeeet/lms_backoffice/internal/repository"
	"go.uber.org/zap"
)

// RegistrationEngine решает, можно ли записать ученика в класс, и создаёт запись
type RegistrationEngine struct {
	store  repository.Store
	clock  Clock
	logger *zap.Logger
}

func NewRegistrationEngine(store repository.Store, clock Clock, logger *zap.Logger) *RegistrationEngine {
	return &RegistrationEngine{
		store:  store,
		clock:  clock,
		logger: logger,
	}
}

// Enroll записывает ученика в класс.
//
// Проверки идут строго по порядку, первая неудачная прерывает операцию:
// класс существует, ученик существует, активной записи ещё нет, есть свободное место,
// нет пересечения по расписанию с другими классами ученика.
func (e *RegistrationEngine) Enroll(ctx context.Context, classID, studentID int64) (*model.ClassRegistration, error) {
	var registration *model.ClassRegistration

	err := e.store.WithinTx(ctx, func(tx repository.Tx) error {
		// Блокировки всегда в порядке класс -> ученик
		class, err := tx.Classes().GetForUpdate(ctx, classID)
		if err != nil {
			return fmt.Errorf("get class: %w", err)
		}
		if class == nil {
			return ErrClassNotFound
		}

		student, err := tx.Students().GetForUpdate(ctx, studentID)
		if err != nil {
			return fmt.Errorf("get student: %w", err)
		}
		if student == nil {
			return ErrStudentNotFound
		}

		exists, err := tx.Registrations().ExistsActive(ctx, classID, studentID)
		if err != nil {
			return fmt.Errorf("check registration: %w", err)
		}
		if exists {
			return ErrAlreadyRegistered
		}

		active, err := tx.Registrations().CountActiveByClass(ctx, classID)
		if err != nil {
			return fmt.Errorf("count registrations: %w", err)
		}
		if active >= class.MaxStudents {
			return ErrClassFull
		}

		overlaps, err := tx.Registrations().HasScheduleConflict(ctx, studentID, class.DayOfWeek, class.StartTime, class.EndTime)
		if err != nil {
			return fmt.Errorf("check schedule: %w", err)
		}
		if overlaps {
			return ErrScheduleConflict
		}

		registration = &model.ClassRegistration{
			ClassID:      classID,
			StudentID:    studentID,
			Status:       model.RegistrationActive,
			RegisteredAt: e.clock(),
		}
		if err := tx.Registrations().Create(ctx, registration); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrAlreadyRegistered
			}
			return fmt.Errorf("create registration: %w", err)
		}

		class.ActiveStudents = active + 1
		registration.Class = class
		registration.Student = student
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("Student enrolled",
		zap.Int64("registration_id", registration.ID),
		zap.Int64("class_id", classID),
		zap.Int64("student_id", studentID),
	)

	return registration, nil
}
