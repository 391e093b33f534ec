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

// StudentInput holds the fields of a student. ParentID is only read on create.
type StudentInput struct {
	Name         string
	DateOfBirth  time.Time
	Gender       model.Gender
	CurrentGrade string
	ParentID     int64
}

type StudentService struct {
	store  repository.Store
	clock  Clock
	logger *zap.Logger
}

func NewStudentService(store repository.Store, clock Clock, logger *zap.Logger) *StudentService {
	return &StudentService{
		store:  store,
		clock:  clock,
		logger: logger,
	}
}

// List возвращает всех учеников
func (s *StudentService) List(ctx context.Context) ([]*model.Student, error) {
	students, err := s.store.Students().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// Get возвращает ученика с родителем и записями в классы
func (s *StudentService) Get(ctx context.Context, id int64) (*model.Student, error) {
	student, err := s.store.Students().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}
	if student == nil {
		return nil, ErrStudentNotFound
	}

	student.Parent, err = s.store.Parents().GetByID(ctx, student.ParentID)
	if err != nil {
		return nil, fmt.Errorf("get parent: %w", err)
	}

	student.Registrations, err = s.store.Registrations().ListByStudent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}

	return student, nil
}

// Create создаёт ученика у существующего родителя
func (s *StudentService) Create(ctx context.Context, in StudentInput) (*model.Student, error) {
	student := &model.Student{
		Name:         in.Name,
		DateOfBirth:  model.DateOf(in.DateOfBirth),
		Gender:       in.Gender,
		CurrentGrade: in.CurrentGrade,
		ParentID:     in.ParentID,
	}

	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		parent, err := tx.Parents().GetByID(ctx, in.ParentID)
		if err != nil {
			return fmt.Errorf("get parent: %w", err)
		}
		if parent == nil {
			return ErrParentNotFound
		}

		if err := tx.Students().Create(ctx, student); err != nil {
			if errors.Is(err, repository.ErrMissingReference) {
				return ErrParentNotFound
			}
			return fmt.Errorf("create student: %w", err)
		}
		student.Parent = parent
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Student created",
		zap.Int64("student_id", student.ID),
		zap.Int64("parent_id", student.ParentID),
	)
	return student, nil
}

// Update изменяет данные ученика, родитель не меняется
func (s *StudentService) Update(ctx context.Context, id int64, in StudentInput) (*model.Student, error) {
	var student *model.Student

	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		current, err := tx.Students().GetForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("get student: %w", err)
		}
		if current == nil {
			return ErrStudentNotFound
		}

		now := s.clock()
		current.Name = in.Name
		current.DateOfBirth = model.DateOf(in.DateOfBirth)
		current.Gender = in.Gender
		current.CurrentGrade = in.CurrentGrade
		current.UpdatedAt = &now
		if err := tx.Students().Update(ctx, current); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrStudentNotFound
			}
			return fmt.Errorf("update student: %w", err)
		}
		student = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Student updated", zap.Int64("student_id", id))
	return student, nil
}

// Delete удаляет ученика вместе с его записями и абонементами
func (s *StudentService) Delete(ctx context.Context, id int64) error {
	if err := s.store.Students().Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrStudentNotFound
		}
		return fmt.Errorf("delete student: %w", err)
	}

	s.logger.Info("Student deleted", zap.Int64("student_id", id))
	return nil
}
