package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Freeeeeet/lms_backoffice/internal/model"
	"github.com/Freeeeeet/lms_backoffice/internal/repository"
	"go.uber.org/zap"
)

// ParentInput holds the editable fields of a parent.
type ParentInput struct {
	Name  string
	Phone string
	Email string
}

type ParentService struct {
	store  repository.Store
	clock  Clock
	logger *zap.Logger
}

func NewParentService(store repository.Store, clock Clock, logger *zap.Logger) *ParentService {
	return &ParentService{
		store:  store,
		clock:  clock,
		logger: logger,
	}
}

// List возвращает всех родителей
func (s *ParentService) List(ctx context.Context) ([]*model.Parent, error) {
	parents, err := s.store.Parents().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list parents: %w", err)
	}
	return parents, nil
}

// Get возвращает родителя вместе с его учениками
func (s *ParentService) Get(ctx context.Context, id int64) (*model.Parent, error) {
	parent, err := s.store.Parents().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get parent: %w", err)
	}
	if parent == nil {
		return nil, ErrParentNotFound
	}

	parent.Students, err = s.store.Students().ListByParent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}

	return parent, nil
}

// Create создаёт родителя, email и телефон должны быть уникальны
func (s *ParentService) Create(ctx context.Context, in ParentInput) (*model.Parent, error) {
	parent := &model.Parent{
		Name:  in.Name,
		Phone: in.Phone,
		Email: in.Email,
	}

	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		if err := checkContactsFree(ctx, tx.Parents(), in.Email, in.Phone); err != nil {
			return err
		}
		if err := tx.Parents().Create(ctx, parent); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrDuplicateParent
			}
			return fmt.Errorf("create parent: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Parent created", zap.Int64("parent_id", parent.ID))
	return parent, nil
}

// Update изменяет данные родителя; уникальность проверяется только для изменённых значений
func (s *ParentService) Update(ctx context.Context, id int64, in ParentInput) (*model.Parent, error) {
	var parent *model.Parent

	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		current, err := tx.Parents().GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("get parent: %w", err)
		}
		if current == nil {
			return ErrParentNotFound
		}

		email, phone := in.Email, in.Phone
		if email == current.Email {
			email = ""
		}
		if phone == current.Phone {
			phone = ""
		}
		if err := checkContactsFree(ctx, tx.Parents(), email, phone); err != nil {
			return err
		}

		now := s.clock()
		current.Name = in.Name
		current.Email = in.Email
		current.Phone = in.Phone
		current.UpdatedAt = &now
		if err := tx.Parents().Update(ctx, current); err != nil {
			switch {
			case errors.Is(err, repository.ErrDuplicate):
				return ErrDuplicateParent
			case errors.Is(err, repository.ErrNotFound):
				return ErrParentNotFound
			}
			return fmt.Errorf("update parent: %w", err)
		}
		parent = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Parent updated", zap.Int64("parent_id", id))
	return parent, nil
}

// Delete удаляет родителя вместе с учениками
func (s *ParentService) Delete(ctx context.Context, id int64) error {
	if err := s.store.Parents().Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrParentNotFound
		}
		return fmt.Errorf("delete parent: %w", err)
	}

	s.logger.Info("Parent deleted", zap.Int64("parent_id", id))
	return nil
}

// checkContactsFree skips empty values.
func checkContactsFree(ctx context.Context, parents repository.ParentRepository, email, phone string) error {
	if email != "" {
		taken, err := parents.ExistsByEmail(ctx, email)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if taken {
			return ErrDuplicateEmail
		}
	}
	if phone != "" {
		taken, err := parents.ExistsByPhone(ctx, phone)
		if err != nil {
			return fmt.Errorf("check phone: %w", err)
		}
		if taken {
			return ErrDuplicatePhone
		}
	}
	return nil
}
