package postgres

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/lms_backoffice/internal/model"
	"github.com/Freeeeeet/lms_backoffice/internal/repository"
	"github.com/Freeeeeet/lms_backoffice/internal/repository/base"
)

type ParentRepository struct {
	*base.Repository
}

func NewParentRepository(q base.Querier) *ParentRepository {
	return &ParentRepository{Repository: base.NewRepository(q)}
}

const parentColumns = `id, name, phone, email, created_at, updated_at`

// Create создаёт нового родителя
func (r *ParentRepository) Create(ctx context.Context, parent *model.Parent) error {
	query := `
		INSERT INTO parents (name, phone, email)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.QueryRow(ctx, query, parent.Name, parent.Phone, parent.Email).
		Scan(&parent.ID, &parent.CreatedAt)
	if err != nil {
		return fmt.Errorf("create parent: %w", base.TranslateError(err))
	}

	return nil
}

// GetByID получает родителя по ID
func (r *ParentRepository) GetByID(ctx context.Context, id int64) (*model.Parent, error) {
	query := `SELECT ` + parentColumns + ` FROM parents WHERE id = $1`

	var parent model.Parent
	err := r.QueryRow(ctx, query, id).Scan(
		&parent.ID,
		&parent.Name,
		&parent.Phone,
		&parent.Email,
		&parent.CreatedAt,
		&parent.UpdatedAt,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get parent by id: %w", err)
	}

	return &parent, nil
}

// List получает всех родителей
func (r *ParentRepository) List(ctx context.Context) ([]*model.Parent, error) {
	query := `SELECT ` + parentColumns + ` FROM parents ORDER BY id`

	rows, err := r.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list parents: %w", err)
	}
	defer rows.Close()

	parents := []*model.Parent{}
	for rows.Next() {
		var parent model.Parent
		err := rows.Scan(
			&parent.ID,
			&parent.Name,
			&parent.Phone,
			&parent.Email,
			&parent.CreatedAt,
			&parent.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan parent: %w", err)
		}
		parents = append(parents, &parent)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list parents: %w", err)
	}

	return parents, nil
}

// Update обновляет данные родителя
func (r *ParentRepository) Update(ctx context.Context, parent *model.Parent) error {
	query := `
		UPDATE parents
		SET name = $1, phone = $2, email = $3, updated_at = $4
		WHERE id = $5
	`

	affected, err := r.ExecAffected(ctx, query, parent.Name, parent.Phone, parent.Email, parent.UpdatedAt, parent.ID)
	if err != nil {
		return fmt.Errorf("update parent: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("update parent %d: %w", parent.ID, repository.ErrNotFound)
	}

	return nil
}

// Delete удаляет родителя вместе с его учениками
func (r *ParentRepository) Delete(ctx context.Context, id int64) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM parents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete parent: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("delete parent %d: %w", id, repository.ErrNotFound)
	}

	return nil
}

// ExistsByEmail проверяет занят ли email
func (r *ParentRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	exists, err := r.Exists(ctx, `SELECT EXISTS(SELECT 1 FROM parents WHERE email = $1)`, email)
	if err != nil {
		return false, fmt.Errorf("check parent email: %w", err)
	}
	return exists, nil
}

// ExistsByPhone проверяет занят ли телефон
func (r *ParentRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	exists, err := r.Exists(ctx, `SELECT EXISTS(SELECT 1 FROM parents WHERE phone = $1)`, phone)
	if err != nil {
		return false, fmt.Errorf("check parent phone: %w", err)
	}
	return exists, nil
}
