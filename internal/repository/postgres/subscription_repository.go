package postgres

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/lms_backoffice/internal/model"
	"github.com/Freeeeeet/lms_backoffice/internal/repository"
	"github.com/Freeeeeet/lms_backoffice/internal/repository/base"
)

type SubscriptionRepository struct {
	*base.Repository
}

func NewSubscriptionRepository(q base.Querier) *SubscriptionRepository {
	return &SubscriptionRepository{Repository: base.NewRepository(q)}
}

const subscriptionColumns = `id, student_id, package_name, start_date, end_date, total_sessions, used_sessions, status, created_at, updated_at`

func scanSubscription(row scanner) (*model.Subscription, error) {
	var (
		sub    model.Subscription
		status int
	)
	err := row.Scan(
		&sub.ID,
		&sub.StudentID,
		&sub.PackageName,
		&sub.StartDate,
		&sub.EndDate,
		&sub.TotalSessions,
		&sub.UsedSessions,
		&status,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	sub.Status, err = model.ParseSubscriptionStatus(status)
	if err != nil {
		return nil, fmt.Errorf("subscription %d: %w", sub.ID, err)
	}

	return &sub, nil
}

// Create создаёт новую подписку
func (r *SubscriptionRepository) Create(ctx context.Context, sub *model.Subscription) error {
	query := `
		INSERT INTO subscriptions (student_id, package_name, start_date, end_date, total_sessions, used_sessions, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.QueryRow(
		ctx, query,
		sub.StudentID,
		sub.PackageName,
		sub.StartDate,
		sub.EndDate,
		sub.TotalSessions,
		sub.UsedSessions,
		int(sub.Status),
	).Scan(&sub.ID, &sub.CreatedAt)
	if err != nil {
		return fmt.Errorf("create subscription: %w", base.TranslateError(err))
	}

	return nil
}

// GetByID получает подписку по ID
func (r *SubscriptionRepository) GetByID(ctx context.Context, id int64) (*model.Subscription, error) {
	return r.get(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = $1`, id)
}

// GetForUpdate получает подписку по ID и блокирует строку до конца транзакции
func (r *SubscriptionRepository) GetForUpdate(ctx context.Context, id int64) (*model.Subscription, error) {
	return r.get(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = $1 FOR UPDATE`, id)
}

func (r *SubscriptionRepository) get(ctx context.Context, query string, id int64) (*model.Subscription, error) {
	sub, err := scanSubscription(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get subscription by id: %w", err)
	}
	return sub, nil
}

// List получает все подписки
func (r *SubscriptionRepository) List(ctx context.Context) ([]*model.Subscription, error) {
	return r.list(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions ORDER BY id`)
}

// ListByStudent получает подписки ученика, новые первыми
func (r *SubscriptionRepository) ListByStudent(ctx context.Context, studentID int64) ([]*model.Subscription, error) {
	return r.list(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE student_id = $1 ORDER BY created_at DESC, id DESC`, studentID)
}

// ListByStatus получает подписки с указанным сохранённым статусом
func (r *SubscriptionRepository) ListByStatus(ctx context.Context, status model.SubscriptionStatus) ([]*model.Subscription, error) {
	return r.list(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE status = $1 ORDER BY id`, int(status))
}

func (r *SubscriptionRepository) list(ctx context.Context, query string, args ...any) ([]*model.Subscription, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	subs := []*model.Subscription{}
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}

	return subs, nil
}

// Update сохраняет счётчик занятий и статус подписки
func (r *SubscriptionRepository) Update(ctx context.Context, sub *model.Subscription) error {
	query := `
		UPDATE subscriptions
		SET package_name = $1, start_date = $2, end_date = $3, total_sessions = $4,
		    used_sessions = $5, status = $6, updated_at = $7
		WHERE id = $8
	`

	affected, err := r.ExecAffected(
		ctx, query,
		sub.PackageName,
		sub.StartDate,
		sub.EndDate,
		sub.TotalSessions,
		sub.UsedSessions,
		int(sub.Status),
		sub.UpdatedAt,
		sub.ID,
	)
	if err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("update subscription %d: %w", sub.ID, repository.ErrNotFound)
	}

	return nil
}

// Delete удаляет подписку
func (r *SubscriptionRepository) Delete(ctx context.Context, id int64) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM subscriptions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("delete subscription %d: %w", id, repository.ErrNotFound)
	}

	return nil
}
