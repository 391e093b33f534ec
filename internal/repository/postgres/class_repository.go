package postgres

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/lms_backoffice/internal/model"
	"github.com/Freeeeeet/lms_backoffice/internal/repository"
	"github.com/Freeeeeet/lms_backoffice/internal/repository/base"
	"github.com/jackc/pgx/v5/pgtype"
)

type ClassRepository struct {
	*base.Repository
}

func NewClassRepository(q base.Querier) *ClassRepository {
	return &ClassRepository{Repository: base.NewRepository(q)}
}

const classColumns = `c.id, c.name, c.subject, c.day_of_week, c.start_time, c.end_time, c.teacher_name, c.max_students, c.created_at, c.updated_at`

const activeStudentsColumn = `(SELECT COUNT(*) FROM class_registrations r WHERE r.class_id = c.id AND r.status = 1)`

func scanClass(row scanner, extra ...any) (*model.Class, error) {
	var (
		class      model.Class
		day        int
		start, end pgtype.Time
	)
	dest := append([]any{
		&class.ID,
		&class.Name,
		&class.Subject,
		&day,
		&start,
		&end,
		&class.TeacherName,
		&class.MaxStudents,
		&class.CreatedAt,
		&class.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	var err error
	class.DayOfWeek, err = model.DayOfWeekFromInt(day)
	if err != nil {
		return nil, fmt.Errorf("class %d: %w", class.ID, err)
	}
	class.StartTime = base.TimeOfDay(start)
	class.EndTime = base.TimeOfDay(end)

	return &class, nil
}

// Create создаёт новый класс
func (r *ClassRepository) Create(ctx context.Context, class *model.Class) error {
	query := `
		INSERT INTO classes (name, subject, day_of_week, start_time, end_time, teacher_name, max_students)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.QueryRow(
		ctx, query,
		class.Name,
		class.Subject,
		int(class.DayOfWeek),
		base.TimeParam(class.StartTime),
		base.TimeParam(class.EndTime),
		class.TeacherName,
		class.MaxStudents,
	).Scan(&class.ID, &class.CreatedAt)
	if err != nil {
		return fmt.Errorf("create class: %w", base.TranslateError(err))
	}

	return nil
}

// GetByID получает класс по ID
func (r *ClassRepository) GetByID(ctx context.Context, id int64) (*model.Class, error) {
	return r.get(ctx, `SELECT `+classColumns+` FROM classes c WHERE c.id = $1`, id)
}

// GetForUpdate получает класс по ID и блокирует строку до конца транзакции
func (r *ClassRepository) GetForUpdate(ctx context.Context, id int64) (*model.Class, error) {
	return r.get(ctx, `SELECT `+classColumns+` FROM classes c WHERE c.id = $1 FOR UPDATE`, id)
}

func (r *ClassRepository) get(ctx context.Context, query string, id int64) (*model.Class, error) {
	class, err := scanClass(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get class by id: %w", err)
	}
	return class, nil
}

// List получает все классы с количеством активных учеников
func (r *ClassRepository) List(ctx context.Context) ([]*model.Class, error) {
	query := `
		SELECT ` + classColumns + `, ` + activeStudentsColumn + `
		FROM classes c
		ORDER BY c.day_of_week, c.start_time, c.id
	`
	return r.list(ctx, query)
}

// ListByDay получает классы на указанный день недели
func (r *ClassRepository) ListByDay(ctx context.Context, day model.DayOfWeek) ([]*model.Class, error) {
	query := `
		SELECT ` + classColumns + `, ` + activeStudentsColumn + `
		FROM classes c
		WHERE c.day_of_week = $1
		ORDER BY c.start_time, c.id
	`
	return r.list(ctx, query, int(day))
}

func (r *ClassRepository) list(ctx context.Context, query string, args ...any) ([]*model.Class, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	defer rows.Close()

	classes := []*model.Class{}
	for rows.Next() {
		var active int
		class, err := scanClass(rows, &active)
		if err != nil {
			return nil, fmt.Errorf("scan class: %w", err)
		}
		class.ActiveStudents = active
		classes = append(classes, class)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}

	return classes, nil
}

// Update обновляет класс
func (r *ClassRepository) Update(ctx context.Context, class *model.Class) error {
	query := `
		UPDATE classes
		SET name = $1, subject = $2, day_of_week = $3, start_time = $4, end_time = $5,
		    teacher_name = $6, max_students = $7, updated_at = $8
		WHERE id = $9
	`

	affected, err := r.ExecAffected(
		ctx, query,
		class.Name,
		class.Subject,
		int(class.DayOfWeek),
		base.TimeParam(class.StartTime),
		base.TimeParam(class.EndTime),
		class.TeacherName,
		class.MaxStudents,
		class.UpdatedAt,
		class.ID,
	)
	if err != nil {
		return fmt.Errorf("update class: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("update class %d: %w", class.ID, repository.ErrNotFound)
	}

	return nil
}

// Delete удаляет класс вместе с регистрациями
func (r *ClassRepository) Delete(ctx context.Context, id int64) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM classes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete class: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("delete class %d: %w", id, repository.ErrNotFound)
	}

	return nil
}
