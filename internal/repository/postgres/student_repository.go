package postgres

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/lms_backoffice/internal/model"
	"github.com/Freeeeeet/lms_backoffice/internal/repository"
	"github.com/Freeeeeet/lms_backoffice/internal/repository/base"
)

type StudentRepository struct {
	*base.Repository
}

func NewStudentRepository(q base.Querier) *StudentRepository {
	return &StudentRepository{Repository: base.NewRepository(q)}
}

const studentColumns = `id, name, date_of_birth, gender, current_grade, parent_id, created_at, updated_at`

// scanner is satisfied by pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanStudent(row scanner) (*model.Student, error) {
	var (
		student model.Student
		gender  int
	)
	err := row.Scan(
		&student.ID,
		&student.Name,
		&student.DateOfBirth,
		&gender,
		&student.CurrentGrade,
		&student.ParentID,
		&student.CreatedAt,
		&student.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	student.Gender, err = model.ParseGender(gender)
	if err != nil {
		return nil, fmt.Errorf("student %d: %w", student.ID, err)
	}

	return &student, nil
}

// Create создаёт нового ученика
func (r *StudentRepository) Create(ctx context.Context, student *model.Student) error {
	query := `
		INSERT INTO students (name, date_of_birth, gender, current_grade, parent_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.QueryRow(
		ctx, query,
		student.Name,
		student.DateOfBirth,
		int(student.Gender),
		student.CurrentGrade,
		student.ParentID,
	).Scan(&student.ID, &student.CreatedAt)
	if err != nil {
		return fmt.Errorf("create student: %w", base.TranslateError(err))
	}

	return nil
}

// GetByID получает ученика по ID
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*model.Student, error) {
	return r.get(ctx, `SELECT `+studentColumns+` FROM students WHERE id = $1`, id)
}

// GetForUpdate получает ученика по ID и блокирует строку до конца транзакции
func (r *StudentRepository) GetForUpdate(ctx context.Context, id int64) (*model.Student, error) {
	return r.get(ctx, `SELECT `+studentColumns+` FROM students WHERE id = $1 FOR UPDATE`, id)
}

// LockEnrolledInClass блокирует активно записанных в класс учеников в порядке ID
func (r *StudentRepository) LockEnrolledInClass(ctx context.Context, classID int64) ([]int64, error) {
	query := `
		SELECT s.id
		FROM students s
		WHERE s.id IN (
			SELECT student_id FROM class_registrations
			WHERE class_id = $1 AND status = 1
		)
		ORDER BY s.id
		FOR UPDATE
	`

	rows, err := r.Query(ctx, query, classID)
	if err != nil {
		return nil, fmt.Errorf("lock enrolled students: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan student id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("lock enrolled students: %w", err)
	}

	return ids, nil
}

func (r *StudentRepository) get(ctx context.Context, query string, id int64) (*model.Student, error) {
	student, err := scanStudent(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get student by id: %w", err)
	}
	return student, nil
}

// List получает всех учеников
func (r *StudentRepository) List(ctx context.Context) ([]*model.Student, error) {
	return r.list(ctx, `SELECT `+studentColumns+` FROM students ORDER BY id`)
}

// ListByParent получает учеников родителя
func (r *StudentRepository) ListByParent(ctx context.Context, parentID int64) ([]*model.Student, error) {
	return r.list(ctx, `SELECT `+studentColumns+` FROM students WHERE parent_id = $1 ORDER BY id`, parentID)
}

func (r *StudentRepository) list(ctx context.Context, query string, args ...any) ([]*model.Student, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	defer rows.Close()

	students := []*model.Student{}
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		students = append(students, student)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}

	return students, nil
}

// Update обновляет данные ученика. Родитель не меняется.
func (r *StudentRepository) Update(ctx context.Context, student *model.Student) error {
	query := `
		UPDATE students
		SET name = $1, date_of_birth = $2, gender = $3, current_grade = $4, updated_at = $5
		WHERE id = $6
	`

	affected, err := r.ExecAffected(
		ctx, query,
		student.Name,
		student.DateOfBirth,
		int(student.Gender),
		student.CurrentGrade,
		student.UpdatedAt,
		student.ID,
	)
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("update student %d: %w", student.ID, repository.ErrNotFound)
	}

	return nil
}

// Delete удаляет ученика
func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("delete student %d: %w", id, repository.ErrNotFound)
	}

	return nil
}
