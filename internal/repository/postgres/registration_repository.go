package postgres

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/lms_backoffice/internal/model"
	"github.com/Freeeeeet/lms_backoffice/internal/repository/base"
)

type RegistrationRepository struct {
	*base.Repository
}

func NewRegistrationRepository(q base.Querier) *RegistrationRepository {
	return &RegistrationRepository{Repository: base.NewRepository(q)}
}

// Create создаёт регистрацию ученика в классе
func (r *RegistrationRepository) Create(ctx context.Context, registration *model.ClassRegistration) error {
	query := `
		INSERT INTO class_registrations (class_id, student_id, status, registered_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.QueryRow(
		ctx, query,
		registration.ClassID,
		registration.StudentID,
		int(registration.Status),
		registration.RegisteredAt,
	).Scan(&registration.ID)
	if err != nil {
		return fmt.Errorf("create registration: %w", base.TranslateError(err))
	}

	return nil
}

// ExistsActive проверяет есть ли активная регистрация ученика в классе
func (r *RegistrationRepository) ExistsActive(ctx context.Context, classID, studentID int64) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM class_registrations
			WHERE class_id = $1 AND student_id = $2 AND status = 1
		)
	`

	exists, err := r.Exists(ctx, query, classID, studentID)
	if err != nil {
		return false, fmt.Errorf("check active registration: %w", err)
	}
	return exists, nil
}

// CountActiveByClass считает активные регистрации класса
func (r *RegistrationRepository) CountActiveByClass(ctx context.Context, classID int64) (int, error) {
	query := `SELECT COUNT(*) FROM class_registrations WHERE class_id = $1 AND status = 1`

	var count int
	if err := r.QueryRow(ctx, query, classID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count active registrations: %w", err)
	}
	return count, nil
}

// HasScheduleConflict проверяет пересечение с другими занятиями ученика в тот же день
func (r *RegistrationRepository) HasScheduleConflict(ctx context.Context, studentID int64, day model.DayOfWeek, start, end model.TimeOfDay) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1
			FROM class_registrations r
			JOIN classes c ON c.id = r.class_id
			WHERE r.student_id = $1
			  AND r.status = 1
			  AND c.day_of_week = $2
			  AND c.start_time < $4
			  AND $3 < c.end_time
		)
	`

	exists, err := r.Exists(ctx, query, studentID, int(day), base.TimeParam(start), base.TimeParam(end))
	if err != nil {
		return false, fmt.Errorf("check schedule conflict: %w", err)
	}
	return exists, nil
}

// HasEnrolledScheduleConflict проверяет не пересечётся ли перенесённый класс
// с другими занятиями уже записанных учеников
func (r *RegistrationRepository) HasEnrolledScheduleConflict(ctx context.Context, classID int64, day model.DayOfWeek, start, end model.TimeOfDay) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1
			FROM class_registrations mine
			JOIN class_registrations other
			  ON other.student_id = mine.student_id
			 AND other.class_id <> mine.class_id
			 AND other.status = 1
			JOIN classes c ON c.id = other.class_id
			WHERE mine.class_id = $1
			  AND mine.status = 1
			  AND c.day_of_week = $2
			  AND c.start_time < $4
			  AND $3 < c.end_time
		)
	`

	exists, err := r.Exists(ctx, query, classID, int(day), base.TimeParam(start), base.TimeParam(end))
	if err != nil {
		return false, fmt.Errorf("check enrolled schedule conflict: %w", err)
	}
	return exists, nil
}

// ListByClass получает регистрации класса вместе с учениками и родителями
func (r *RegistrationRepository) ListByClass(ctx context.Context, classID int64) ([]*model.ClassRegistration, error) {
	query := `
		SELECT r.id, r.class_id, r.student_id, r.status, r.registered_at,
		       s.id, s.name, s.date_of_birth, s.gender, s.current_grade, s.parent_id, s.created_at, s.updated_at,
		       p.id, p.name, p.phone, p.email, p.created_at, p.updated_at
		FROM class_registrations r
		JOIN students s ON s.id = r.student_id
		JOIN parents p ON p.id = s.parent_id
		WHERE r.class_id = $1
		ORDER BY r.registered_at, r.id
	`

	rows, err := r.Query(ctx, query, classID)
	if err != nil {
		return nil, fmt.Errorf("list registrations by class: %w", err)
	}
	defer rows.Close()

	registrations := []*model.ClassRegistration{}
	for rows.Next() {
		var (
			reg     model.ClassRegistration
			student model.Student
			parent  model.Parent
			status  int
			gender  int
		)
		err := rows.Scan(
			&reg.ID, &reg.ClassID, &reg.StudentID, &status, &reg.RegisteredAt,
			&student.ID, &student.Name, &student.DateOfBirth, &gender, &student.CurrentGrade,
			&student.ParentID, &student.CreatedAt, &student.UpdatedAt,
			&parent.ID, &parent.Name, &parent.Phone, &parent.Email, &parent.CreatedAt, &parent.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		if reg.Status, err = model.ParseRegistrationStatus(status); err != nil {
			return nil, fmt.Errorf("registration %d: %w", reg.ID, err)
		}
		if student.Gender, err = model.ParseGender(gender); err != nil {
			return nil, fmt.Errorf("student %d: %w", student.ID, err)
		}
		student.Parent = &parent
		reg.Student = &student
		registrations = append(registrations, &reg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list registrations by class: %w", err)
	}

	return registrations, nil
}

// ListByStudent получает регистрации ученика вместе с классами
func (r *RegistrationRepository) ListByStudent(ctx context.Context, studentID int64) ([]*model.ClassRegistration, error) {
	query := `
		SELECT r.id, r.class_id, r.student_id, r.status, r.registered_at,
		       ` + classColumns + `
		FROM class_registrations r
		JOIN classes c ON c.id = r.class_id
		WHERE r.student_id = $1
		ORDER BY c.day_of_week, c.start_time, r.id
	`

	rows, err := r.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("list registrations by student: %w", err)
	}
	defer rows.Close()

	registrations := []*model.ClassRegistration{}
	for rows.Next() {
		reg, err := scanRegistrationWithClass(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		registrations = append(registrations, reg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list registrations by student: %w", err)
	}

	return registrations, nil
}

// scanRegistrationWithClass reads registration columns followed by classColumns.
func scanRegistrationWithClass(row scanner) (*model.ClassRegistration, error) {
	var (
		reg    model.ClassRegistration
		status int
	)
	class, err := scanClass(prefixScanner{row: row, prefix: []any{
		&reg.ID, &reg.ClassID, &reg.StudentID, &status, &reg.RegisteredAt,
	}})
	if err != nil {
		return nil, err
	}
	if reg.Status, err = model.ParseRegistrationStatus(status); err != nil {
		return nil, fmt.Errorf("registration %d: %w", reg.ID, err)
	}
	reg.Class = class
	return &reg, nil
}

// prefixScanner puts extra destinations in front of the ones a scan helper asks for.
type prefixScanner struct {
	row    scanner
	prefix []any
}

func (p prefixScanner) Scan(dest ...any) error {
	return p.row.Scan(append(p.prefix, dest...)...)
}
