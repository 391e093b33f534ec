package repository

import (
	"context"
	"errors"

	"github.com/Freeeeeet/lms_backoffice/internal/model"
)

var (
	// ErrNotFound возвращают Update и Delete, если строки с таким id нет.
	// Поиск по id в этом случае возвращает (nil, nil).
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate: запись нарушила ограничение уникальности
	ErrDuplicate = errors.New("duplicate record")
	// ErrMissingReference: запись ссылается на несуществующую строку
	ErrMissingReference = errors.New("referenced record does not exist")
)

type ParentRepository interface {
	Create(ctx context.Context, parent *model.Parent) error
	GetByID(ctx context.Context, id int64) (*model.Parent, error)
	List(ctx context.Context) ([]*model.Parent, error)
	Update(ctx context.Context, parent *model.Parent) error
	Delete(ctx context.Context, id int64) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
}

type StudentRepository interface {
	Create(ctx context.Context, student *model.Student) error
	GetByID(ctx context.Context, id int64) (*model.Student, error)
	// GetForUpdate блокирует строку ученика до конца транзакции
	GetForUpdate(ctx context.Context, id int64) (*model.Student, error)
	// LockEnrolledInClass блокирует активно записанных в класс учеников в порядке ID
	// и возвращает их ID
	LockEnrolledInClass(ctx context.Context, classID int64) ([]int64, error)
	List(ctx context.Context) ([]*model.Student, error)
	ListByParent(ctx context.Context, parentID int64) ([]*model.Student, error)
	Update(ctx context.Context, student *model.Student) error
	Delete(ctx context.Context, id int64) error
}

type ClassRepository interface {
	Create(ctx context.Context, class *model.Class) error
	GetByID(ctx context.Context, id int64) (*model.Class, error)
	// GetForUpdate блокирует строку класса до конца транзакции
	GetForUpdate(ctx context.Context, id int64) (*model.Class, error)
	// List и ListByDay заполняют ActiveStudents
	List(ctx context.Context) ([]*model.Class, error)
	ListByDay(ctx context.Context, day model.DayOfWeek) ([]*model.Class, error)
	Update(ctx context.Context, class *model.Class) error
	Delete(ctx context.Context, id int64) error
}

type RegistrationRepository interface {
	Create(ctx context.Context, registration *model.ClassRegistration) error
	ExistsActive(ctx context.Context, classID, studentID int64) (bool, error)
	CountActiveByClass(ctx context.Context, classID int64) (int, error)
	// HasScheduleConflict проверяет, есть ли у ученика активная запись в класс в тот же день,
	// чей интервал [start, end) пересекается с заданным
	HasScheduleConflict(ctx context.Context, studentID int64, day model.DayOfWeek, start, end model.TimeOfDay) (bool, error)
	// HasEnrolledScheduleConflict проверяет, пересечётся ли перенесённый в новый слот класс
	// с другими активными записями уже записанных в него учеников
	HasEnrolledScheduleConflict(ctx context.Context, classID int64, day model.DayOfWeek, start, end model.TimeOfDay) (bool, error)
	// ListByClass заполняет Student (вместе с Parent)
	ListByClass(ctx context.Context, classID int64) ([]*model.ClassRegistration, error)
	// ListByStudent заполняет Class
	ListByStudent(ctx context.Context, studentID int64) ([]*model.ClassRegistration, error)
}

type SubscriptionRepository interface {
	Create(ctx context.Context, subscription *model.Subscription) error
	GetByID(ctx context.Context, id int64) (*model.Subscription, error)
	// GetForUpdate блокирует строку абонемента до конца транзакции
	GetForUpdate(ctx context.Context, id int64) (*model.Subscription, error)
	List(ctx context.Context) ([]*model.Subscription, error)
	ListByStudent(ctx context.Context, studentID int64) ([]*model.Subscription, error)
	ListByStatus(ctx context.Context, status model.SubscriptionStatus) ([]*model.Subscription, error)
	Update(ctx context.Context, subscription *model.Subscription) error
	Delete(ctx context.Context, id int64) error
}

// Tx объединяет репозитории одной транзакции
type Tx interface {
	Parents() ParentRepository
	Students() StudentRepository
	Classes() ClassRepository
	Registrations() RegistrationRepository
	Subscriptions() SubscriptionRepository
}

// Store хранилище сущностей. Вне WithinTx каждый вызов выполняется отдельно.
type Store interface {
	Tx
	// WithinTx выполняет fn в одной транзакции: коммит, если fn вернула nil, иначе откат.
	// Записи из неудачной fn никогда не становятся видны.
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
	Close()
}
