package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/Freeeeeet/lms_backoffice/internal/model"
	"github.com/Freeeeeet/lms_backoffice/internal/repository"
)

type studentRepository struct {
	s *Store
}

func (r studentRepository) Create(_ context.Context, student *model.Student) error {
	return r.s.write(func(d *dataset) error {
		if _, ok := d.parents[student.ParentID]; !ok {
			return fmt.Errorf("create student: %w", repository.ErrMissingReference)
		}
		student.ID = d.nextID()
		student.CreatedAt = r.s.now()
		d.students[student.ID] = storedStudent(student)
		return nil
	})
}

func (r studentRepository) GetByID(_ context.Context, id int64) (*model.Student, error) {
	var out *model.Student
	err := r.s.read(func(d *dataset) error {
		if st, ok := d.students[id]; ok {
			out = &st
		}
		return nil
	})
	return out, err
}

// GetForUpdate needs no extra locking: WithinTx already holds the store mutex.
func (r studentRepository) GetForUpdate(ctx context.Context, id int64) (*model.Student, error) {
	return r.GetByID(ctx, id)
}

func (r studentRepository) LockEnrolledInClass(_ context.Context, classID int64) ([]int64, error) {
	ids := []int64{}
	err := r.s.read(func(d *dataset) error {
		seen := map[int64]bool{}
		for _, reg := range d.registrations {
			if reg.ClassID == classID && reg.Status == model.RegistrationActive && !seen[reg.StudentID] {
				seen[reg.StudentID] = true
				ids = append(ids, reg.StudentID)
			}
		}
		return nil
	})
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, err
}

func (r studentRepository) List(_ context.Context) ([]*model.Student, error) {
	return r.filter(func(model.Student) bool { return true })
}

func (r studentRepository) ListByParent(_ context.Context, parentID int64) ([]*model.Student, error) {
	return r.filter(func(st model.Student) bool { return st.ParentID == parentID })
}

func (r studentRepository) filter(match func(model.Student) bool) ([]*model.Student, error) {
	out := []*model.Student{}
	err := r.s.read(func(d *dataset) error {
		for _, st := range d.students {
			if match(st) {
				st := st
				out = append(out, &st)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r studentRepository) Update(_ context.Context, student *model.Student) error {
	return r.s.write(func(d *dataset) error {
		current, ok := d.students[student.ID]
		if !ok {
			return fmt.Errorf("update student %d: %w", student.ID, repository.ErrNotFound)
		}
		updated := storedStudent(student)
		updated.ParentID = current.ParentID
		updated.CreatedAt = current.CreatedAt
		d.students[student.ID] = updated
		return nil
	})
}

func (r studentRepository) Delete(_ context.Context, id int64) error {
	return r.s.write(func(d *dataset) error {
		if _, ok := d.students[id]; !ok {
			return fmt.Errorf("delete student %d: %w", id, repository.ErrNotFound)
		}
		deleteStudent(d, id)
		return nil
	})
}

// deleteStudent removes a student with its registrations and subscriptions.
func deleteStudent(d *dataset, id int64) {
	delete(d.students, id)
	for rid, reg := range d.registrations {
		if reg.StudentID == id {
			delete(d.registrations, rid)
		}
	}
	for sid, sub := range d.subscriptions {
		if sub.StudentID == id {
			delete(d.subscriptions, sid)
		}
	}
}

func storedStudent(st *model.Student) model.Student {
	stored := *st
	stored.Parent = nil
	stored.Registrations = nil
	return stored
}
