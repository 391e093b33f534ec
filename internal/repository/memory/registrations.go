package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/Freeeeeet/lms_backoffice/internal/model"
	"github.com/Freeeeeet/lms_backoffice/internal/repository"
)

type registrationRepository struct {
	s *Store
}

func (r registrationRepository) Create(_ context.Context, registration *model.ClassRegistration) error {
	return r.s.write(func(d *dataset) error {
		if _, ok := d.classes[registration.ClassID]; !ok {
			return fmt.Errorf("create registration: %w", repository.ErrMissingReference)
		}
		if _, ok := d.students[registration.StudentID]; !ok {
			return fmt.Errorf("create registration: %w", repository.ErrMissingReference)
		}
		if registration.IsActive() && activeExists(d, registration.ClassID, registration.StudentID) {
			return fmt.Errorf("create registration: %w", repository.ErrDuplicate)
		}
		registration.ID = d.nextID()
		stored := *registration
		stored.Class = nil
		stored.Student = nil
		d.registrations[registration.ID] = stored
		return nil
	})
}

func (r registrationRepository) ExistsActive(_ context.Context, classID, studentID int64) (bool, error) {
	var found bool
	err := r.s.read(func(d *dataset) error {
		found = activeExists(d, classID, studentID)
		return nil
	})
	return found, err
}

func (r registrationRepository) CountActiveByClass(_ context.Context, classID int64) (int, error) {
	var n int
	err := r.s.read(func(d *dataset) error {
		n = countActive(d, classID)
		return nil
	})
	return n, err
}

func (r registrationRepository) HasScheduleConflict(_ context.Context, studentID int64, day model.DayOfWeek, start, end model.TimeOfDay) (bool, error) {
	var found bool
	err := r.s.read(func(d *dataset) error {
		found = studentOverlaps(d, studentID, 0, day, start, end)
		return nil
	})
	return found, err
}

func (r registrationRepository) HasEnrolledScheduleConflict(_ context.Context, classID int64, day model.DayOfWeek, start, end model.TimeOfDay) (bool, error) {
	var found bool
	err := r.s.read(func(d *dataset) error {
		for _, reg := range d.registrations {
			if reg.ClassID == classID && reg.IsActive() && studentOverlaps(d, reg.StudentID, classID, day, start, end) {
				found = true
				return nil
			}
		}
		return nil
	})
	return found, err
}

func (r registrationRepository) ListByClass(_ context.Context, classID int64) ([]*model.ClassRegistration, error) {
	out := []*model.ClassRegistration{}
	err := r.s.read(func(d *dataset) error {
		for _, reg := range d.registrations {
			if reg.ClassID != classID {
				continue
			}
			reg := reg
			st := d.students[reg.StudentID]
			p := d.parents[st.ParentID]
			st.Parent = &p
			reg.Student = &st
			out = append(out, &reg)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r registrationRepository) ListByStudent(_ context.Context, studentID int64) ([]*model.ClassRegistration, error) {
	out := []*model.ClassRegistration{}
	err := r.s.read(func(d *dataset) error {
		for _, reg := range d.registrations {
			if reg.StudentID != studentID {
				continue
			}
			reg := reg
			c := d.classes[reg.ClassID]
			reg.Class = &c
			out = append(out, &reg)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Class, out[j].Class
		if a.DayOfWeek != b.DayOfWeek {
			return a.DayOfWeek < b.DayOfWeek
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

func activeExists(d *dataset, classID, studentID int64) bool {
	for _, reg := range d.registrations {
		if reg.ClassID == classID && reg.StudentID == studentID && reg.IsActive() {
			return true
		}
	}
	return false
}

// studentOverlaps checks the student's active classes other than skipClassID.
func studentOverlaps(d *dataset, studentID, skipClassID int64, day model.DayOfWeek, start, end model.TimeOfDay) bool {
	for _, reg := range d.registrations {
		if reg.StudentID != studentID || !reg.IsActive() || reg.ClassID == skipClassID {
			continue
		}
		c, ok := d.classes[reg.ClassID]
		if ok && c.Overlaps(day, start, end) {
			return true
		}
	}
	return false
}
