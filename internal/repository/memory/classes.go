package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/Freeeeeet/lms_backoffice/internal/model"
	"github.com/Freeeeeet/lms_backoffice/internal/repository"
)

type classRepository struct {
	s *Store
}

func (r classRepository) Create(_ context.Context, class *model.Class) error {
	return r.s.write(func(d *dataset) error {
		class.ID = d.nextID()
		class.CreatedAt = r.s.now()
		d.classes[class.ID] = storedClass(class)
		return nil
	})
}

func (r classRepository) GetByID(_ context.Context, id int64) (*model.Class, error) {
	var out *model.Class
	err := r.s.read(func(d *dataset) error {
		if c, ok := d.classes[id]; ok {
			out = &c
		}
		return nil
	})
	return out, err
}

// GetForUpdate needs no extra locking: WithinTx already holds the store mutex.
func (r classRepository) GetForUpdate(ctx context.Context, id int64) (*model.Class, error) {
	return r.GetByID(ctx, id)
}

func (r classRepository) List(_ context.Context) ([]*model.Class, error) {
	return r.filter(func(model.Class) bool { return true })
}

func (r classRepository) ListByDay(_ context.Context, day model.DayOfWeek) ([]*model.Class, error) {
	return r.filter(func(c model.Class) bool { return c.DayOfWeek == day })
}

func (r classRepository) filter(match func(model.Class) bool) ([]*model.Class, error) {
	out := []*model.Class{}
	err := r.s.read(func(d *dataset) error {
		for _, c := range d.classes {
			if !match(c) {
				continue
			}
			c := c
			c.ActiveStudents = countActive(d, c.ID)
			out = append(out, &c)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.DayOfWeek != b.DayOfWeek {
			return a.DayOfWeek < b.DayOfWeek
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return a.ID < b.ID
	})
	return out, err
}

func (r classRepository) Update(_ context.Context, class *model.Class) error {
	return r.s.write(func(d *dataset) error {
		current, ok := d.classes[class.ID]
		if !ok {
			return fmt.Errorf("update class %d: %w", class.ID, repository.ErrNotFound)
		}
		updated := storedClass(class)
		updated.CreatedAt = current.CreatedAt
		d.classes[class.ID] = updated
		return nil
	})
}

func (r classRepository) Delete(_ context.Context, id int64) error {
	return r.s.write(func(d *dataset) error {
		if _, ok := d.classes[id]; !ok {
			return fmt.Errorf("delete class %d: %w", id, repository.ErrNotFound)
		}
		delete(d.classes, id)
		for rid, reg := range d.registrations {
			if reg.ClassID == id {
				delete(d.registrations, rid)
			}
		}
		return nil
	})
}

func countActive(d *dataset, classID int64) int {
	n := 0
	for _, reg := range d.registrations {
		if reg.ClassID == classID && reg.IsActive() {
			n++
		}
	}
	return n
}

func storedClass(c *model.Class) model.Class {
	stored := *c
	stored.ActiveStudents = 0
	stored.Registrations = nil
	return stored
}
