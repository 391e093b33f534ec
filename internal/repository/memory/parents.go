package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/Freeeeeet/lms_backoffice/internal/model"
	"github.com/Freeeeeet/lms_backoffice/internal/repository"
)

type parentRepository struct {
	s *Store
}

func (r parentRepository) Create(_ context.Context, parent *model.Parent) error {
	return r.s.write(func(d *dataset) error {
		for _, p := range d.parents {
			if p.Email == parent.Email || p.Phone == parent.Phone {
				return fmt.Errorf("create parent: %w", repository.ErrDuplicate)
			}
		}
		parent.ID = d.nextID()
		parent.CreatedAt = r.s.now()
		d.parents[parent.ID] = storedParent(parent)
		return nil
	})
}

func (r parentRepository) GetByID(_ context.Context, id int64) (*model.Parent, error) {
	var out *model.Parent
	err := r.s.read(func(d *dataset) error {
		if p, ok := d.parents[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

func (r parentRepository) List(_ context.Context) ([]*model.Parent, error) {
	out := []*model.Parent{}
	err := r.s.read(func(d *dataset) error {
		for _, p := range d.parents {
			p := p
			out = append(out, &p)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r parentRepository) Update(_ context.Context, parent *model.Parent) error {
	return r.s.write(func(d *dataset) error {
		if _, ok := d.parents[parent.ID]; !ok {
			return fmt.Errorf("update parent %d: %w", parent.ID, repository.ErrNotFound)
		}
		for id, p := range d.parents {
			if id != parent.ID && (p.Email == parent.Email || p.Phone == parent.Phone) {
				return fmt.Errorf("update parent: %w", repository.ErrDuplicate)
			}
		}
		d.parents[parent.ID] = storedParent(parent)
		return nil
	})
}

func (r parentRepository) Delete(_ context.Context, id int64) error {
	return r.s.write(func(d *dataset) error {
		if _, ok := d.parents[id]; !ok {
			return fmt.Errorf("delete parent %d: %w", id, repository.ErrNotFound)
		}
		delete(d.parents, id)
		for sid, st := range d.students {
			if st.ParentID == id {
				deleteStudent(d, sid)
			}
		}
		return nil
	})
}

func (r parentRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	return r.exists(func(p model.Parent) bool { return p.Email == email })
}

func (r parentRepository) ExistsByPhone(_ context.Context, phone string) (bool, error) {
	return r.exists(func(p model.Parent) bool { return p.Phone == phone })
}

func (r parentRepository) exists(match func(model.Parent) bool) (bool, error) {
	found := false
	err := r.s.read(func(d *dataset) error {
		for _, p := range d.parents {
			if match(p) {
				found = true
				return nil
			}
		}
		return nil
	})
	return found, err
}

func storedParent(p *model.Parent) model.Parent {
	stored := *p
	stored.Students = nil
	return stored
}
