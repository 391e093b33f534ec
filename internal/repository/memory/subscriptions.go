package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/Freeeeeet/lms_backoffice/internal/model"
	"github.com/Freeeeeet/lms_backoffice/internal/repository"
)

type subscriptionRepository struct {
	s *Store
}

func (r subscriptionRepository) Create(_ context.Context, sub *model.Subscription) error {
	return r.s.write(func(d *dataset) error {
		if _, ok := d.students[sub.StudentID]; !ok {
			return fmt.Errorf("create subscription: %w", repository.ErrMissingReference)
		}
		sub.ID = d.nextID()
		sub.CreatedAt = r.s.now()
		d.subscriptions[sub.ID] = *sub
		return nil
	})
}

func (r subscriptionRepository) GetByID(_ context.Context, id int64) (*model.Subscription, error) {
	var out *model.Subscription
	err := r.s.read(func(d *dataset) error {
		if sub, ok := d.subscriptions[id]; ok {
			out = &sub
		}
		return nil
	})
	return out, err
}

// GetForUpdate needs no extra locking: WithinTx already holds the store mutex.
func (r subscriptionRepository) GetForUpdate(ctx context.Context, id int64) (*model.Subscription, error) {
	return r.GetByID(ctx, id)
}

func (r subscriptionRepository) List(_ context.Context) ([]*model.Subscription, error) {
	return r.filter(func(model.Subscription) bool { return true }, false)
}

func (r subscriptionRepository) ListByStudent(_ context.Context, studentID int64) ([]*model.Subscription, error) {
	return r.filter(func(sub model.Subscription) bool { return sub.StudentID == studentID }, true)
}

func (r subscriptionRepository) ListByStatus(_ context.Context, status model.SubscriptionStatus) ([]*model.Subscription, error) {
	return r.filter(func(sub model.Subscription) bool { return sub.Status == status }, false)
}

func (r subscriptionRepository) filter(match func(model.Subscription) bool, newestFirst bool) ([]*model.Subscription, error) {
	out := []*model.Subscription{}
	err := r.s.read(func(d *dataset) error {
		for _, sub := range d.subscriptions {
			if match(sub) {
				sub := sub
				out = append(out, &sub)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if newestFirst {
			return out[i].ID > out[j].ID
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

func (r subscriptionRepository) Update(_ context.Context, sub *model.Subscription) error {
	return r.s.write(func(d *dataset) error {
		current, ok := d.subscriptions[sub.ID]
		if !ok {
			return fmt.Errorf("update subscription %d: %w", sub.ID, repository.ErrNotFound)
		}
		updated := *sub
		updated.StudentID = current.StudentID
		updated.CreatedAt = current.CreatedAt
		d.subscriptions[sub.ID] = updated
		return nil
	})
}

func (r subscriptionRepository) Delete(_ context.Context, id int64) error {
	return r.s.write(func(d *dataset) error {
		if _, ok := d.subscriptions[id]; !ok {
			return fmt.Errorf("delete subscription %d: %w", id, repository.ErrNotFound)
		}
		delete(d.subscriptions, id)
		return nil
	})
}
