// Package memory implements the Entity Store in process memory.
//
// A single mutex guards the data set. WithinTx holds it for the whole callback and works
// on a copy that replaces the live data only when the callback succeeds, so concurrent
// check-then-write sequences are serialized and failed ones leave nothing behind.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Freeeeeet/lms_backoffice/internal/model"
	"github.com/Freeeeeet/lms_backoffice/internal/repository"
)

type dataset struct {
	seq           int64
	parents       map[int64]model.Parent
	students      map[int64]model.Student
	classes       map[int64]model.Class
	registrations map[int64]model.ClassRegistration
	subscriptions map[int64]model.Subscription
}

func newDataset() *dataset {
	return &dataset{
		parents:       map[int64]model.Parent{},
		students:      map[int64]model.Student{},
		classes:       map[int64]model.Class{},
		registrations: map[int64]model.ClassRegistration{},
		subscriptions: map[int64]model.Subscription{},
	}
}

func (d *dataset) nextID() int64 {
	d.seq++
	return d.seq
}

func (d *dataset) clone() *dataset {
	c := &dataset{
		seq:           d.seq,
		parents:       make(map[int64]model.Parent, len(d.parents)),
		students:      make(map[int64]model.Student, len(d.students)),
		classes:       make(map[int64]model.Class, len(d.classes)),
		registrations: make(map[int64]model.ClassRegistration, len(d.registrations)),
		subscriptions: make(map[int64]model.Subscription, len(d.subscriptions)),
	}
	for k, v := range d.parents {
		c.parents[k] = v
	}
	for k, v := range d.students {
		c.students[k] = v
	}
	for k, v := range d.classes {
		c.classes[k] = v
	}
	for k, v := range d.registrations {
		c.registrations[k] = v
	}
	for k, v := range d.subscriptions {
		c.subscriptions[k] = v
	}
	return c
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the source of created_at timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

type Store struct {
	mu   *sync.Mutex
	data *dataset
	now  func() time.Time

	// set on the copy handed to a WithinTx callback
	tx *dataset
}

var _ repository.Store = (*Store)(nil)

func NewStore(opts ...Option) *Store {
	s := &Store{
		mu:   &sync.Mutex{},
		data: newDataset(),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// read runs fn against the live data set, or the transaction copy inside WithinTx.
func (s *Store) read(fn func(d *dataset) error) error {
	if s.tx != nil {
		return fn(s.tx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

// write runs fn against a copy and publishes it when fn succeeds.
func (s *Store) write(fn func(d *dataset) error) error {
	if s.tx != nil {
		return fn(s.tx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	working := s.data.clone()
	if err := fn(working); err != nil {
		return err
	}
	s.data = working
	return nil
}

func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	if s.tx != nil {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	txStore := &Store{mu: s.mu, data: s.data, now: s.now, tx: s.data.clone()}
	if err := fn(txStore); err != nil {
		return err
	}
	s.data = txStore.tx
	return nil
}

func (s *Store) Close() {}

func (s *Store) Parents() repository.ParentRepository             { return parentRepository{s} }
func (s *Store) Students() repository.StudentRepository           { return studentRepository{s} }
func (s *Store) Classes() repository.ClassRepository              { return classRepository{s} }
func (s *Store) Registrations() repository.RegistrationRepository { return registrationRepository{s} }
func (s *Store) Subscriptions() repository.SubscriptionRepository { return subscriptionRepository{s} }
