package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/lms_backoffice/internal/app"
	"github.com/Freeeeeet/lms_backoffice/internal/model"
	"github.com/Freeeeeet/lms_backoffice/internal/repository"
	"github.com/Freeeeeet/lms_backoffice/internal/repository/postgres"
	"github.com/Freeeeeet/lms_backoffice/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// Monday, 10 March 2025.
var testNow = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

// Тесты идут против настоящей базы: TEST_DB_DSN=postgres://... go test ./internal/repository/postgres/
func newTestStore(t *testing.T) *postgres.Store {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN is not set")
	}

	ctx := context.Background()
	pool, err := postgres.Connect(ctx, dsn)
	require.NoError(t, err)

	migrator, err := app.NewMigrator(pool, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, migrator.Up(ctx))
	require.NoError(t, migrator.Close())

	_, err = pool.Exec(ctx, `TRUNCATE subscriptions, class_registrations, classes, students, parents RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	store := postgres.NewStore(pool)
	t.Cleanup(store.Close)
	return store
}

type seeder struct {
	t     *testing.T
	ctx   context.Context
	store *postgres.Store
	svc   *service.Services
	seq   int
}

func newSeeder(t *testing.T) *seeder {
	store := newTestStore(t)
	return &seeder{
		t:     t,
		ctx:   context.Background(),
		store: store,
		svc:   service.New(store, service.FixedClock(testNow), zaptest.NewLogger(t)),
	}
}

func (s *seeder) student() *model.Student {
	s.t.Helper()
	s.seq++
	parent := &model.Parent{
		Name:  "Parent",
		Phone: fmt.Sprintf("0900000%04d", s.seq),
		Email: fmt.Sprintf("parent%04d@example.com", s.seq),
	}
	require.NoError(s.t, s.store.Parents().Create(s.ctx, parent))

	student := &model.Student{
		Name:         "Student",
		DateOfBirth:  time.Date(2015, time.May, 1, 0, 0, 0, 0, time.UTC),
		Gender:       model.GenderMale,
		CurrentGrade: "4",
		ParentID:     parent.ID,
	}
	require.NoError(s.t, s.store.Students().Create(s.ctx, student))
	return student
}

func (s *seeder) class(day model.DayOfWeek, start, end string, capacity int) *model.Class {
	s.t.Helper()
	class, err := s.svc.Classes.Create(s.ctx, classInput(s.t, day, start, end, capacity))
	require.NoError(s.t, err)
	return class
}

func classInput(t *testing.T, day model.DayOfWeek, start, end string, capacity int) service.ClassInput {
	return service.ClassInput{
		Name:        "Class",
		Subject:     "Math",
		DayOfWeek:   day,
		StartTime:   mustTime(t, start),
		EndTime:     mustTime(t, end),
		TeacherName: "Teacher",
		MaxStudents: capacity,
	}
}

func mustTime(t *testing.T, s string) model.TimeOfDay {
	t.Helper()
	v, err := model.ParseTimeOfDay(s)
	require.NoError(t, err)
	return v
}

func TestClassRepository_TimeRoundTrip(t *testing.T) {
	s := newSeeder(t)
	class := s.class(model.Saturday, "09:30:15", "23:59:59", 2)

	stored, err := s.store.Classes().GetByID(s.ctx, class.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, mustTime(t, "09:30:15"), stored.StartTime)
	assert.Equal(t, mustTime(t, "23:59:59"), stored.EndTime)
	assert.Equal(t, model.Saturday, stored.DayOfWeek)
	assert.Zero(t, stored.ActiveStudents)

	missing, err := s.store.Classes().GetByID(s.ctx, class.ID+100)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestEnroll_ScheduleBoundaries(t *testing.T) {
	tests := []struct {
		name       string
		day        model.DayOfWeek
		start, end string
		wantErr    error
	}{
		{name: "touching after", day: model.Monday, start: "10:00", end: "11:00"},
		{name: "touching before", day: model.Monday, start: "08:00", end: "09:00"},
		{name: "overlap start", day: model.Monday, start: "08:30", end: "09:30", wantErr: service.ErrScheduleConflict},
		{name: "overlap end", day: model.Monday, start: "09:59", end: "10:30", wantErr: service.ErrScheduleConflict},
		{name: "contained", day: model.Monday, start: "09:15", end: "09:45", wantErr: service.ErrScheduleConflict},
		{name: "same slot", day: model.Monday, start: "09:00", end: "10:00", wantErr: service.ErrScheduleConflict},
		{name: "other day", day: model.Tuesday, start: "09:00", end: "10:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSeeder(t)
			st := s.student()
			first := s.class(model.Monday, "09:00", "10:00", 5)
			_, err := s.svc.Classes.Enroll(s.ctx, first.ID, st.ID)
			require.NoError(t, err)

			overlaps, err := s.store.Registrations().HasScheduleConflict(s.ctx, st.ID, tt.day, mustTime(t, tt.start), mustTime(t, tt.end))
			require.NoError(t, err)
			assert.Equal(t, tt.wantErr != nil, overlaps)

			second := s.class(tt.day, tt.start, tt.end, 5)
			_, err = s.svc.Classes.Enroll(s.ctx, second.ID, st.ID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestRegistrationRepository_ActiveIndexRejectsDuplicate(t *testing.T) {
	s := newSeeder(t)
	st := s.student()
	class := s.class(model.Monday, "09:00", "10:00", 5)

	reg := &model.ClassRegistration{ClassID: class.ID, StudentID: st.ID, Status: model.RegistrationActive, RegisteredAt: testNow}
	require.NoError(t, s.store.Registrations().Create(s.ctx, reg))

	dup := &model.ClassRegistration{ClassID: class.ID, StudentID: st.ID, Status: model.RegistrationActive, RegisteredAt: testNow}
	err := s.store.Registrations().Create(s.ctx, dup)
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	_, err = s.svc.Classes.Enroll(s.ctx, class.ID, st.ID)
	assert.ErrorIs(t, err, service.ErrAlreadyRegistered)

	missing := &model.ClassRegistration{ClassID: class.ID + 100, StudentID: st.ID, Status: model.RegistrationActive, RegisteredAt: testNow}
	err = s.store.Registrations().Create(s.ctx, missing)
	assert.ErrorIs(t, err, repository.ErrMissingReference)
}

func TestStore_WithinTxRollsBack(t *testing.T) {
	s := newSeeder(t)
	boom := errors.New("boom")

	err := s.store.WithinTx(s.ctx, func(tx repository.Tx) error {
		require.NoError(t, tx.Parents().Create(s.ctx, &model.Parent{Name: "P", Phone: "09123456789", Email: "p@example.com"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	parents, err := s.store.Parents().List(s.ctx)
	require.NoError(t, err)
	assert.Empty(t, parents)
}

func TestStudentRepository_LockEnrolledInClass(t *testing.T) {
	s := newSeeder(t)
	class := s.class(model.Monday, "09:00", "10:00", 5)
	other := s.class(model.Tuesday, "09:00", "10:00", 5)
	first, second, outsider := s.student(), s.student(), s.student()
	for _, st := range []*model.Student{second, first} {
		_, err := s.svc.Classes.Enroll(s.ctx, class.ID, st.ID)
		require.NoError(t, err)
	}
	_, err := s.svc.Classes.Enroll(s.ctx, other.ID, outsider.ID)
	require.NoError(t, err)

	err = s.store.WithinTx(s.ctx, func(tx repository.Tx) error {
		ids, err := tx.Students().LockEnrolledInClass(s.ctx, class.ID)
		require.NoError(t, err)
		assert.Equal(t, []int64{first.ID, second.ID}, ids)
		return nil
	})
	require.NoError(t, err)
}

func TestEnroll_ConcurrentNeverExceedsCapacity(t *testing.T) {
	s := newSeeder(t)
	const capacity, contenders = 3, 15
	class := s.class(model.Friday, "16:00", "17:00", capacity)

	students := make([]*model.Student, contenders)
	for i := range students {
		students[i] = s.student()
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		enrolled int
	)
	for _, st := range students {
		wg.Add(1)
		go func(studentID int64) {
			defer wg.Done()
			_, err := s.svc.Classes.Enroll(s.ctx, class.ID, studentID)
			if err != nil {
				assert.ErrorIs(t, err, service.ErrClassFull)
				return
			}
			mu.Lock()
			enrolled++
			mu.Unlock()
		}(st.ID)
	}
	wg.Wait()

	assert.Equal(t, capacity, enrolled)
	count, err := s.store.Registrations().CountActiveByClass(s.ctx, class.ID)
	require.NoError(t, err)
	assert.Equal(t, capacity, count)
}

func TestClassUpdate_ConcurrentWithEnrollKeepsScheduleDisjoint(t *testing.T) {
	s := newSeeder(t)

	for round := 0; round < 20; round++ {
		st := s.student()
		moved := s.class(model.Monday, "09:00", "10:00", 5)
		target := s.class(model.Tuesday, "09:00", "10:00", 5)
		_, err := s.svc.Classes.Enroll(s.ctx, moved.ID, st.ID)
		require.NoError(t, err)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := s.svc.Classes.Update(s.ctx, moved.ID, classInput(t, model.Tuesday, "09:30", "10:30", 5))
			if err != nil {
				assert.ErrorIs(t, err, service.ErrScheduleConflict)
			}
		}()
		go func() {
			defer wg.Done()
			_, err := s.svc.Classes.Enroll(s.ctx, target.ID, st.ID)
			if err != nil {
				assert.ErrorIs(t, err, service.ErrScheduleConflict)
			}
		}()
		wg.Wait()

		regs, err := s.store.Registrations().ListByStudent(s.ctx, st.ID)
		require.NoError(t, err)
		var active []*model.Class
		for _, reg := range regs {
			if reg.Status == model.RegistrationActive {
				active = append(active, reg.Class)
			}
		}
		for i := range active {
			for j := i + 1; j < len(active); j++ {
				assert.False(t, active[i].Overlaps(active[j].DayOfWeek, active[j].StartTime, active[j].EndTime),
					"round %d: classes %d and %d overlap", round, active[i].ID, active[j].ID)
			}
		}
	}
}

func TestUseOneSession_ConcurrentNeverOverspends(t *testing.T) {
	s := newSeeder(t)
	st := s.student()
	sub, err := s.svc.Subscriptions.Create(s.ctx, service.SubscriptionInput{
		StudentID:     st.ID,
		PackageName:   "Package",
		StartDate:     testNow.AddDate(0, 0, -1),
		EndDate:       testNow.AddDate(0, 0, 30),
		TotalSessions: 3,
	})
	require.NoError(t, err)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		used int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.svc.Subscriptions.UseOneSession(s.ctx, sub.ID); err == nil {
				mu.Lock()
				used++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, used)
	stored, err := s.store.Subscriptions().GetByID(s.ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.UsedSessions)
	assert.Equal(t, model.SubscriptionCompleted, stored.Status)
}
