package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Freeeeeet/lms_backoffice/internal/model"
	"github.com/Freeeeeet/lms_backoffice/internal/repository/memory"
	"github.com/Freeeeeet/lms_backoffice/internal/service"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// Monday, 10 March 2025.
var testNow = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	t     *testing.T
	ctx   context.Context
	store *memory.Store
	svc   *service.Services
	seq   int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureAt(t, testNow)
}

func newFixtureAt(t *testing.T, now time.Time) *fixture {
	t.Helper()
	clock := service.FixedClock(now)
	store := memory.NewStore(memory.WithClock(clock))
	return &fixture{
		t:     t,
		ctx:   context.Background(),
		store: store,
		svc:   service.New(store, clock, zaptest.NewLogger(t)),
	}
}

func (f *fixture) parent() *model.Parent {
	f.t.Helper()
	f.seq++
	p, err := f.svc.Parents.Create(f.ctx, service.ParentInput{
		Name:  "Parent",
		Phone: "0900000" + leftPad(f.seq),
		Email: "parent" + leftPad(f.seq) + "@example.com",
	})
	require.NoError(f.t, err)
	return p
}

func (f *fixture) student() *model.Student {
	f.t.Helper()
	p := f.parent()
	st, err := f.svc.Students.Create(f.ctx, service.StudentInput{
		Name:         "Student",
		DateOfBirth:  time.Date(2015, time.May, 1, 0, 0, 0, 0, time.UTC),
		Gender:       model.GenderFemale,
		CurrentGrade: "4",
		ParentID:     p.ID,
	})
	require.NoError(f.t, err)
	return st
}

func (f *fixture) class(day model.DayOfWeek, start, end string, capacity int) *model.Class {
	f.t.Helper()
	c, err := f.svc.Classes.Create(f.ctx, service.ClassInput{
		Name:        "Class",
		Subject:     "Math",
		DayOfWeek:   day,
		StartTime:   mustTime(f.t, start),
		EndTime:     mustTime(f.t, end),
		TeacherName: "Teacher",
		MaxStudents: capacity,
	})
	require.NoError(f.t, err)
	return c
}

func (f *fixture) subscription(studentID int64, start, end time.Time, total int) *model.Subscription {
	f.t.Helper()
	sub, err := f.svc.Subscriptions.Create(f.ctx, service.SubscriptionInput{
		StudentID:     studentID,
		PackageName:   "Package",
		StartDate:     start,
		EndDate:       end,
		TotalSessions: total,
	})
	require.NoError(f.t, err)
	return sub
}

func mustTime(t *testing.T, s string) model.TimeOfDay {
	t.Helper()
	v, err := model.ParseTimeOfDay(s)
	require.NoError(t, err)
	return v
}

func leftPad(n int) string {
	return fmt.Sprintf("%04d", n)
}

func days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}
