package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{in: "09:00", want: NewTimeOfDay(9, 0, 0)},
		{in: "09:00:30", want: NewTimeOfDay(9, 0, 30)},
		{in: " 23:59:59 ", want: NewTimeOfDay(23, 59, 59)},
		{in: "00:00", want: 0},
		{in: "24:00", wantErr: true},
		{in: "9am", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Valid())
		})
	}

	assert.Equal(t, "07:05:09", NewTimeOfDay(7, 5, 9).String())
}

func TestDayOfWeekJSON(t *testing.T) {
	raw, err := json.Marshal(Wednesday)
	require.NoError(t, err)
	assert.JSONEq(t, `"WEDNESDAY"`, string(raw))

	for input, want := range map[string]DayOfWeek{
		`0`:          Sunday,
		`6`:          Saturday,
		`"1"`:        Monday,
		`"friday"`:   Friday,
		`"TUESDAY"`:  Tuesday,
		` "Sunday" `: Sunday,
	} {
		var d DayOfWeek
		require.NoError(t, json.Unmarshal([]byte(input), &d), input)
		assert.Equal(t, want, d, input)
	}

	for _, input := range []string{`7`, `-1`, `"Funday"`, `true`} {
		var d DayOfWeek
		assert.Error(t, json.Unmarshal([]byte(input), &d), input)
	}
}

func TestClassOverlaps(t *testing.T) {
	class := Class{DayOfWeek: Monday, StartTime: NewTimeOfDay(10, 0, 0), EndTime: NewTimeOfDay(11, 0, 0)}

	tests := []struct {
		name       string
		day        DayOfWeek
		start, end TimeOfDay
		want       bool
	}{
		{"touching after", Monday, NewTimeOfDay(11, 0, 0), NewTimeOfDay(12, 0, 0), false},
		{"touching before", Monday, NewTimeOfDay(9, 0, 0), NewTimeOfDay(10, 0, 0), false},
		{"partial", Monday, NewTimeOfDay(10, 30, 0), NewTimeOfDay(11, 30, 0), true},
		{"inside", Monday, NewTimeOfDay(10, 15, 0), NewTimeOfDay(10, 45, 0), true},
		{"other day", Tuesday, NewTimeOfDay(10, 0, 0), NewTimeOfDay(11, 0, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, class.Overlaps(tt.day, tt.start, tt.end))
		})
	}
}

func TestClassValidity(t *testing.T) {
	c := Class{StartTime: NewTimeOfDay(9, 0, 0), EndTime: NewTimeOfDay(9, 0, 0), MaxStudents: 2, ActiveStudents: 1}
	assert.False(t, c.HasValidTimeRange())
	c.EndTime = NewTimeOfDay(9, 0, 1)
	assert.True(t, c.HasValidTimeRange())

	assert.False(t, c.IsFull())
	c.ActiveStudents = 2
	assert.True(t, c.IsFull())
}

func TestSubscriptionHelpers(t *testing.T) {
	day := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	sub := Subscription{StartDate: day, EndDate: day, TotalSessions: 3, UsedSessions: 1}
	assert.True(t, sub.HasValidDateRange())
	assert.Equal(t, 2, sub.RemainingSessions())

	sub.EndDate = day.Add(-time.Hour)
	assert.False(t, sub.HasValidDateRange())

	sub.UsedSessions = 5
	assert.Zero(t, sub.RemainingSessions())
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseDate("2025-03-10T23:30:00+03:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseDate("10.03.2025")
	assert.Error(t, err)
}

func TestClosedEnums(t *testing.T) {
	_, err := ParseSubscriptionStatus(3)
	assert.Error(t, err)
	_, err = ParseRegistrationStatus(2)
	assert.Error(t, err)
	_, err = ParseGender(-1)
	assert.Error(t, err)

	s, err := ParseSubscriptionStatus(2)
	require.NoError(t, err)
	assert.Equal(t, SubscriptionCompleted, s)
	assert.True(t, s.IsTerminal())
	assert.False(t, SubscriptionActive.IsTerminal())
}
