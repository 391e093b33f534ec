package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DayOfWeek uses the time.Weekday numbering: 0 = Sunday, 6 = Saturday.
type DayOfWeek int

const (
	Sunday DayOfWeek = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

// ParseDayOfWeek accepts an English day name (any case) or its number.
func ParseDayOfWeek(s string) (DayOfWeek, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return DayOfWeekFromInt(n)
	}
	for d := Sunday; d <= Saturday; d++ {
		if strings.EqualFold(s, d.String()) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("invalid day of week %q", s)
}

// DayOfWeekFromInt converts a stored value into a DayOfWeek.
func DayOfWeekFromInt(n int) (DayOfWeek, error) {
	if n < int(Sunday) || n > int(Saturday) {
		return 0, fmt.Errorf("invalid day of week %d", n)
	}
	return DayOfWeek(n), nil
}

func (d DayOfWeek) String() string {
	if d < Sunday || d > Saturday {
		return fmt.Sprintf("DayOfWeek(%d)", int(d))
	}
	return time.Weekday(d).String()
}

func (d DayOfWeek) MarshalJSON() ([]byte, error) {
	return json.Marshal(strings.ToUpper(d.String()))
}

func (d *DayOfWeek) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	var s string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	} else {
		s = string(data)
	}
	parsed, err := ParseDayOfWeek(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// TimeOfDay is the offset from midnight. Valid values lie in [00:00:00, 24:00:00).
type TimeOfDay time.Duration

// NewTimeOfDay builds a TimeOfDay from clock components.
func NewTimeOfDay(hour, minute, second int) TimeOfDay {
	return TimeOfDay(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute + time.Duration(second)*time.Second)
}

// ParseTimeOfDay parses "15:04" or "15:04:05".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04:05", "15:04"} {
		t, err := time.Parse(layout, s)
		if err == nil {
			return NewTimeOfDay(t.Hour(), t.Minute(), t.Second()), nil
		}
	}
	return 0, fmt.Errorf("invalid time of day %q", s)
}

func (t TimeOfDay) Valid() bool {
	return t >= 0 && time.Duration(t) < 24*time.Hour
}

func (t TimeOfDay) String() string {
	d := time.Duration(t)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	sec := int(d % time.Minute / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", h, m, sec)
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("time of day must be a string: %w", err)
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Class is a weekly recurring lesson slot with a fixed capacity.
type Class struct {
	ID          int64
	Name        string
	Subject     string
	DayOfWeek   DayOfWeek
	StartTime   TimeOfDay
	EndTime     TimeOfDay
	TeacherName string
	MaxStudents int
	CreatedAt   time.Time
	UpdatedAt   *time.Time

	// Filled by list and detail queries only
	ActiveStudents int
	Registrations  []*ClassRegistration
}

// HasValidTimeRange reports whether the class ends strictly after it starts.
func (c *Class) HasValidTimeRange() bool {
	return c.StartTime.Valid() && c.EndTime.Valid() && c.EndTime > c.StartTime
}

// IsFull reports whether ActiveStudents has reached capacity.
func (c *Class) IsFull() bool {
	return c.ActiveStudents >= c.MaxStudents
}

// Overlaps uses half-open intervals: a class ending at 10:00 does not overlap one starting at 10:00.
func (c *Class) Overlaps(day DayOfWeek, start, end TimeOfDay) bool {
	return c.DayOfWeek == day && c.StartTime < end && start < c.EndTime
}
