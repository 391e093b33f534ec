package service

import (
	"time"

	"github.com/Freeeeeet/lms_backoffice/internal/model"
)

// Clock returns the current instant. Its location decides which calendar day "today" is.
type Clock func() time.Time

// SystemClock reads the wall clock in loc.
func SystemClock(loc *time.Location) Clock {
	return func() time.Time {
		return time.Now().In(loc)
	}
}

// FixedClock always returns t.
func FixedClock(t time.Time) Clock {
	return func() time.Time {
		return t
	}
}

// Today is the current calendar date.
func (c Clock) Today() time.Time {
	return model.DateOf(c())
}
