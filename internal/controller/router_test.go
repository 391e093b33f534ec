package controller_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Freeeeeet/lms_backoffice/internal/controller"
	"github.com/Freeeeeet/lms_backoffice/internal/repository/memory"
	"github.com/Freeeeeet/lms_backoffice/internal/service"
	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// Monday, 10 March 2025.
var testNow = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

type envelope struct {
	Code    int               `json:"code"`
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Reason  string            `json:"reason"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	logger := zaptest.NewLogger(t)
	clock := service.FixedClock(testNow)
	store := memory.NewStore(memory.WithClock(clock))

	app := fiber.New(fiber.Config{
		JSONEncoder:  sonic.Marshal,
		JSONDecoder:  sonic.Unmarshal,
		ErrorHandler: controller.ErrorHandler(logger),
	})
	app.Use(controller.RequestContext(logger, time.Second))
	controller.Register(app, service.New(store, clock, logger))
	return app
}

func call(t *testing.T, app *fiber.App, method, path string, body any) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, ok := body.(string)
		if !ok {
			b, err := json.Marshal(body)
			require.NoError(t, err)
			raw = string(b)
		}
		reader = bytes.NewBufferString(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func createStudent(t *testing.T, app *fiber.App, n int) int64 {
	t.Helper()
	status, env := call(t, app, http.MethodPost, "/api/parents", map[string]any{
		"name":  "Parent",
		"phone": fmt.Sprintf("0912345%04d", n),
		"email": fmt.Sprintf("parent%d@example.com", n),
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	parent := decode[controller.ParentResponse](t, env)

	status, env = call(t, app, http.MethodPost, "/api/students", map[string]any{
		"name":         "Student",
		"dateOfBirth":  "2015-04-01",
		"gender":       0,
		"currentGrade": "3",
		"parentId":     parent.ID,
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	return decode[controller.StudentResponse](t, env).ID
}

func createClass(t *testing.T, app *fiber.App, day any, start, end string, capacity int) int64 {
	t.Helper()
	status, env := call(t, app, http.MethodPost, "/api/classes", map[string]any{
		"name":        "Algebra",
		"subject":     "Math",
		"dayOfWeek":   day,
		"startTime":   start,
		"endTime":     end,
		"teacherName": "Ms. Lee",
		"maxStudents": capacity,
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	return decode[controller.ClassResponse](t, env).ID
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)
	status, env := call(t, app, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "success", env.Status)
}

func TestRequestIDHeader(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", resp.Header.Get("X-Request-ID"))
}

func TestEnrollFlow(t *testing.T) {
	app := newTestApp(t)
	first := createStudent(t, app, 1)
	second := createStudent(t, app, 2)
	classID := createClass(t, app, "Monday", "09:00", "10:00", 1)

	status, env := call(t, app, http.MethodPost, fmt.Sprintf("/api/classes/%d/register", classID), map[string]any{"studentId": first})
	require.Equal(t, http.StatusCreated, status, env.Message)
	reg := decode[controller.RegistrationResponse](t, env)
	assert.Equal(t, "ACTIVE", reg.Status)
	assert.Equal(t, first, reg.StudentID)

	status, env = call(t, app, http.MethodPost, fmt.Sprintf("/api/classes/%d/register", classID), map[string]any{"studentId": second})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "ClassFull", env.Reason)
	assert.Equal(t, "class is full", env.Message)

	status, env = call(t, app, http.MethodPost, fmt.Sprintf("/api/classes/%d/register", classID), map[string]any{"studentId": first})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "AlreadyRegistered", env.Reason)

	status, env = call(t, app, http.MethodPost, "/api/classes/999/register", map[string]any{"studentId": first})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Class", env.Reason)

	status, env = call(t, app, http.MethodGet, fmt.Sprintf("/api/classes/%d", classID), nil)
	require.Equal(t, http.StatusOK, status)
	class := decode[controller.ClassResponse](t, env)
	assert.Equal(t, 1, class.ActiveStudents)
	assert.True(t, class.Full)
	require.Len(t, class.Registrations, 1)
	require.NotNil(t, class.Registrations[0].Student)
	assert.Equal(t, first, class.Registrations[0].Student.ID)
}

func TestScheduleConflictOverHTTP(t *testing.T) {
	app := newTestApp(t)
	st := createStudent(t, app, 1)
	a := createClass(t, app, 1, "09:00", "10:00", 5)
	b := createClass(t, app, "MONDAY", "09:30:00", "10:30:00", 5)
	c := createClass(t, app, "monday", "10:00", "11:00", 5)

	status, _ := call(t, app, http.MethodPost, fmt.Sprintf("/api/classes/%d/register", a), map[string]any{"studentId": st})
	require.Equal(t, http.StatusCreated, status)

	status, env := call(t, app, http.MethodPost, fmt.Sprintf("/api/classes/%d/register", b), map[string]any{"studentId": st})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "ScheduleConflict", env.Reason)

	status, _ = call(t, app, http.MethodPost, fmt.Sprintf("/api/classes/%d/register", c), map[string]any{"studentId": st})
	assert.Equal(t, http.StatusCreated, status)

	status, env = call(t, app, http.MethodGet, "/api/classes/by-day?day=Monday", nil)
	require.Equal(t, http.StatusOK, status)
	classes := decode[[]controller.ClassResponse](t, env)
	require.Len(t, classes, 3)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &raw))
	assert.Equal(t, "MONDAY", raw[0]["dayOfWeek"])
	assert.Equal(t, "09:00:00", raw[0]["startTime"])
}

func TestCreateClassValidation(t *testing.T) {
	app := newTestApp(t)

	status, env := call(t, app, http.MethodPost, "/api/classes", map[string]any{
		"name": "Algebra", "subject": "Math", "dayOfWeek": 1,
		"startTime": "10:00", "endTime": "10:00", "teacherName": "Ms. Lee", "maxStudents": 3,
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "InvalidTimeRange", env.Reason)

	status, env = call(t, app, http.MethodPost, "/api/classes", map[string]any{
		"name": "Algebra", "subject": "Math",
		"startTime": "09:00", "endTime": "10:00", "teacherName": "Ms. Lee", "maxStudents": 0,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Validation", env.Reason)
	assert.Contains(t, env.Errors, "dayOfWeek")
	assert.Contains(t, env.Errors, "maxStudents")

	status, env = call(t, app, http.MethodPost, "/api/classes", map[string]any{
		"name": "Algebra", "subject": "Math", "dayOfWeek": "Funday",
		"startTime": "09:00", "endTime": "10:00", "teacherName": "Ms. Lee", "maxStudents": 3,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "InvalidBody", env.Reason)

	status, env = call(t, app, http.MethodPost, "/api/classes", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "InvalidBody", env.Reason)
}

func TestSubscriptionFlow(t *testing.T) {
	app := newTestApp(t)
	st := createStudent(t, app, 1)

	status, env := call(t, app, http.MethodPost, "/api/subscriptions", map[string]any{
		"studentId": st, "packageName": "Starter", "startDate": "2025-03-01", "endDate": "2025-04-01", "totalSessions": 2,
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	sub := decode[controller.SubscriptionResponse](t, env)
	assert.Equal(t, "ACTIVE", sub.Status)
	assert.Equal(t, 2, sub.RemainingSessions)
	assert.Equal(t, "2025-04-01", sub.EndDate)

	use := fmt.Sprintf("/api/subscriptions/%d/use", sub.ID)

	status, env = call(t, app, http.MethodPatch, use, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, decode[controller.SubscriptionResponse](t, env).UsedSessions)

	status, env = call(t, app, http.MethodPatch, use, nil)
	require.Equal(t, http.StatusOK, status)
	got := decode[controller.SubscriptionResponse](t, env)
	assert.Equal(t, 2, got.UsedSessions)
	assert.Equal(t, "COMPLETED", got.Status)

	status, env = call(t, app, http.MethodPatch, use, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "SubscriptionSessionsExhausted", env.Reason)

	status, env = call(t, app, http.MethodGet, fmt.Sprintf("/api/students/%d/subscriptions", st), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]controller.SubscriptionResponse](t, env), 1)
}

func TestExpiredSubscriptionOverHTTP(t *testing.T) {
	app := newTestApp(t)
	st := createStudent(t, app, 1)

	status, env := call(t, app, http.MethodPost, "/api/subscriptions", map[string]any{
		"studentId": st, "packageName": "Old", "startDate": "2025-02-01", "endDate": "2025-03-09", "totalSessions": 4,
	})
	require.Equal(t, http.StatusCreated, status)
	sub := decode[controller.SubscriptionResponse](t, env)

	status, env = call(t, app, http.MethodPatch, fmt.Sprintf("/api/subscriptions/%d/use", sub.ID), nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "SubscriptionExpired", env.Reason)

	status, env = call(t, app, http.MethodGet, fmt.Sprintf("/api/subscriptions/%d", sub.ID), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "EXPIRED", decode[controller.SubscriptionResponse](t, env).Status)
}

func TestSubscriptionValidation(t *testing.T) {
	app := newTestApp(t)
	st := createStudent(t, app, 1)

	status, env := call(t, app, http.MethodPost, "/api/subscriptions", map[string]any{
		"studentId": st, "packageName": "Bad", "startDate": "2025-03-10", "endDate": "2025-03-09", "totalSessions": 4,
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "InvalidDateRange", env.Reason)

	status, env = call(t, app, http.MethodPost, "/api/subscriptions", map[string]any{
		"studentId": st, "packageName": "Bad", "startDate": "10/03/2025", "endDate": "2025-03-09", "totalSessions": 4,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "date", env.Errors["startDate"])

	status, env = call(t, app, http.MethodPatch, "/api/subscriptions/abc/use", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "InvalidID", env.Reason)

	status, env = call(t, app, http.MethodPatch, "/api/subscriptions/777/use", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Subscription", env.Reason)
}

func TestParentValidationAndDuplicates(t *testing.T) {
	app := newTestApp(t)
	body := map[string]any{"name": "Anna", "phone": "09123456789", "email": "anna@example.com"}

	status, _ := call(t, app, http.MethodPost, "/api/parents", body)
	require.Equal(t, http.StatusCreated, status)

	status, env := call(t, app, http.MethodPost, "/api/parents", body)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "DuplicateEmail", env.Reason)

	status, env = call(t, app, http.MethodPost, "/api/parents", map[string]any{"name": "Bob", "phone": "12-34", "email": "nope"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "phone", env.Errors["phone"])
	assert.Equal(t, "email", env.Errors["email"])
}

func TestStudentDetail(t *testing.T) {
	app := newTestApp(t)
	st := createStudent(t, app, 1)
	classID := createClass(t, app, 3, "15:00", "16:00", 4)
	status, _ := call(t, app, http.MethodPost, fmt.Sprintf("/api/classes/%d/register", classID), map[string]any{"studentId": st})
	require.Equal(t, http.StatusCreated, status)

	status, env := call(t, app, http.MethodGet, fmt.Sprintf("/api/students/%d", st), nil)
	require.Equal(t, http.StatusOK, status)
	student := decode[controller.StudentResponse](t, env)
	assert.Equal(t, "2015-04-01", student.DateOfBirth)
	assert.Equal(t, "male", student.Gender)
	require.NotNil(t, student.Parent)
	require.Len(t, student.Registrations, 1)
	require.NotNil(t, student.Registrations[0].Class)
	assert.Equal(t, classID, student.Registrations[0].Class.ID)

	status, env = call(t, app, http.MethodDelete, fmt.Sprintf("/api/students/%d", st), nil)
	require.Equal(t, http.StatusOK, status)

	status, env = call(t, app, http.MethodGet, fmt.Sprintf("/api/students/%d", st), nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Student", env.Reason)
}
