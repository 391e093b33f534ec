package controller

import (
	"time"

	"github.com/Freeeeeet/lms_backoffice/internal/model"
	"github.com/Freeeeeet/lms_backoffice/internal/service"
)

type ParentRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Phone string `json:"phone" validate:"required,phone"`
	Email string `json:"email" validate:"required,email,max=100"`
}

func (r ParentRequest) input() service.ParentInput {
	return service.ParentInput{Name: r.Name, Phone: r.Phone, Email: r.Email}
}

type StudentUpdateRequest struct {
	Name         string `json:"name" validate:"required,max=100"`
	DateOfBirth  string `json:"dateOfBirth" validate:"required,date"`
	Gender       *int   `json:"gender" validate:"required,min=0,max=2"`
	CurrentGrade string `json:"currentGrade" validate:"max=20"`
}

type StudentCreateRequest struct {
	StudentUpdateRequest
	ParentID int64 `json:"parentId" validate:"required,gt=0"`
}

// input assumes validation passed.
func (r StudentUpdateRequest) input() service.StudentInput {
	dob, _ := model.ParseDate(r.DateOfBirth)
	gender, _ := model.ParseGender(*r.Gender)
	return service.StudentInput{
		Name:         r.Name,
		DateOfBirth:  dob,
		Gender:       gender,
		CurrentGrade: r.CurrentGrade,
	}
}

func (r StudentCreateRequest) input() service.StudentInput {
	in := r.StudentUpdateRequest.input()
	in.ParentID = r.ParentID
	return in
}

type ClassRequest struct {
	Name        string           `json:"name" validate:"required,max=100"`
	Subject     string           `json:"subject" validate:"required,max=100"`
	DayOfWeek   *model.DayOfWeek `json:"dayOfWeek" validate:"required"`
	StartTime   *model.TimeOfDay `json:"startTime" validate:"required"`
	EndTime     *model.TimeOfDay `json:"endTime" validate:"required"`
	TeacherName string           `json:"teacherName" validate:"required,max=100"`
	MaxStudents int              `json:"maxStudents" validate:"required,gt=0"`
}

func (r ClassRequest) input() service.ClassInput {
	return service.ClassInput{
		Name:        r.Name,
		Subject:     r.Subject,
		DayOfWeek:   *r.DayOfWeek,
		StartTime:   *r.StartTime,
		EndTime:     *r.EndTime,
		TeacherName: r.TeacherName,
		MaxStudents: r.MaxStudents,
	}
}

type RegisterRequest struct {
	StudentID int64 `json:"studentId" validate:"required,gt=0"`
}

type SubscriptionRequest struct {
	StudentID     int64  `json:"studentId" validate:"required,gt=0"`
	PackageName   string `json:"packageName" validate:"required,max=100"`
	StartDate     string `json:"startDate" validate:"required,date"`
	EndDate       string `json:"endDate" validate:"required,date"`
	TotalSessions int    `json:"totalSessions" validate:"required,gt=0"`
}

func (r SubscriptionRequest) input() service.SubscriptionInput {
	start, _ := model.ParseDate(r.StartDate)
	end, _ := model.ParseDate(r.EndDate)
	return service.SubscriptionInput{
		StudentID:     r.StudentID,
		PackageName:   r.PackageName,
		StartDate:     start,
		EndDate:       end,
		TotalSessions: r.TotalSessions,
	}
}

type ParentResponse struct {
	ID        int64             `json:"id"`
	Name      string            `json:"name"`
	Phone     string            `json:"phone"`
	Email     string            `json:"email"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt *time.Time        `json:"updatedAt,omitempty"`
	Students  []StudentResponse `json:"students,omitempty"`
}

func toParentResponse(p *model.Parent) ParentResponse {
	resp := ParentResponse{
		ID:        p.ID,
		Name:      p.Name,
		Phone:     p.Phone,
		Email:     p.Email,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if p.Students != nil {
		resp.Students = mapSlice(p.Students, toStudentResponse)
	}
	return resp
}

type StudentResponse struct {
	ID            int64                  `json:"id"`
	Name          string                 `json:"name"`
	DateOfBirth   string                 `json:"dateOfBirth"`
	Gender        string                 `json:"gender"`
	CurrentGrade  string                 `json:"currentGrade"`
	ParentID      int64                  `json:"parentId"`
	CreatedAt     time.Time              `json:"createdAt"`
	UpdatedAt     *time.Time             `json:"updatedAt,omitempty"`
	Parent        *ParentResponse        `json:"parent,omitempty"`
	Registrations []RegistrationResponse `json:"registrations,omitempty"`
}

func toStudentResponse(s *model.Student) StudentResponse {
	resp := StudentResponse{
		ID:           s.ID,
		Name:         s.Name,
		DateOfBirth:  s.DateOfBirth.Format(model.DateLayout),
		Gender:       s.Gender.String(),
		CurrentGrade: s.CurrentGrade,
		ParentID:     s.ParentID,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
	if s.Parent != nil {
		parent := toParentResponse(s.Parent)
		resp.Parent = &parent
	}
	if s.Registrations != nil {
		resp.Registrations = mapSlice(s.Registrations, toRegistrationResponse)
	}
	return resp
}

type ClassResponse struct {
	ID             int64                  `json:"id"`
	Name           string                 `json:"name"`
	Subject        string                 `json:"subject"`
	DayOfWeek      model.DayOfWeek        `json:"dayOfWeek"`
	StartTime      model.TimeOfDay        `json:"startTime"`
	EndTime        model.TimeOfDay        `json:"endTime"`
	TeacherName    string                 `json:"teacherName"`
	MaxStudents    int                    `json:"maxStudents"`
	ActiveStudents int                    `json:"activeStudents"`
	Full           bool                   `json:"full"`
	CreatedAt      time.Time              `json:"createdAt"`
	UpdatedAt      *time.Time             `json:"updatedAt,omitempty"`
	Registrations  []RegistrationResponse `json:"registrations,omitempty"`
}

func toClassResponse(c *model.Class) ClassResponse {
	resp := ClassResponse{
		ID:             c.ID,
		Name:           c.Name,
		Subject:        c.Subject,
		DayOfWeek:      c.DayOfWeek,
		StartTime:      c.StartTime,
		EndTime:        c.EndTime,
		TeacherName:    c.TeacherName,
		MaxStudents:    c.MaxStudents,
		ActiveStudents: c.ActiveStudents,
		Full:           c.IsFull(),
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
	if c.Registrations != nil {
		resp.Registrations = mapSlice(c.Registrations, toRegistrationResponse)
	}
	return resp
}

type RegistrationResponse struct {
	ID           int64            `json:"id"`
	ClassID      int64            `json:"classId"`
	StudentID    int64            `json:"studentId"`
	Status       string           `json:"status"`
	RegisteredAt time.Time        `json:"registeredAt"`
	Class        *ClassResponse   `json:"class,omitempty"`
	Student      *StudentResponse `json:"student,omitempty"`
}

func toRegistrationResponse(r *model.ClassRegistration) RegistrationResponse {
	resp := RegistrationResponse{
		ID:           r.ID,
		ClassID:      r.ClassID,
		StudentID:    r.StudentID,
		Status:       r.Status.String(),
		RegisteredAt: r.RegisteredAt,
	}
	if r.Class != nil {
		class := toClassResponse(r.Class)
		resp.Class = &class
	}
	if r.Student != nil {
		student := toStudentResponse(r.Student)
		resp.Student = &student
	}
	return resp
}

type SubscriptionResponse struct {
	ID                int64      `json:"id"`
	StudentID         int64      `json:"studentId"`
	PackageName       string     `json:"packageName"`
	StartDate         string     `json:"startDate"`
	EndDate           string     `json:"endDate"`
	TotalSessions     int        `json:"totalSessions"`
	UsedSessions      int        `json:"usedSessions"`
	RemainingSessions int        `json:"remainingSessions"`
	Status            string     `json:"status"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         *time.Time `json:"updatedAt,omitempty"`
}

func toSubscriptionResponse(s *model.Subscription) SubscriptionResponse {
	return SubscriptionResponse{
		ID:                s.ID,
		StudentID:         s.StudentID,
		PackageName:       s.PackageName,
		StartDate:         s.StartDate.Format(model.DateLayout),
		EndDate:           s.EndDate.Format(model.DateLayout),
		TotalSessions:     s.TotalSessions,
		UsedSessions:      s.UsedSessions,
		RemainingSessions: s.RemainingSessions(),
		Status:            s.Status.String(),
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}

func mapSlice[T, R any](items []T, fn func(T) R) []R {
	out := make([]R, 0, len(items))
	for _, item := range items {
		out = append(out, fn(item))
	}
	return out
}
