package controller

import (
	"github.com/Freeeeeet/lms_backoffice/internal/service"
	"github.com/gofiber/fiber/v2"
)

type StudentHandler struct {
	students      *service.StudentService
	subscriptions *service.SubscriptionService
}

func NewStudentHandler(students *service.StudentService, subscriptions *service.SubscriptionService) *StudentHandler {
	return &StudentHandler{
		students:      students,
		subscriptions: subscriptions,
	}
}

func (h *StudentHandler) List(c *fiber.Ctx) error {
	students, err := h.students.List(c.UserContext())
	if err != nil {
		return err
	}
	return Success(c, "students", mapSlice(students, toStudentResponse))
}

func (h *StudentHandler) Get(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	student, err := h.students.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return Success(c, "student", toStudentResponse(student))
}

func (h *StudentHandler) Create(c *fiber.Ctx) error {
	var req StudentCreateRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	student, err := h.students.Create(c.UserContext(), req.input())
	if err != nil {
		return err
	}
	return SuccessWithCode(c, fiber.StatusCreated, "student created", toStudentResponse(student))
}

func (h *StudentHandler) Update(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	var req StudentUpdateRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	student, err := h.students.Update(c.UserContext(), id, req.input())
	if err != nil {
		return err
	}
	return Success(c, "student updated", toStudentResponse(student))
}

func (h *StudentHandler) Delete(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.students.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return Success(c, "student deleted", nil)
}

func (h *StudentHandler) Subscriptions(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	subs, err := h.subscriptions.ListByStudent(c.UserContext(), id)
	if err != nil {
		return err
	}
	return Success(c, "subscriptions", mapSlice(subs, toSubscriptionResponse))
}
