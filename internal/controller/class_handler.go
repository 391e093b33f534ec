package controller

import (
	"github.com/Freeeeeet/lms_backoffice/internal/model"
	"github.com/Freeeeeet/lms_backoffice/internal/service"
	"github.com/gofiber/fiber/v2"
)

type ClassHandler struct {
	classes *service.ClassService
}

func NewClassHandler(classes *service.ClassService) *ClassHandler {
	return &ClassHandler{classes: classes}
}

func (h *ClassHandler) List(c *fiber.Ctx) error {
	classes, err := h.classes.List(c.UserContext())
	if err != nil {
		return err
	}
	return Success(c, "classes", mapSlice(classes, toClassResponse))
}

// ListByDay принимает ?day= как номер (0 = воскресенье) или английское название дня
func (h *ClassHandler) ListByDay(c *fiber.Ctx) error {
	day, err := model.ParseDayOfWeek(c.Query("day"))
	if err != nil {
		return service.Validation("InvalidDay", err.Error())
	}

	classes, err := h.classes.ListByDay(c.UserContext(), day)
	if err != nil {
		return err
	}
	return Success(c, "classes", mapSlice(classes, toClassResponse))
}

func (h *ClassHandler) Get(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	class, err := h.classes.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return Success(c, "class", toClassResponse(class))
}

func (h *ClassHandler) Create(c *fiber.Ctx) error {
	var req ClassRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	class, err := h.classes.Create(c.UserContext(), req.input())
	if err != nil {
		return err
	}
	return SuccessWithCode(c, fiber.StatusCreated, "class created", toClassResponse(class))
}

func (h *ClassHandler) Update(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	var req ClassRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	class, err := h.classes.Update(c.UserContext(), id, req.input())
	if err != nil {
		return err
	}
	return Success(c, "class updated", toClassResponse(class))
}

func (h *ClassHandler) Delete(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.classes.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return Success(c, "class deleted", nil)
}

func (h *ClassHandler) Register(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	var req RegisterRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	registration, err := h.classes.Enroll(c.UserContext(), id, req.StudentID)
	if err != nil {
		return err
	}
	return SuccessWithCode(c, fiber.StatusCreated, "student registered", toRegistrationResponse(registration))
}
