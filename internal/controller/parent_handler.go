package controller

import (
	"github.com/Freeeeeet/lms_backoffice/internal/service"
	"github.com/gofiber/fiber/v2"
)

type ParentHandler struct {
	parents *service.ParentService
}

func NewParentHandler(parents *service.ParentService) *ParentHandler {
	return &ParentHandler{parents: parents}
}

func (h *ParentHandler) List(c *fiber.Ctx) error {
	parents, err := h.parents.List(c.UserContext())
	if err != nil {
		return err
	}
	return Success(c, "parents", mapSlice(parents, toParentResponse))
}

func (h *ParentHandler) Get(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	parent, err := h.parents.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return Success(c, "parent", toParentResponse(parent))
}

func (h *ParentHandler) Create(c *fiber.Ctx) error {
	var req ParentRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	parent, err := h.parents.Create(c.UserContext(), req.input())
	if err != nil {
		return err
	}
	return SuccessWithCode(c, fiber.StatusCreated, "parent created", toParentResponse(parent))
}

func (h *ParentHandler) Update(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	var req ParentRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	parent, err := h.parents.Update(c.UserContext(), id, req.input())
	if err != nil {
		return err
	}
	return Success(c, "parent updated", toParentResponse(parent))
}

func (h *ParentHandler) Delete(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.parents.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return Success(c, "parent deleted", nil)
}
