package controller

import (
	"github.com/Freeeeeet/lms_backoffice/internal/service"
	"github.com/gofiber/fiber/v2"
)

type SubscriptionHandler struct {
	subscriptions *service.SubscriptionService
}

func NewSubscriptionHandler(subscriptions *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptions: subscriptions}
}

func (h *SubscriptionHandler) List(c *fiber.Ctx) error {
	subs, err := h.subscriptions.List(c.UserContext())
	if err != nil {
		return err
	}
	return Success(c, "subscriptions", mapSlice(subs, toSubscriptionResponse))
}

func (h *SubscriptionHandler) Get(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	sub, err := h.subscriptions.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return Success(c, "subscription", toSubscriptionResponse(sub))
}

func (h *SubscriptionHandler) Create(c *fiber.Ctx) error {
	var req SubscriptionRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	sub, err := h.subscriptions.Create(c.UserContext(), req.input())
	if err != nil {
		return err
	}
	return SuccessWithCode(c, fiber.StatusCreated, "subscription created", toSubscriptionResponse(sub))
}

func (h *SubscriptionHandler) Use(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	sub, err := h.subscriptions.UseOneSession(c.UserContext(), id)
	if err != nil {
		return err
	}
	return Success(c, "session used", toSubscriptionResponse(sub))
}

func (h *SubscriptionHandler) Delete(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.subscriptions.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return Success(c, "subscription deleted", nil)
}
