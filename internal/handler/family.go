package handler

import (
	"github.com/deppfellow/budgetbud/internal/model"
	"github.com/deppfellow/budgetbud/internal/server"
	"github.com/deppfellow/budgetbud/internal/service"
	"github.com/labstack/echo/v4"
)

type FamilyHandler struct {
	Handler
	familyService     *service.FamilyService
	invitationService *service.InvitationService
}

func NewFamilyHandler(s *server.Server, familyService *service.FamilyService, invitationService *service.InvitationService) *FamilyHandler {
	return &FamilyHandler{
		Handler:           NewHandler(s),
		familyService:     familyService,
		invitationService: invitationService,
	}
}

func (h *FamilyHandler) List(c echo.Context, _ *model.EmptyPayload) ([]model.Family, error) {
	return h.familyService.List(c.Request().Context(), userID(c))
}

func (h *FamilyHandler) Create(c echo.Context, payload *model.CreateFamilyPayload) (*model.Family, error) {
	return h.familyService.Create(c.Request().Context(), userID(c), payload)
}

func (h *FamilyHandler) Get(c echo.Context, payload *model.IDPayload) (*model.Family, error) {
	return h.familyService.Get(c.Request().Context(), userID(c), payload.ID)
}

func (h *FamilyHandler) Update(c echo.Context, payload *model.UpdateFamilyPayload) (*model.Family, error) {
	return h.familyService.Update(c.Request().Context(), userID(c), payload)
}

func (h *FamilyHandler) Delete(c echo.Context, payload *model.IDPayload) error {
	return h.familyService.Delete(c.Request().Context(), userID(c), payload.ID)
}

func (h *FamilyHandler) Leave(c echo.Context, payload *model.IDPayload) error {
	return h.familyService.Leave(c.Request().Context(), userID(c), payload.ID)
}

func (h *FamilyHandler) RemoveMember(c echo.Context, payload *model.FamilyMemberPayload) error {
	return h.familyService.RemoveMember(c.Request().Context(), userID(c), payload)
}

func (h *FamilyHandler) Invite(c echo.Context, payload *model.CreateInvitationPayload) (*model.Invitation, error) {
	return h.invitationService.Create(c.Request().Context(), userID(c), payload)
}

// Invitations lists the pending invitations of a family.
func (h *FamilyHandler) Invitations(c echo.Context, payload *model.IDPayload) ([]model.Invitation, error) {
	return h.invitationService.List(c.Request().Context(), userID(c), payload.ID)
}

func (h *FamilyHandler) DeleteInvitation(c echo.Context, payload *model.IDPayload) error {
	return h.invitationService.Delete(c.Request().Context(), userID(c), payload.ID)
}

// AcceptInvitation adds the caller to the inviting family.
func (h *FamilyHandler) AcceptInvitation(c echo.Context, payload *model.AcceptInvitationPayload) (*model.Family, error) {
	return h.invitationService.Accept(c.Request().Context(), userID(c), payload)
}
