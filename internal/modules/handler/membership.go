package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/memodb-io/notespace/internal/modules/model"
	"github.com/memodb-io/notespace/internal/modules/serializer"
	"github.com/memodb-io/notespace/internal/modules/service"
)

type MembershipHandler struct {
	svc service.MembershipService
}

func NewMembershipHandler(s service.MembershipService) *MembershipHandler {
	return &MembershipHandler{svc: s}
}

// ListMembers godoc
//
//	@Summary		List members
//	@Description	List the memberships of a project in join order
//	@Tags			membership
//	@Produce		json
//	@Param			project_id	path	string	true	"Project ID"	format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=[]model.Membership}
//	@Router			/project/{project_id}/members [get]
func (h *MembershipHandler) ListMembers(c *gin.Context) {
	projectID, ok := uuidParam(c, "project_id")
	if !ok {
		return
	}
	u, ok := mustUser(c)
	if !ok {
		return
	}
	ms, err := h.svc.List(c.Request.Context(), u.ID, projectID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: ms})
}

type AddMemberReq struct {
	UserID uuid.UUID  `json:"user_id" binding:"required" example:"3fa85f64-5717-4562-b3fc-2c963f66afa6"`
	Role   model.Role `json:"role" binding:"required,role" example:"editor"`
}

// AddMember godoc
//
//	@Summary		Add member
//	@Description	Add a user to a project. Owners and admins only. A project keeps at most one owner.
//	@Tags			membership
//	@Accept			json
//	@Produce		json
//	@Param			project_id	path	string					true	"Project ID"	format(uuid)
//	@Param			payload		body	handler.AddMemberReq	true	"Member"
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=model.Membership}
//	@Failure		409	{object}	serializer.Response{}
//	@Router			/project/{project_id}/members [post]
func (h *MembershipHandler) AddMember(c *gin.Context) {
	projectID, ok := uuidParam(c, "project_id")
	if !ok {
		return
	}
	req := AddMemberReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	u, ok := mustUser(c)
	if !ok {
		return
	}
	m, err := h.svc.Add(c.Request.Context(), u.ID, projectID, req.UserID, req.Role)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, serializer.Response{Data: m})
}

type UpdateMemberReq struct {
	Role model.Role `json:"role" binding:"required,role" example:"admin"`
}

// UpdateMember godoc
//
//	@Summary		Change member role
//	@Description	Change a membership role. The only owner cannot be demoted; use transfer_owner instead.
//	@Tags			membership
//	@Accept			json
//	@Produce		json
//	@Param			membership_id	path	string						true	"Membership ID"	format(uuid)
//	@Param			payload			body	handler.UpdateMemberReq	true	"New role"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.Membership}
//	@Failure		409	{object}	serializer.Response{}
//	@Router			/membership/{membership_id} [patch]
func (h *MembershipHandler) UpdateMember(c *gin.Context) {
	membershipID, ok := uuidParam(c, "membership_id")
	if !ok {
		return
	}
	req := UpdateMemberReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	u, ok := mustUser(c)
	if !ok {
		return
	}
	m, err := h.svc.UpdateRole(c.Request.Context(), u.ID, membershipID, req.Role)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: m})
}

// RemoveMember godoc
//
//	@Summary		Remove member
//	@Description	Remove a membership. Members may leave; owners and admins may remove others. The only owner cannot be removed.
//	@Tags			membership
//	@Produce		json
//	@Param			membership_id	path	string	true	"Membership ID"	format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{}
//	@Router			/membership/{membership_id} [delete]
func (h *MembershipHandler) RemoveMember(c *gin.Context) {
	membershipID, ok := uuidParam(c, "membership_id")
	if !ok {
		return
	}
	u, ok := mustUser(c)
	if !ok {
		return
	}
	if err := h.svc.Remove(c.Request.Context(), u.ID, membershipID); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{})
}

type TransferOwnerReq struct {
	UserID uuid.UUID `json:"user_id" binding:"required" example:"3fa85f64-5717-4562-b3fc-2c963f66afa6"`
}

// TransferOwner godoc
//
//	@Summary		Transfer ownership
//	@Description	Make another member the owner; the current owner becomes an admin. Owner only. Personal spaces cannot be transferred.
//	@Tags			membership
//	@Accept			json
//	@Produce		json
//	@Param			project_id	path	string						true	"Project ID"	format(uuid)
//	@Param			payload		body	handler.TransferOwnerReq	true	"New owner"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{}
//	@Router			/project/{project_id}/transfer_owner [post]
func (h *MembershipHandler) TransferOwner(c *gin.Context) {
	projectID, ok := uuidParam(c, "project_id")
	if !ok {
		return
	}
	req := TransferOwnerReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	u, ok := mustUser(c)
	if !ok {
		return
	}
	if err := h.svc.TransferOwnership(c.Request.Context(), u.ID, projectID, req.UserID); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{})
}
