package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/memodb-io/notespace/internal/modules/model"
	"github.com/memodb-io/notespace/internal/modules/serializer"
	"github.com/memodb-io/notespace/internal/modules/service"
)

type ProjectHandler struct {
	svc service.ProjectService
}

func NewProjectHandler(s service.ProjectService) *ProjectHandler {
	return &ProjectHandler{svc: s}
}

type CreateProjectReq struct {
	Title       string              `json:"title" binding:"required,max=200" example:"Thesis"`
	Description *string             `json:"description" example:"Reading notes and drafts"`
	Status      model.ProjectStatus `json:"status" binding:"omitempty,project_status" example:"planning"`
}

// CreateProject godoc
//
//	@Summary		Create project
//	@Description	Create a project; the caller becomes its owner
//	@Tags			project
//	@Accept			json
//	@Produce		json
//	@Param			payload	body	handler.CreateProjectReq	true	"Project"
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=model.Project}
//	@Router			/project [post]
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	req := CreateProjectReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	u, ok := mustUser(c)
	if !ok {
		return
	}
	p, err := h.svc.Create(c.Request.Context(), u.ID, service.CreateProjectInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, serializer.Response{Data: p})
}

type ListProjectsReq struct {
	Limit  int    `form:"limit" json:"limit" binding:"omitempty,min=1,max=200" example:"20"`
	Cursor string `form:"cursor" json:"cursor" example:"cHJvdGVjdGVkIHZlcnNpb24gdG8gYmUgZXhjbHVkZWQgaW4gcGFyc2luZyB0aGUgY3Vyc29y"`
}

// ListProjects godoc
//
//	@Summary		List projects
//	@Description	List the projects the caller is a member of, newest first
//	@Tags			project
//	@Produce		json
//	@Param			limit	query	integer	false	"Page size, max 200, default 20"
//	@Param			cursor	query	string	false	"Cursor from the previous page"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=service.ListProjectsOutput}
//	@Router			/project [get]
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	req := ListProjectsReq{}
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	u, ok := mustUser(c)
	if !ok {
		return
	}
	out, err := h.svc.List(c.Request.Context(), u.ID, service.ListProjectsInput{Limit: req.Limit, Cursor: req.Cursor})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: out})
}

// GetProject godoc
//
//	@Summary		Get project
//	@Tags			project
//	@Produce		json
//	@Param			project_id	path	string	true	"Project ID"	format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.Project}
//	@Router			/project/{project_id} [get]
func (h *ProjectHandler) GetProject(c *gin.Context) {
	projectID, ok := uuidParam(c, "project_id")
	if !ok {
		return
	}
	u, ok := mustUser(c)
	if !ok {
		return
	}
	p, err := h.svc.Get(c.Request.Context(), u.ID, projectID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: p})
}

type GetOwnerOutput struct {
	Owner *model.UserRef `json:"owner"`
}

// GetProjectOwner godoc
//
//	@Summary		Get project owner
//	@Description	Return the project owner, or null when the project has none
//	@Tags			project
//	@Produce		json
//	@Param			project_id	path	string	true	"Project ID"	format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=handler.GetOwnerOutput}
//	@Router			/project/{project_id}/owner [get]
func (h *ProjectHandler) GetProjectOwner(c *gin.Context) {
	projectID, ok := uuidParam(c, "project_id")
	if !ok {
		return
	}
	u, ok := mustUser(c)
	if !ok {
		return
	}
	// membership check
	if _, err := h.svc.Get(c.Request.Context(), u.ID, projectID); err != nil {
		respondErr(c, err)
		return
	}
	owner, err := h.svc.Owner(c.Request.Context(), projectID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: GetOwnerOutput{Owner: owner.Ref()}})
}

type UpdateProjectReq struct {
	Title       *string              `json:"title" binding:"omitempty,max=200" example:"Thesis (final)"`
	Description *string              `json:"description" example:"Drafts only"`
	Status      *model.ProjectStatus `json:"status" binding:"omitempty,project_status" example:"active"`
}

// UpdateProject godoc
//
//	@Summary		Update project
//	@Description	Update title, description or status. Owners and admins only.
//	@Tags			project
//	@Accept			json
//	@Produce		json
//	@Param			project_id	path	string						true	"Project ID"	format(uuid)
//	@Param			payload		body	handler.UpdateProjectReq	true	"Fields to change"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.Project}
//	@Router			/project/{project_id} [patch]
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	projectID, ok := uuidParam(c, "project_id")
	if !ok {
		return
	}
	req := UpdateProjectReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	u, ok := mustUser(c)
	if !ok {
		return
	}
	p, err := h.svc.Update(c.Request.Context(), u.ID, projectID, service.UpdateProjectInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: p})
}

// DeleteProject godoc
//
//	@Summary		Delete project
//	@Description	Delete a project with its memberships, notes and assets. Owner only. Personal spaces cannot be deleted.
//	@Tags			project
//	@Produce		json
//	@Param			project_id	path	string	true	"Project ID"	format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{}
//	@Router			/project/{project_id} [delete]
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	projectID, ok := uuidParam(c, "project_id")
	if !ok {
		return
	}
	u, ok := mustUser(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), u.ID, projectID); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{})
}
