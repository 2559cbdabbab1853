package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/memodb-io/notespace/internal/modules/serializer"
	"github.com/memodb-io/notespace/internal/modules/service"
)

type NoteHandler struct {
	svc service.NoteService
}

func NewNoteHandler(s service.NoteService) *NoteHandler {
	return &NoteHandler{svc: s}
}

type CreateNoteReq struct {
	Title     string     `json:"title" binding:"required,max=255" example:"Reading list"`
	Content   *string    `json:"content" example:"- SICP\n- TAOCP"`
	ProjectID *uuid.UUID `json:"project_id" example:"3fa85f64-5717-4562-b3fc-2c963f66afa6"`
	IsPublic  bool       `json:"is_public" example:"false"`
}

// CreateNote godoc
//
//	@Summary		Create note
//	@Description	Create a note, optionally inside a project the caller can write to
//	@Tags			note
//	@Accept			json
//	@Produce		json
//	@Param			payload	body	handler.CreateNoteReq	true	"Note"
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=model.Note}
//	@Router			/note [post]
func (h *NoteHandler) CreateNote(c *gin.Context) {
	req := CreateNoteReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	u, ok := mustUser(c)
	if !ok {
		return
	}
	n, err := h.svc.Create(c.Request.Context(), u.ID, service.CreateNoteInput{
		Title:     req.Title,
		Content:   req.Content,
		ProjectID: req.ProjectID,
		IsPublic:  req.IsPublic,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, serializer.Response{Data: n})
}

// ListVisibleNotes godoc
//
//	@Summary		List visible notes
//	@Description	Id and title of every note the caller can see, newest first. Served from cache for up to 15 minutes.
//	@Tags			note
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=[]model.NoteSummary}
//	@Router			/note [get]
func (h *NoteHandler) ListVisibleNotes(c *gin.Context) {
	u, ok := mustUser(c)
	if !ok {
		return
	}
	notes, err := h.svc.ListVisible(c.Request.Context(), u.ID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: notes})
}

type SearchNotesReq struct {
	Query string `form:"q" json:"q" binding:"required,max=200" example:"graph"`
	Limit int    `form:"limit" json:"limit" binding:"omitempty,min=1,max=100" example:"20"`
}

// SearchNotes godoc
//
//	@Summary		Search notes
//	@Description	Case-insensitive match on title and content within the caller's visible notes
//	@Tags			note
//	@Produce		json
//	@Param			q		query	string	true	"Search text"
//	@Param			limit	query	integer	false	"Max results, default 20"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=[]model.NoteSummary}
//	@Router			/note/search [get]
func (h *NoteHandler) SearchNotes(c *gin.Context) {
	req := SearchNotesReq{}
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	u, ok := mustUser(c)
	if !ok {
		return
	}
	notes, err := h.svc.Search(c.Request.Context(), u.ID, req.Query, req.Limit)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: notes})
}

// GetNote godoc
//
//	@Summary		Get note
//	@Tags			note
//	@Produce		json
//	@Param			note_id	path	string	true	"Note ID"	format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.Note}
//	@Failure		403	{object}	serializer.Response{}
//	@Failure		404	{object}	serializer.Response{}
//	@Router			/note/{note_id} [get]
func (h *NoteHandler) GetNote(c *gin.Context) {
	noteID, ok := uuidParam(c, "note_id")
	if !ok {
		return
	}
	u, ok := mustUser(c)
	if !ok {
		return
	}
	n, err := h.svc.Get(c.Request.Context(), u.ID, noteID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: n})
}

type UpdateNoteReq struct {
	Title    *string `json:"title" binding:"omitempty,max=255" example:"Reading list (2026)"`
	Content  *string `json:"content" example:"- SICP"`
	IsPublic *bool   `json:"is_public" example:"true"`
}

// UpdateNote godoc
//
//	@Summary		Update note
//	@Description	Update a note. Only the author may edit.
//	@Tags			note
//	@Accept			json
//	@Produce		json
//	@Param			note_id	path	string					true	"Note ID"	format(uuid)
//	@Param			payload	body	handler.UpdateNoteReq	true	"Fields to change"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.Note}
//	@Router			/note/{note_id} [patch]
func (h *NoteHandler) UpdateNote(c *gin.Context) {
	noteID, ok := uuidParam(c, "note_id")
	if !ok {
		return
	}
	req := UpdateNoteReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	u, ok := mustUser(c)
	if !ok {
		return
	}
	n, err := h.svc.Update(c.Request.Context(), u.ID, noteID, service.UpdateNoteInput{
		Title:    req.Title,
		Content:  req.Content,
		IsPublic: req.IsPublic,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: n})
}

// DeleteNote godoc
//
//	@Summary		Delete note
//	@Description	Delete a note. Allowed for the author and for owners and admins of its project.
//	@Tags			note
//	@Produce		json
//	@Param			note_id	path	string	true	"Note ID"	format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{}
//	@Router			/note/{note_id} [delete]
func (h *NoteHandler) DeleteNote(c *gin.Context) {
	noteID, ok := uuidParam(c, "note_id")
	if !ok {
		return
	}
	u, ok := mustUser(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), u.ID, noteID); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{})
}

// GetPublicNote godoc
//
//	@Summary		Get public note
//	@Description	Read a note shared by its public id. No authentication.
//	@Tags			note
//	@Produce		json
//	@Param			public_id	path	string	true	"Public ID"	format(uuid)
//	@Success		200	{object}	serializer.Response{data=model.Note}
//	@Router			/public/note/{public_id} [get]
func (h *NoteHandler) GetPublicNote(c *gin.Context) {
	publicID, ok := uuidParam(c, "public_id")
	if !ok {
		return
	}
	n, err := h.svc.GetPublic(c.Request.Context(), publicID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: n})
}
