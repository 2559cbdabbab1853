package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/memodb-io/notespace/internal/modules/model"
	"github.com/memodb-io/notespace/internal/modules/serializer"
	"github.com/memodb-io/notespace/internal/modules/service"
)

type AssetHandler struct {
	svc service.AssetService
}

func NewAssetHandler(s service.AssetService) *AssetHandler {
	return &AssetHandler{svc: s}
}

type UploadAssetReq struct {
	Name        string          `form:"name" json:"name" binding:"max=255" example:"diagram.png"`
	AssetType   model.AssetType `form:"asset_type" json:"asset_type" binding:"omitempty,asset_type" example:"image"`
	Description string          `form:"description" json:"description" example:"architecture sketch"`
}

// UploadAsset godoc
//
//	@Summary		Upload asset
//	@Description	Upload a file to a project. Editors and above. The type is detected from content when omitted.
//	@Tags			asset
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			project_id	path		string	true	"Project ID"	format(uuid)
//	@Param			file		formData	file	true	"File"
//	@Param			name		formData	string	false	"Display name, defaults to the file name"
//	@Param			asset_type	formData	string	false	"file, image, code or doc"
//	@Param			description	formData	string	false	"Description"
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=model.Asset}
//	@Router			/project/{project_id}/asset [post]
func (h *AssetHandler) UploadAsset(c *gin.Context) {
	projectID, ok := uuidParam(c, "project_id")
	if !ok {
		return
	}
	req := UploadAssetReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("file is required", err))
		return
	}
	u, ok := mustUser(c)
	if !ok {
		return
	}
	a, err := h.svc.Upload(c.Request.Context(), u.ID, projectID, service.UploadAssetInput{
		File:        fh,
		Name:        req.Name,
		AssetType:   req.AssetType,
		Description: req.Description,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, serializer.Response{Data: a})
}

type ListAssetsReq struct {
	Limit  int    `form:"limit" json:"limit" binding:"omitempty,min=1,max=200" example:"20"`
	Cursor string `form:"cursor" json:"cursor"`
}

// ListAssets godoc
//
//	@Summary		List assets
//	@Description	List a project's assets, newest first
//	@Tags			asset
//	@Produce		json
//	@Param			project_id	path	string	true	"Project ID"	format(uuid)
//	@Param			limit		query	integer	false	"Page size, max 200"
//	@Param			cursor		query	string	false	"Cursor from the previous page"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=service.ListAssetsOutput}
//	@Router			/project/{project_id}/asset [get]
func (h *AssetHandler) ListAssets(c *gin.Context) {
	projectID, ok := uuidParam(c, "project_id")
	if !ok {
		return
	}
	req := ListAssetsReq{}
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	u, ok := mustUser(c)
	if !ok {
		return
	}
	out, err := h.svc.List(c.Request.Context(), u.ID, projectID, service.ListAssetsInput{Limit: req.Limit, Cursor: req.Cursor})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: out})
}

// GetAsset godoc
//
//	@Summary		Get asset
//	@Description	Asset metadata with a presigned download URL
//	@Tags			asset
//	@Produce		json
//	@Param			project_id	path	string	true	"Project ID"	format(uuid)
//	@Param			asset_id	path	string	true	"Asset ID"		format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=service.AssetWithURL}
//	@Router			/project/{project_id}/asset/{asset_id} [get]
func (h *AssetHandler) GetAsset(c *gin.Context) {
	projectID, ok := uuidParam(c, "project_id")
	if !ok {
		return
	}
	assetID, ok := uuidParam(c, "asset_id")
	if !ok {
		return
	}
	u, ok := mustUser(c)
	if !ok {
		return
	}
	a, err := h.svc.Get(c.Request.Context(), u.ID, projectID, assetID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: a})
}

// DeleteAsset godoc
//
//	@Summary		Delete asset
//	@Tags			asset
//	@Produce		json
//	@Param			project_id	path	string	true	"Project ID"	format(uuid)
//	@Param			asset_id	path	string	true	"Asset ID"		format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{}
//	@Router			/project/{project_id}/asset/{asset_id} [delete]
func (h *AssetHandler) DeleteAsset(c *gin.Context) {
	projectID, ok := uuidParam(c, "project_id")
	if !ok {
		return
	}
	assetID, ok := uuidParam(c, "asset_id")
	if !ok {
		return
	}
	u, ok := mustUser(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), u.ID, projectID, assetID); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{})
}
