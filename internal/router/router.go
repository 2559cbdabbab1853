package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/memodb-io/notespace/docs"
	"github.com/memodb-io/notespace/internal/config"
	"github.com/memodb-io/notespace/internal/middleware"
	"github.com/memodb-io/notespace/internal/modules/handler"
	"github.com/memodb-io/notespace/internal/modules/serializer"
	"github.com/memodb-io/notespace/internal/telemetry"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	Config            *config.Config
	Log               *zap.Logger
	Accounts          middleware.Authenticator
	AccountHandler    *handler.AccountHandler
	ProjectHandler    *handler.ProjectHandler
	MembershipHandler *handler.MembershipHandler
	NoteHandler       *handler.NoteHandler
	AssetHandler      *handler.AssetHandler
}

func NewRouter(d RouterDeps) (*gin.Engine, error) {
	serializer.SetLogger(d.Log)
	if err := handler.RegisterValidators(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery())

	if d.Config.Telemetry.Enabled && d.Config.Telemetry.OtlpEndpoint != "" {
		r.Use(telemetry.GinMiddleware(d.Config.App.Name))
		r.Use(telemetry.TraceIDMiddleware())
	}

	r.Use(middleware.ZapLogger(d.Log))

	// health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, serializer.Response{Msg: "ok"}) })

	// swagger
	r.GET("/swagger", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		v1.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, serializer.Response{Msg: "pong"}) })

		auth := v1.Group("/auth")
		{
			auth.GET("/check_username", d.AccountHandler.CheckUsername)
			auth.GET("/captcha", d.AccountHandler.Captcha)
			auth.POST("/email_code", d.AccountHandler.SendEmailCode)
			auth.POST("/register", d.AccountHandler.Register)
			auth.POST("/login", d.AccountHandler.Login)
		}

		v1.GET("/public/note/:public_id", d.NoteHandler.GetPublicNote)

		authed := v1.Group("")
		authed.Use(middleware.SessionAuth(d.Config, d.Accounts))
		{
			authed.POST("/auth/logout", d.AccountHandler.Logout)
			authed.GET("/auth/me", d.AccountHandler.Me)

			project := authed.Group("/project")
			{
				project.POST("", d.ProjectHandler.CreateProject)
				project.GET("", d.ProjectHandler.ListProjects)
				project.GET("/:project_id", d.ProjectHandler.GetProject)
				project.PATCH("/:project_id", d.ProjectHandler.UpdateProject)
				project.DELETE("/:project_id", d.ProjectHandler.DeleteProject)
				project.GET("/:project_id/owner", d.ProjectHandler.GetProjectOwner)

				project.GET("/:project_id/members", d.MembershipHandler.ListMembers)
				project.POST("/:project_id/members", d.MembershipHandler.AddMember)
				project.POST("/:project_id/transfer_owner", d.MembershipHandler.TransferOwner)

				asset := project.Group("/:project_id/asset")
				{
					asset.POST("", d.AssetHandler.UploadAsset)
					asset.GET("", d.AssetHandler.ListAssets)
					asset.GET("/:asset_id", d.AssetHandler.GetAsset)
					asset.DELETE("/:asset_id", d.AssetHandler.DeleteAsset)
				}
			}

			membership := authed.Group("/membership")
			{
				membership.PATCH("/:membership_id", d.MembershipHandler.UpdateMember)
				membership.DELETE("/:membership_id", d.MembershipHandler.RemoveMember)
			}

			note := authed.Group("/note")
			{
				note.POST("", d.NoteHandler.CreateNote)
				note.GET("", d.NoteHandler.ListVisibleNotes)
				note.GET("/search", d.NoteHandler.SearchNotes)
				note.GET("/:note_id", d.NoteHandler.GetNote)
				note.PATCH("/:note_id", d.NoteHandler.UpdateNote)
				note.DELETE("/:note_id", d.NoteHandler.DeleteNote)
			}
		}
	}
	return r, nil
}
