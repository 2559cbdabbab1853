package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/memodb-io/notespace/internal/config"
	"github.com/memodb-io/notespace/internal/modules/model"
	"github.com/memodb-io/notespace/internal/modules/serializer"
	"github.com/memodb-io/notespace/internal/modules/service"
)

// CaptchaIDHeader carries the id the answer must be submitted with.
const CaptchaIDHeader = "X-Captcha-Id"

type AccountHandler struct {
	svc service.AccountService
	cfg *config.Config
}

func NewAccountHandler(s service.AccountService, cfg *config.Config) *AccountHandler {
	return &AccountHandler{svc: s, cfg: cfg}
}

type SessionOutput struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

func (h *AccountHandler) setSessionCookie(c *gin.Context, token string, maxAge int) {
	if h.cfg.Auth.CookieName == "" {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.Auth.CookieName, token, maxAge, "/", "", c.Request.TLS != nil, true)
}

type CheckUsernameReq struct {
	Username string `form:"username" json:"username" binding:"required" example:"alice"`
}

type CheckUsernameOutput struct {
	Exists bool `json:"exists"`
}

// CheckUsername godoc
//
//	@Summary		Check username
//	@Description	Report whether a username is already registered (case-insensitive)
//	@Tags			auth
//	@Produce		json
//	@Param			username	query	string	true	"Username to check"
//	@Success		200	{object}	serializer.Response{data=handler.CheckUsernameOutput}
//	@Router			/auth/check_username [get]
func (h *AccountHandler) CheckUsername(c *gin.Context) {
	req := CheckUsernameReq{}
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	exists, err := h.svc.CheckUsername(c.Request.Context(), req.Username)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: CheckUsernameOutput{Exists: exists}})
}

// Captcha godoc
//
//	@Summary		Get captcha
//	@Description	Render a new captcha image. The challenge id is returned in the X-Captcha-Id header.
//	@Tags			auth
//	@Produce		png
//	@Success		200	{file}	binary
//	@Header			200	{string}	X-Captcha-Id	"Challenge id to submit with the answer"
//	@Router			/auth/captcha [get]
func (h *AccountHandler) Captcha(c *gin.Context) {
	ch, err := h.svc.IssueCaptcha(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.Header(CaptchaIDHeader, ch.ID)
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", ch.PNG)
}

type SendEmailCodeReq struct {
	Email         string `json:"email" binding:"required,email" example:"alice@example.com"`
	CaptchaID     string `json:"captcha_id" binding:"required" example:"1b4e28ba-2fa1-11d2-883f-0016d3cca427"`
	CaptchaAnswer string `json:"captcha_answer" binding:"required" example:"X7K2P"`
}

// SendEmailCode godoc
//
//	@Summary		Send email verification code
//	@Description	Verify the captcha and mail a six digit code. Limited to 3 sends per hour and 5 per day per client address.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			payload	body	handler.SendEmailCodeReq	true	"Email and captcha answer"
//	@Success		200	{object}	serializer.Response{}
//	@Failure		429	{object}	serializer.Response{}
//	@Router			/auth/email_code [post]
func (h *AccountHandler) SendEmailCode(c *gin.Context) {
	req := SendEmailCodeReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	err := h.svc.SendEmailCode(c.Request.Context(), service.SendEmailCodeInput{
		IP:            c.ClientIP(),
		Email:         req.Email,
		CaptchaID:     req.CaptchaID,
		CaptchaAnswer: req.CaptchaAnswer,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Msg: "verification code sent"})
}

type RegisterReq struct {
	Username  string `json:"username" binding:"required,username" example:"alice"`
	Email     string `json:"email" binding:"required,email" example:"alice@example.com"`
	Password  string `json:"password" binding:"required" example:"correct-horse-battery"`
	EmailCode string `json:"email_code" binding:"required,len=6,numeric" example:"042917"`
}

// Register godoc
//
//	@Summary		Register
//	@Description	Create an account with a verified email. A personal space project is provisioned and a session is opened.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			payload	body	handler.RegisterReq	true	"Registration data"
//	@Success		201	{object}	serializer.Response{data=handler.SessionOutput}
//	@Router			/auth/register [post]
func (h *AccountHandler) Register(c *gin.Context) {
	req := RegisterReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	u, token, err := h.svc.Register(c.Request.Context(), service.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		EmailCode: req.EmailCode,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	h.setSessionCookie(c, token, h.cfg.Auth.SessionTTLSec)
	c.JSON(http.StatusCreated, serializer.Response{Data: SessionOutput{User: u, Token: token}})
}

type LoginReq struct {
	Username string `json:"username" binding:"required" example:"alice"`
	Password string `json:"password" binding:"required" example:"correct-horse-battery"`
}

// Login godoc
//
//	@Summary		Login
//	@Description	Exchange username and password for a session token
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			payload	body	handler.LoginReq	true	"Credentials"
//	@Success		200	{object}	serializer.Response{data=handler.SessionOutput}
//	@Router			/auth/login [post]
func (h *AccountHandler) Login(c *gin.Context) {
	req := LoginReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	u, token, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondErr(c, err)
		return
	}
	h.setSessionCookie(c, token, h.cfg.Auth.SessionTTLSec)
	c.JSON(http.StatusOK, serializer.Response{Data: SessionOutput{User: u, Token: token}})
}

// Logout godoc
//
//	@Summary		Logout
//	@Description	Revoke the current session
//	@Tags			auth
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{}
//	@Router			/auth/logout [post]
func (h *AccountHandler) Logout(c *gin.Context) {
	token := c.GetString("session_token")
	if err := h.svc.Logout(c.Request.Context(), token); err != nil {
		respondErr(c, err)
		return
	}
	h.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, serializer.Response{})
}

// Me godoc
//
//	@Summary		Current user
//	@Tags			auth
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.User}
//	@Router			/auth/me [get]
func (h *AccountHandler) Me(c *gin.Context) {
	u, ok := mustUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: u})
}
