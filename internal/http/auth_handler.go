package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"contact-book/internal/service"
)

const multipartOverhead = 1 << 20

// AuthHandler expone registro, login, verificacion y perfil bajo /auth.
type AuthHandler struct {
	logger         *zap.Logger
	authServ       *service.AuthService
	avatarMaxBytes int64
}

func NewAuthHandler(logger *zap.Logger, authServ *service.AuthService, avatarMaxBytes int64) *AuthHandler {
	return &AuthHandler{
		logger:         logger,
		authServ:       authServ,
		avatarMaxBytes: avatarMaxBytes,
	}
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required,email_address"`
	Password string `json:"password" binding:"required"`
}

// Signup maneja POST /auth/signup.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email_address"`
		Password string `json:"password" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, h.logger, "signup", err)
		return
	}

	user, err := h.authServ.Signup(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(c, h.logger, "signup", err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Login maneja POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, h.logger, "login", err)
		return
	}

	token, err := h.authServ.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(c, h.logger, "login", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}

// VerifyEmail maneja GET /auth/verify-email/:token.
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	if _, err := h.authServ.VerifyEmail(c.Request.Context(), c.Param("token")); err != nil {
		writeServiceError(c, h.logger, "verify email", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email verified successfully!"})
}

// Me maneja GET /auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	user, err := h.authServ.GetProfile(c.Request.Context(), caller)
	if err != nil {
		writeServiceError(c, h.logger, "get profile", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateAvatar maneja POST /auth/avatar (multipart, campo "file").
func (h *AuthHandler) UpdateAvatar(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	if !caller.IsVerified {
		writeServiceError(c, h.logger, "update avatar", service.ErrEmailNotVerified)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.avatarMaxBytes+multipartOverhead)
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			abortWithDetail(c, http.StatusRequestEntityTooLarge, "File too large")
		case errors.Is(err, http.ErrMissingFile):
			abortWithDetail(c, http.StatusUnprocessableEntity, "file: field required")
		default:
			h.logger.Warn("invalid avatar request", zap.Error(err))
			abortWithDetail(c, http.StatusBadRequest, "invalid request")
		}
		return
	}
	if fh.Size > h.avatarMaxBytes {
		abortWithDetail(c, http.StatusRequestEntityTooLarge, "File too large")
		return
	}

	f, err := fh.Open()
	if err != nil {
		writeServiceError(c, h.logger, "open avatar", err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, h.avatarMaxBytes+1))
	if err != nil {
		writeServiceError(c, h.logger, "read avatar", err)
		return
	}
	if int64(len(data)) > h.avatarMaxBytes {
		abortWithDetail(c, http.StatusRequestEntityTooLarge, "File too large")
		return
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	user, err := h.authServ.UpdateAvatar(c.Request.Context(), caller, data, contentType)
	if err != nil {
		writeServiceError(c, h.logger, "update avatar", err)
		return
	}
	c.JSON(http.StatusOK, user)
}
