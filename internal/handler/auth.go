package handler

import (
	"net/http"

	"dropskills/internal/authz"
	"dropskills/internal/logger"
	"dropskills/internal/middleware"
	"dropskills/internal/model"
	"dropskills/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	auth        *service.AuthService
	jwt         *middleware.Auth
	enf         *authz.Enforcer
	exposeReset bool
}

func NewAuthHandler(auth *service.AuthService, jwt *middleware.Auth, enf *authz.Enforcer, exposeReset bool) *AuthHandler {
	return &AuthHandler{auth: auth, jwt: jwt, enf: enf, exposeReset: exposeReset}
}

func (h *AuthHandler) respond(c *gin.Context, status int, u *model.User) {
	token, err := h.jwt.NewToken(u.ID, u.Email, u.Role)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(status, model.AuthResponse{Token: token, User: u.ToResponse(h.enf.IsAdmin(u.Role, u.Email))})
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req model.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	u, err := h.auth.Signup(c.Request.Context(), req)
	if err != nil {
		logger.Warn("auth.signup.failed", "email", req.Email, "err", err)
		fail(c, err)
		return
	}
	logger.Info("auth.signup.ok", "uid", u.ID, "email", u.Email)
	h.respond(c, http.StatusCreated, u)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	u, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		logger.Warn("auth.login.failed", "email", req.Email)
		fail(c, err)
		return
	}
	logger.Info("auth.login.ok", "uid", u.ID, "email", u.Email)
	h.respond(c, http.StatusOK, u)
}

// ForgotPassword always answers 200 so the endpoint does not reveal which
// emails have an account.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req model.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	token, err := h.auth.RequestReset(c.Request.Context(), req.Email)
	if err != nil {
		fail(c, err)
		return
	}
	resp := gin.H{"message": "Si un compte existe pour cet email, un lien de réinitialisation a été envoyé."}
	if token != "" {
		// No mailer: operators relay the token from the log.
		logger.Info("auth.reset.requested", "email", req.Email, "reset_token", token)
		if h.exposeReset {
			resp["reset_token"] = token
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req model.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.auth.ResetPassword(c.Request.Context(), req.Token, req.Password, req.ConfirmPassword); err != nil {
		fail(c, err)
		return
	}
	logger.Info("auth.reset.ok")
	c.JSON(http.StatusOK, gin.H{"message": "Mot de passe mis à jour"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	u, err := h.auth.GetUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u.ToResponse(h.enf.IsAdmin(u.Role, u.Email)))
}
