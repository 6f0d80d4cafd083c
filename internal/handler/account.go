package handler

import (
	"net/http"

	"dropskills/internal/logger"
	"dropskills/internal/middleware"
	"dropskills/internal/model"
	"dropskills/internal/service"

	"github.com/gin-gonic/gin"
)

type AccountHandler struct{ svc *service.AccountService }

func NewAccountHandler(svc *service.AccountService) *AccountHandler {
	return &AccountHandler{svc: svc}
}

func (h *AccountHandler) Profile(c *gin.Context) {
	u, err := h.svc.Profile(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	var req model.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	u, err := h.svc.UpdateProfile(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *AccountHandler) ChangePassword(c *gin.Context) {
	var req model.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	uid := middleware.UserID(c)
	if err := h.svc.ChangePassword(c.Request.Context(), uid, req); err != nil {
		fail(c, err)
		return
	}
	logger.Info("account.password.changed", "uid", uid)
	c.JSON(http.StatusOK, gin.H{"message": "Mot de passe mis à jour"})
}

func (h *AccountHandler) Preferences(c *gin.Context) {
	p, err := h.svc.Preferences(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *AccountHandler) UpdatePreferences(c *gin.Context) {
	var req model.Preferences
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.svc.UpdatePreferences(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
