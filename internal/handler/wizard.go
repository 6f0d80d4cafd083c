package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"dropskills/internal/middleware"
	"dropskills/internal/service"
	"dropskills/internal/wizard"

	"github.com/gin-gonic/gin"
)

type WizardHandler struct {
	drafts *service.DraftService
	gen    *service.GenerationService
}

func NewWizardHandler(drafts *service.DraftService, gen *service.GenerationService) *WizardHandler {
	return &WizardHandler{drafts: drafts, gen: gen}
}

func (h *WizardHandler) form(c *gin.Context) (wizard.Form, bool) {
	f, ok := wizard.Lookup(c.Param("kind"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown wizard " + c.Param("kind")})
	}
	return f, ok
}

func (h *WizardHandler) Kinds(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"kinds": wizard.Kinds()})
}

func (h *WizardHandler) Definition(c *gin.Context) {
	f, ok := h.form(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"kind":        f.Kind(),
		"storage_key": f.StorageKey(),
		"steps":       f.Steps(),
	})
}

// Validate checks one step. A valid step answers the step to move to, or
// 0 when it was the last one.
func (h *WizardHandler) Validate(c *gin.Context) {
	f, ok := h.form(c)
	if !ok {
		return
	}
	var req struct {
		Step int             `json:"step" binding:"required"`
		Data json.RawMessage `json:"data"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	errs, err := f.ValidateStep(req.Step, req.Data)
	if err != nil {
		fail(c, err)
		return
	}
	next := req.Step
	if len(errs) == 0 {
		next = req.Step + 1
		if next > len(f.Steps()) {
			next = 0
		}
	}
	c.JSON(http.StatusOK, gin.H{"valid": len(errs) == 0, "errors": errs, "next_step": next})
}

func (h *WizardHandler) keyed(c *gin.Context) (string, bool) {
	f, ok := h.form(c)
	if !ok {
		return "", false
	}
	if f.StorageKey() == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "wizard " + f.Kind() + " has no draft"})
		return "", false
	}
	return f.StorageKey(), true
}

func (h *WizardHandler) GetDraft(c *gin.Context) {
	key, ok := h.keyed(c)
	if !ok {
		return
	}
	data, err := h.drafts.Get(c.Request.Context(), middleware.UserID(c), key)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "data": data})
}

func (h *WizardHandler) SaveDraft(c *gin.Context) {
	key, ok := h.keyed(c)
	if !ok {
		return
	}
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxFormBody))
	if err != nil {
		badRequest(c, err)
		return
	}
	if !json.Valid(raw) {
		badRequest(c, errors.New("body is not JSON"))
		return
	}
	if err := h.drafts.Save(c.Request.Context(), middleware.UserID(c), key, json.RawMessage(raw)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "data": json.RawMessage(raw)})
}

func (h *WizardHandler) DeleteDraft(c *gin.Context) {
	key, ok := h.keyed(c)
	if !ok {
		return
	}
	if err := h.drafts.Delete(c.Request.Context(), middleware.UserID(c), key); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *WizardHandler) Prefill(c *gin.Context) {
	if _, ok := h.form(c); !ok {
		return
	}
	data, err := h.gen.Prefill(c.Request.Context(), middleware.UserID(c), c.Param("kind"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}
