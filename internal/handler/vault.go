package handler

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"dropskills/internal/logger"
	"dropskills/internal/middleware"
	"dropskills/internal/service"

	"github.com/gin-gonic/gin"
)

const maxUploadSize = 100 << 20

type VaultHandler struct{ svc *service.VaultService }

func NewVaultHandler(svc *service.VaultService) *VaultHandler {
	return &VaultHandler{svc: svc}
}

func (h *VaultHandler) List(c *gin.Context) {
	var f service.VaultFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		badRequest(c, err)
		return
	}
	items, err := h.svc.List(c.Request.Context(), middleware.UserID(c), f)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *VaultHandler) Folders(c *gin.Context) {
	out, err := h.svc.Folders(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"folders": out})
}

func (h *VaultHandler) Stats(c *gin.Context) {
	st, err := h.svc.Stats(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *VaultHandler) ToggleFavorite(c *gin.Context) {
	it, err := h.svc.ToggleFavorite(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, it)
}

func (h *VaultHandler) ToggleShare(c *gin.Context) {
	it, err := h.svc.ToggleShare(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, it)
}

func (h *VaultHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Upload handles a multipart POST with a "file" part and optional
// "folder" and comma separated "tags" fields.
func (h *VaultHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if file.Size > maxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}
	src, err := file.Open()
	if err != nil {
		badRequest(c, err)
		return
	}
	defer src.Close()

	var tags []string
	for _, t := range strings.Split(c.PostForm("tags"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	uid := middleware.UserID(c)
	it, err := h.svc.Upload(c.Request.Context(), uid, service.Upload{
		Name:        file.Filename,
		Folder:      c.PostForm("folder"),
		Size:        file.Size,
		ContentType: file.Header.Get("Content-Type"),
		Tags:        tags,
		Body:        src,
	})
	if err != nil {
		fail(c, err)
		return
	}
	logger.Info("vault.upload", "uid", uid, "item", it.ID, "size", it.Size)
	c.JSON(http.StatusCreated, it)
}

func (h *VaultHandler) Download(c *gin.Context) {
	it, obj, err := h.svc.Download(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	defer obj.Reader.Close()

	ct := obj.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, strings.ReplaceAll(it.Name, `"`, "")))
	c.Header("Content-Type", ct)
	c.Header("Content-Length", fmt.Sprint(obj.Size))
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, obj.Reader); err != nil {
		logger.Warn("vault.download.aborted", "item", it.ID, "err", err)
	}
}
