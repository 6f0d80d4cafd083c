package handler

import (
	"net/http"

	"dropskills/internal/logger"
	"dropskills/internal/middleware"
	"dropskills/internal/model"
	"dropskills/internal/service"

	"github.com/gin-gonic/gin"
)

// CatalogHandler serves the member-facing lists: active mentors, tools and
// products, and the product request board.
type CatalogHandler struct {
	requests *service.ProductRequestService
	mentors  *service.MentorService
	tools    *service.ToolService
	products *service.ProductService
}

func NewCatalogHandler(r *service.ProductRequestService, m *service.MentorService, t *service.ToolService, p *service.ProductService) *CatalogHandler {
	return &CatalogHandler{requests: r, mentors: m, tools: t, products: p}
}

func ptr[T any](v T) *T { return &v }

func (h *CatalogHandler) Mentors(c *gin.Context) {
	out, err := h.mentors.List(c.Request.Context(), service.MentorFilter{Search: c.Query("search"), Active: ptr(true)})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mentors": out})
}

func (h *CatalogHandler) Tools(c *gin.Context) {
	out, err := h.tools.List(c.Request.Context(), service.ToolFilter{
		Search: c.Query("search"), Category: c.Query("category"), Active: ptr(true),
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tools": out})
}

func (h *CatalogHandler) Products(c *gin.Context) {
	var f service.ProductFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		badRequest(c, err)
		return
	}
	f.Active = ptr(true)
	out, err := h.products.List(c.Request.Context(), f)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": out})
}

func (h *CatalogHandler) ListRequests(c *gin.Context) {
	var f service.RequestFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		badRequest(c, err)
		return
	}
	if f.Sort == "" {
		f.Sort = "votes"
	}
	reqs, stats, err := h.requests.List(c.Request.Context(), f)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": reqs, "stats": stats})
}

func (h *CatalogHandler) CreateRequest(c *gin.Context) {
	var req model.NewProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	r, err := h.requests.Create(c.Request.Context(), middleware.UserID(c), middleware.UserEmail(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	logger.Info("request.create", "id", r.ID, "uid", r.UserID)
	c.JSON(http.StatusCreated, r)
}

func (h *CatalogHandler) Vote(c *gin.Context) {
	r, err := h.requests.Vote(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}
