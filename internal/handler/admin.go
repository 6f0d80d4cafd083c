package handler

import (
	"net/http"

	"dropskills/internal/logger"
	"dropskills/internal/middleware"
	"dropskills/internal/model"
	"dropskills/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves the admin dashboards under /api/admin.
type AdminHandler struct {
	requests *service.ProductRequestService
	mentors  *service.MentorService
	tools    *service.ToolService
	products *service.ProductService
}

func NewAdminHandler(r *service.ProductRequestService, m *service.MentorService, t *service.ToolService, p *service.ProductService) *AdminHandler {
	return &AdminHandler{requests: r, mentors: m, tools: t, products: p}
}

func (h *AdminHandler) ListRequests(c *gin.Context) {
	var f service.RequestFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		badRequest(c, err)
		return
	}
	reqs, stats, err := h.requests.List(c.Request.Context(), f)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": reqs, "stats": stats})
}

func (h *AdminHandler) UpdateRequest(c *gin.Context) {
	var req model.ProductRequestUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	r, err := h.requests.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	logger.Info("admin.request.update", "id", r.ID, "status", r.Status, "by", middleware.UserID(c))
	c.JSON(http.StatusOK, r)
}

func (h *AdminHandler) DeleteRequest(c *gin.Context) {
	if err := h.requests.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	logger.Info("admin.request.delete", "id", c.Param("id"), "by", middleware.UserID(c))
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) ListMentors(c *gin.Context) {
	var f service.MentorFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		badRequest(c, err)
		return
	}
	out, err := h.mentors.List(c.Request.Context(), f)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mentors": out})
}

func (h *AdminHandler) GetMentor(c *gin.Context) {
	m, err := h.mentors.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *AdminHandler) CreateMentor(c *gin.Context) {
	var m model.AIMentor
	if err := c.ShouldBindJSON(&m); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.mentors.Create(c.Request.Context(), &m); err != nil {
		fail(c, err)
		return
	}
	logger.Info("admin.mentor.create", "id", m.ID, "name", m.Name)
	c.JSON(http.StatusCreated, m)
}

func (h *AdminHandler) UpdateMentor(c *gin.Context) {
	var m model.AIMentor
	if err := c.ShouldBindJSON(&m); err != nil {
		badRequest(c, err)
		return
	}
	out, err := h.mentors.Update(c.Request.Context(), c.Param("id"), &m)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *AdminHandler) DeleteMentor(c *gin.Context) {
	if err := h.mentors.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	logger.Info("admin.mentor.delete", "id", c.Param("id"))
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) ListTools(c *gin.Context) {
	var f service.ToolFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		badRequest(c, err)
		return
	}
	out, err := h.tools.List(c.Request.Context(), f)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tools": out})
}

func (h *AdminHandler) GetTool(c *gin.Context) {
	t, err := h.tools.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *AdminHandler) CreateTool(c *gin.Context) {
	var t model.AITool
	if err := c.ShouldBindJSON(&t); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.tools.Create(c.Request.Context(), &t); err != nil {
		fail(c, err)
		return
	}
	logger.Info("admin.tool.create", "id", t.ID, "name", t.Name)
	c.JSON(http.StatusCreated, t)
}

func (h *AdminHandler) UpdateTool(c *gin.Context) {
	var t model.AITool
	if err := c.ShouldBindJSON(&t); err != nil {
		badRequest(c, err)
		return
	}
	out, err := h.tools.Update(c.Request.Context(), c.Param("id"), &t)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *AdminHandler) DeleteTool(c *gin.Context) {
	if err := h.tools.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	logger.Info("admin.tool.delete", "id", c.Param("id"))
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) ToggleTool(c *gin.Context) {
	t, err := h.tools.Toggle(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *AdminHandler) DuplicateTool(c *gin.Context) {
	t, err := h.tools.Duplicate(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	logger.Info("admin.tool.duplicate", "src", c.Param("id"), "id", t.ID)
	c.JSON(http.StatusCreated, t)
}

func (h *AdminHandler) TestTool(c *gin.Context) {
	var req struct {
		CaseID string `json:"case_id"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	sum, err := h.tools.Test(c.Request.Context(), c.Param("id"), req.CaseID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (h *AdminHandler) TestAllTools(c *gin.Context) {
	out, err := h.tools.TestAll(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": out})
}

func (h *AdminHandler) ListProducts(c *gin.Context) {
	var f service.ProductFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		badRequest(c, err)
		return
	}
	out, err := h.products.List(c.Request.Context(), f)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": out})
}

func (h *AdminHandler) GetProduct(c *gin.Context) {
	p, err := h.products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *AdminHandler) CreateProduct(c *gin.Context) {
	var p model.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.products.Create(c.Request.Context(), &p); err != nil {
		fail(c, err)
		return
	}
	logger.Info("admin.product.create", "id", p.ID, "title", p.Title)
	c.JSON(http.StatusCreated, p)
}

func (h *AdminHandler) UpdateProduct(c *gin.Context) {
	var p model.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	out, err := h.products.Update(c.Request.Context(), c.Param("id"), &p)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *AdminHandler) DeleteProduct(c *gin.Context) {
	if err := h.products.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	logger.Info("admin.product.delete", "id", c.Param("id"))
	c.Status(http.StatusNoContent)
}
