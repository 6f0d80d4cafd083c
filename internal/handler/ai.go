package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"dropskills/internal/export"
	"dropskills/internal/middleware"
	"dropskills/internal/model"
	"dropskills/internal/service"

	"github.com/gin-gonic/gin"
)

const maxFormBody = 1 << 20

type AIHandler struct {
	gen   *service.GenerationService
	ideas *service.IdeaService
}

func NewAIHandler(gen *service.GenerationService, ideas *service.IdeaService) *AIHandler {
	return &AIHandler{gen: gen, ideas: ideas}
}

type generationView struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	Input     json.RawMessage `json:"input,omitempty"`
	Result    json.RawMessage `json:"result"`
	Model     string          `json:"model"`
	LatencyMs int64           `json:"latency_ms"`
	CreatedAt time.Time       `json:"created_at"`
}

func viewOf(g *model.Generation, withInput bool) generationView {
	v := generationView{
		ID: g.ID, Kind: g.Kind, Result: json.RawMessage(g.Output),
		Model: g.Model, LatencyMs: g.LatencyMs, CreatedAt: g.CreatedAt,
	}
	if withInput {
		v.Input = json.RawMessage(g.Input)
	}
	return v
}

// Generate handles POST /api/ai/:kind/generate. The body is the wizard
// form data of that kind.
func (h *AIHandler) Generate(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxFormBody))
	if err != nil {
		badRequest(c, err)
		return
	}
	g, err := h.gen.Generate(c.Request.Context(), middleware.UserID(c), c.Param("kind"), raw)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(g, false))
}

func (h *AIHandler) ListGenerations(c *gin.Context) {
	list, err := h.gen.List(c.Request.Context(), middleware.UserID(c), c.Query("kind"))
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]generationView, len(list))
	for i := range list {
		out[i] = viewOf(&list[i], false)
	}
	c.JSON(http.StatusOK, gin.H{"generations": out})
}

func (h *AIHandler) GetGeneration(c *gin.Context) {
	g, err := h.gen.Get(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(g, true))
}

// Export handles GET /api/ai/generations/:id/export?format=csv|xlsx|txt.
func (h *AIHandler) Export(c *gin.Context) {
	g, err := h.gen.Get(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	format := c.Query("format")
	short := g.ID
	if len(short) > 8 {
		short = short[:8]
	}

	switch g.Kind {
	case "content":
		a, err := service.DecodeContent(g)
		if err != nil {
			fail(c, err)
			return
		}
		switch format {
		case "", "csv":
			attachment(c, "calendrier-"+short+".csv")
			c.Data(http.StatusOK, "text/csv; charset=utf-8", export.CalendarCSV(a.Posts))
		case "xlsx":
			data, err := export.CalendarXLSX(a.Posts)
			if err != nil {
				fail(c, err)
				return
			}
			attachment(c, "calendrier-"+short+".xlsx")
			c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported format " + format})
		}
	case "emails":
		if format != "" && format != "txt" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported format " + format})
			return
		}
		seq, err := service.DecodeEmails(g)
		if err != nil {
			fail(c, err)
			return
		}
		attachment(c, "sequence-emails-"+short+".txt")
		c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(export.EmailSequenceText(seq)))
	default:
		attachment(c, g.Kind+"-"+short+".json")
		c.Data(http.StatusOK, "application/json", g.Output)
	}
}

func attachment(c *gin.Context, name string) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
}

// Calendar handles GET /api/ai/generations/:id/calendar?year=&month=.
// Without a month the grid opens on the month of the first post.
func (h *AIHandler) Calendar(c *gin.Context) {
	var q struct {
		Year  int `form:"year"`
		Month int `form:"month"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	if q.Month < 0 || q.Month > 12 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month must be between 1 and 12"})
		return
	}
	g, err := h.gen.Get(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	a, err := service.DecodeContent(g)
	if err != nil {
		fail(c, err)
		return
	}

	year, month := q.Year, time.Month(q.Month)
	if year == 0 || month == 0 {
		if y, m, ok := export.FirstMonth(a.Posts); ok {
			year, month = y, m
		} else {
			now := time.Now()
			year, month = now.Year(), now.Month()
		}
	}
	c.JSON(http.StatusOK, export.MonthGrid(year, month, a.Posts))
}

// Views handles GET /api/ai/generations/:id/views: the filtered posts with
// their grouping counts.
func (h *AIHandler) Views(c *gin.Context) {
	var f export.Filter
	if err := c.ShouldBindQuery(&f); err != nil {
		badRequest(c, err)
		return
	}
	g, err := h.gen.Get(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	a, err := service.DecodeContent(g)
	if err != nil {
		fail(c, err)
		return
	}
	posts := export.FilterPosts(a.Posts, f)
	c.JSON(http.StatusOK, gin.H{
		"strategy": a.Strategy,
		"pillars":  a.Pillars,
		"posts":    posts,
		"counts":   export.Count(posts),
	})
}

func (h *AIHandler) GenerateIdeas(c *gin.Context) {
	var req model.IdeaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ideas, err := h.ideas.Generate(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ideas": ideas})
}

func (h *AIHandler) TrendingIdeas(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ideas": h.ideas.Trending(c.Request.Context())})
}
