package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"dropskills/internal/logger"
	"dropskills/internal/middleware"
	"dropskills/internal/model"
	"dropskills/internal/service"

	"github.com/gin-gonic/gin"
)

const mentorHistoryPairs = 5

type MentorChatHandler struct {
	mentors *service.MentorService
	ai      *service.AIService
}

func NewMentorChatHandler(mentors *service.MentorService, ai *service.AIService) *MentorChatHandler {
	return &MentorChatHandler{mentors: mentors, ai: ai}
}

type sseWriter struct {
	w http.Flusher
	f gin.ResponseWriter
}

func (s *sseWriter) event(name string, data interface{}) {
	j, _ := json.Marshal(data)
	fmt.Fprintf(s.f, "event: %s\ndata: %s\n\n", name, j)
	s.w.Flush()
}

func (s *sseWriter) token(t string) {
	s.event("token", map[string]string{"token": t})
}

func (s *sseWriter) done() {
	s.event("done", map[string]string{})
}

func (s *sseWriter) errorEvent(msg string) {
	s.event("error", map[string]string{"error": msg})
}

// Chat handles POST /api/mentors/:id/chat and streams the mentor's answer
// as server-sent events.
func (h *MentorChatHandler) Chat(c *gin.Context) {
	var req model.MentorChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	m, err := h.mentors.Get(ctx, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	if !m.IsActive {
		c.JSON(http.StatusNotFound, gin.H{"error": "mentor unavailable"})
		return
	}
	if !h.ai.Configured() {
		fail(c, service.ErrNotConfigured)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	sse := &sseWriter{w: c.Writer, f: c.Writer}

	uid := middleware.UserID(c)
	logger.Info("mentor.chat", "uid", uid, "mentor", m.ID, "history", len(req.History))
	history := service.BuildHistory(req.History, mentorHistoryPairs)
	if _, err := h.ai.StreamChat(ctx, m.SystemPrompt, history, req.Message, sse.token); err != nil {
		logger.Error("mentor.chat.failed", "mentor", m.ID, "err", err)
		sse.errorEvent("Le mentor est indisponible pour le moment, réessaie dans un instant.")
		return
	}
	sse.done()

	if err := h.mentors.IncrementConversations(ctx, m.ID); err != nil {
		logger.Warn("mentor.count.failed", "mentor", m.ID, "err", err)
	}
}
