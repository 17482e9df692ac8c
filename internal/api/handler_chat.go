package api

import (
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

type chatRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	Message   string `json:"message" binding:"required"`
}

// PostChat handles POST /api/chat: the reply is streamed as plain text,
// grounded in the current schedule. Each sessionId holds its own
// conversation history.
func (h *Handler) PostChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cases, err := h.store.ListCases(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	session := h.sessions.Get(req.SessionID)
	reply, err := session.Send(c.Request.Context(), req.Message, cases)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	defer reply.Close()

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, reply); err != nil {
		// Response already committed, can only log.
		log.Printf("Error streaming chat reply: %v", err)
	}
}

// CloseChat handles DELETE /api/chat/:session_id, tearing the session down.
func (h *Handler) CloseChat(c *gin.Context) {
	h.sessions.Close(c.Param("session_id"))
	c.Status(http.StatusNoContent)
}
