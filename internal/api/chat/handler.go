package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/luminakb/lumina/internal/domain"
	"github.com/luminakb/lumina/internal/service"
)

// Handler handles chat API requests
type Handler struct {
	chatService *service.ChatService
	seekService *service.SeekService
}

// NewHandler creates a new chat handler
func NewHandler(chatService *service.ChatService, seekService *service.SeekService) *Handler {
	return &Handler{chatService: chatService, seekService: seekService}
}

// RegisterRoutes registers chat routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/chat/:collection_id", h.Chat)
	r.POST("/chat/:collection_id/stream", h.ChatStream)
	r.POST("/chat/:collection_id/notes", h.StudyNotes)
	r.GET("/chat/sessions/:session_id/messages", h.GetMessages)
	r.POST("/seek/:collection_id", h.Seek)
}

// Chat handles one question/answer turn
func (h *Handler) Chat(c *gin.Context) {
	collectionID := c.Param("collection_id")

	var req domain.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.chatService.Chat(c.Request.Context(), collectionID, &req)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "collection not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ChatStream handles a streaming chat turn (SSE)
func (h *Handler) ChatStream(c *gin.Context) {
	collectionID := c.Param("collection_id")

	var req domain.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Set SSE headers
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	stream, err := h.chatService.ChatStream(c.Request.Context(), collectionID, &req)
	if err != nil {
		writeSSE(c.Writer, "error", err.Error())
		return
	}

	c.Stream(func(w io.Writer) bool {
		chunk, ok := <-stream
		if !ok {
			return false // End stream
		}
		data, _ := json.Marshal(chunk)
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", chunk.Type, string(data))
		return true
	})
}

// StudyNotes generates a cited study-notes message for a collection
func (h *Handler) StudyNotes(c *gin.Context) {
	collectionID := c.Param("collection_id")

	var req struct {
		SessionID string `json:"session_id,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.chatService.GenerateStudyNotes(c.Request.Context(), collectionID, req.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "collection not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetMessages returns a session's message history
func (h *Handler) GetMessages(c *gin.Context) {
	sessionID := c.Param("session_id")

	messages, err := h.chatService.GetMessages(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// Seek resolves an activated citation to a viewer target
func (h *Handler) Seek(c *gin.Context) {
	collectionID := c.Param("collection_id")

	var req domain.SeekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	target, err := h.seekService.Resolve(c.Request.Context(), collectionID, &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoMatchingItem):
			c.JSON(http.StatusNotFound, gin.H{"error": "no matching content item"})
		case errors.Is(err, domain.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, target)
}

func writeSSE(w io.Writer, eventType, data string) {
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, data)
}
