package admin

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/luminakb/lumina/internal/domain"
	"github.com/luminakb/lumina/internal/service"
)

// Handler handles admin API requests
type Handler struct {
	adminService  *service.AdminService
	ingestService *service.IngestService
}

// NewHandler creates a new admin handler
func NewHandler(adminService *service.AdminService, ingestService *service.IngestService) *Handler {
	return &Handler{
		adminService:  adminService,
		ingestService: ingestService,
	}
}

// RegisterRoutes registers admin routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	collections := r.Group("/collections")
	{
		collections.POST("", h.CreateCollection)
		collections.GET("", h.ListCollections)
		collections.GET("/:id", h.GetCollection)
		collections.PUT("/:id", h.UpdateCollection)
		collections.DELETE("/:id", h.DeleteCollection)
		collections.POST("/:id/items", h.AddContentItem)
		collections.GET("/:id/items", h.ListContentItems)
	}

	items := r.Group("/items")
	{
		items.DELETE("/:id", h.DeleteContentItem)
	}

	r.GET("/stats", h.GetStats)
}

// Collection handlers

func (h *Handler) CreateCollection(c *gin.Context) {
	var req domain.CreateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	collection, err := h.adminService.CreateCollection(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, collection)
}

func (h *Handler) ListCollections(c *gin.Context) {
	collections, err := h.adminService.ListCollections(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"collections": collections})
}

func (h *Handler) GetCollection(c *gin.Context) {
	id := c.Param("id")
	collection, err := h.adminService.GetCollection(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if collection == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "collection not found"})
		return
	}

	c.JSON(http.StatusOK, collection)
}

func (h *Handler) UpdateCollection(c *gin.Context) {
	id := c.Param("id")
	var req domain.UpdateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	collection, err := h.adminService.UpdateCollection(c.Request.Context(), id, &req)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "collection not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, collection)
}

func (h *Handler) DeleteCollection(c *gin.Context) {
	id := c.Param("id")
	if err := h.adminService.DeleteCollection(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "collection deleted"})
}

// Content item handlers

func (h *Handler) AddContentItem(c *gin.Context) {
	collectionID := c.Param("id")

	var req domain.CreateContentItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.ingestService.AddContentItem(c.Request.Context(), collectionID, &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "collection not found"})
		case errors.Is(err, domain.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, item)
}

func (h *Handler) ListContentItems(c *gin.Context) {
	collectionID := c.Param("id")

	result, err := h.ingestService.ListContentItems(c.Request.Context(), collectionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "collection not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) DeleteContentItem(c *gin.Context) {
	id := c.Param("id")
	if err := h.ingestService.DeleteContentItem(c.Request.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "content item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "content item deleted"})
}

// Stats handler

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.adminService.GetStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}
