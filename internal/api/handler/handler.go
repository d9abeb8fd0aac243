package handler

import (
	"net/http"

	"chatterbox/backend/internal/chathub"
	"chatterbox/backend/internal/config"
	"chatterbox/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

// Handler wires the HTTP API to the hub and the storage layer.
type Handler struct {
	Hub     *chathub.ManagerService
	Storage storage.Storage
	Cfg     *config.Config
}

func NewHandler(hub *chathub.ManagerService, s storage.Storage, cfg *config.Config) *Handler {
	return &Handler{Hub: hub, Storage: s, Cfg: cfg}
}

// Health check endpoint
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Server is running!"})
}
