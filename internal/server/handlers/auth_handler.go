package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mbazira/agrostock/internal/config"
	"github.com/mbazira/agrostock/internal/domain/models"
	"github.com/mbazira/agrostock/internal/server/auth"
)

// AuthHandler issues actor tokens. Credential verification happens upstream of
// this service; the handler only encodes an already-authenticated actor.
type AuthHandler struct {
	cfg    config.AuthConfig
	logger *zap.Logger
}

// NewAuthHandler constructs the HTTP handler adapter.
func NewAuthHandler(cfg config.AuthConfig, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{cfg: cfg, logger: logger}
}

type tokenRequest struct {
	Name   string           `json:"name" binding:"required"`
	Role   models.StaffRole `json:"role" binding:"required"`
	Branch string           `json:"branch"`
}

// IssueToken signs a token carrying the actor descriptor.
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	actor := models.Actor{Name: req.Name, Role: req.Role, Branch: req.Branch}
	token, err := auth.GenerateToken(h.cfg.JWTSecret, time.Duration(h.cfg.TokenTTL)*time.Hour, actor)
	if err != nil {
		h.logger.Error("failed signing token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "actor": actor})
}
