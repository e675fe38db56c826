package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mbazira/agrostock/internal/domain/models"
	"github.com/mbazira/agrostock/internal/repository/mongodb"
	"github.com/mbazira/agrostock/internal/server/auth"
	"github.com/mbazira/agrostock/internal/service/procurement"
)

// ProcurementHandler adapts procurement reconciliation onto HTTP.
type ProcurementHandler struct {
	svc    *procurement.Service
	events mongodb.ProcurementStore
	logger *zap.Logger
}

// NewProcurementHandler constructs the HTTP handler adapter.
func NewProcurementHandler(svc *procurement.Service, events mongodb.ProcurementStore, logger *zap.Logger) *ProcurementHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProcurementHandler{svc: svc, events: events, logger: logger}
}

// List returns the branch's intake history.
func (h *ProcurementHandler) List(c *gin.Context) {
	actor, _ := auth.ActorFrom(c)

	branch := c.Query("branch")
	if branch == "" {
		branch = actor.Branch
	}

	events, err := h.events.ListByBranch(c.Request.Context(), branch)
	if err != nil {
		h.logger.Error("failed listing procurement events", zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, events)
}

// Create records a procurement intake.
func (h *ProcurementHandler) Create(c *gin.Context) {
	actor, _ := auth.ActorFrom(c)

	var input models.ProcurementInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	event, err := h.svc.Intake(c.Request.Context(), actor, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, event)
}

// Update revises an existing procurement event.
func (h *ProcurementHandler) Update(c *gin.Context) {
	actor, _ := auth.ActorFrom(c)

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	var input models.ProcurementInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	event, err := h.svc.Revise(c.Request.Context(), actor, id, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// Delete removes a procurement event and retracts its stock contribution.
func (h *ProcurementHandler) Delete(c *gin.Context) {
	actor, _ := auth.ActorFrom(c)

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	if err := h.svc.Remove(c.Request.Context(), actor, id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
